package leave

import (
	"errors"
	"strings"

	leaveerrors "flexileave/internal/leave/errors"
	"flexileave/internal/leave/policy"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	constraintNoOverlap = "leaves_no_overlap"
	constraintReference = "leaves_reference_key"
)

func overlapError() error {
	return leaveerrors.ErrValidationFailed.WithDetails([]policy.FieldError{
		{Field: policy.FieldStartDate, Message: policy.MessageOverlap},
	})
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23P01":
			if pgErr.ConstraintName == constraintNoOverlap {
				return overlapError()
			}
		case "23505":
			if pgErr.ConstraintName == constraintReference {
				return leaveerrors.ErrDuplicateReference
			}
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "conflicting key value") && strings.Contains(errMsg, constraintNoOverlap) {
		return overlapError()
	}

	return err
}
