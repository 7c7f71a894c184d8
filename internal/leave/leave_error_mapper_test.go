package leave

import (
	"errors"
	"fmt"
	"testing"

	leaveerrors "flexileave/internal/leave/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapRepositoryError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"not found", fmt.Errorf("find leave: %w", gorm.ErrRecordNotFound), leaveerrors.ErrLeaveNotFound},
		{"overlap constraint", &pgconn.PgError{Code: "23P01", ConstraintName: constraintNoOverlap}, leaveerrors.ErrValidationFailed},
		{"overlap message", errors.New(`ERROR: conflicting key value violates exclusion constraint "leaves_no_overlap"`), leaveerrors.ErrValidationFailed},
		{"duplicate reference", &pgconn.PgError{Code: "23505", ConstraintName: constraintReference}, leaveerrors.ErrDuplicateReference},
		{"other exclusion", &pgconn.PgError{Code: "23P01", ConstraintName: "something_else"}, nil},
		{"passthrough", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapRepositoryError(tt.in)
			switch {
			case tt.in == nil:
				assert.NoError(t, got)
			case tt.want == nil:
				assert.Same(t, tt.in, got)
			default:
				assert.ErrorIs(t, got, tt.want)
			}
		})
	}
}
