package balanceerrors

import (
	"net/http"

	"flexileave/internal/shared/apperror"
)

var (
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave type is invalid",
		http.StatusBadRequest,
	)
	ErrNegativeBalance = apperror.New(
		apperror.CodeInvalidInput,
		"remaining days cannot be negative",
		http.StatusBadRequest,
	)
	ErrAdminOnly = apperror.New(
		apperror.CodeForbidden,
		"only administrators can change leave balances",
		http.StatusForbidden,
	)
	ErrNotVisible = apperror.New(
		apperror.CodeForbidden,
		"you can only view your own leave balances",
		http.StatusForbidden,
	)
)
