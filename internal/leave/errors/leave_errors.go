package leaveerrors

import (
	"net/http"

	"flexileave/internal/shared/apperror"
)

var (
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrValidationFailed = apperror.New(
		apperror.CodeInvalidInput,
		"leave request is not valid",
		http.StatusBadRequest,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection reason is required",
		http.StatusBadRequest,
	)
	ErrTooManyAttachments = apperror.New(
		apperror.CodeInvalidInput,
		"a leave request cannot have more than 5 attachments",
		http.StatusBadRequest,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInvalidInput,
		"insufficient leave balance",
		http.StatusBadRequest,
	)

	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)

	ErrAdminRequired = apperror.New(
		apperror.CodeForbidden,
		"only administrators can decide leave requests",
		http.StatusForbidden,
	)
	ErrSelfDecision = apperror.New(
		apperror.CodeForbidden,
		"you cannot approve or reject your own leave request",
		http.StatusForbidden,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"only the owner can modify this leave request",
		http.StatusForbidden,
	)
	ErrNotVisible = apperror.New(
		apperror.CodeForbidden,
		"you do not have access to this leave request",
		http.StatusForbidden,
	)

	ErrLeaveFinalized = apperror.New(
		apperror.CodeInvalidState,
		"this request can no longer be modified",
		http.StatusConflict,
	)
	ErrLeaveEnded = apperror.New(
		apperror.CodeInvalidState,
		"this request can no longer be modified because its end date has passed",
		http.StatusConflict,
	)
	ErrUnknownAction = apperror.New(
		apperror.CodeInvalidState,
		"unknown leave action",
		http.StatusConflict,
	)
)

var (
	ErrInvalidOwnerID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid owner id",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"status must be one of pending, approved, rejected, cancelled",
		http.StatusBadRequest,
	)
	ErrDuplicateReference = apperror.New(
		apperror.CodeConflict,
		"leave reference already exists",
		http.StatusConflict,
	)
)
