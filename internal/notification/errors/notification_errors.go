package notificationerrors

import (
	"net/http"

	"flexileave/internal/shared/apperror"
)

var (
	ErrInvalidNotificationID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid notification id",
		http.StatusBadRequest,
	)
	ErrNotificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"notification not found",
		http.StatusNotFound,
	)
	ErrMalformedEvent = apperror.New(
		apperror.CodeInvalidInput,
		"leave event is missing required fields",
		http.StatusBadRequest,
	)
)
