package attachmenterrors

import (
	"net/http"

	"flexileave/internal/shared/apperror"
)

var (
	ErrInvalidAttachmentID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid attachment id",
		http.StatusBadRequest,
	)
	ErrFileRequired = apperror.New(
		apperror.CodeInvalidInput,
		"file is required",
		http.StatusBadRequest,
	)
	ErrFileTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"file exceeds the 10 MB limit",
		http.StatusBadRequest,
	)
	ErrUnsupportedFileType = apperror.New(
		apperror.CodeInvalidInput,
		"only PDF, JPEG and PNG files can be attached",
		http.StatusBadRequest,
	)
	ErrAttachmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"attachment not found",
		http.StatusNotFound,
	)
	ErrStorageUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"file storage is unavailable",
		http.StatusServiceUnavailable,
	)
)
