package utils

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

func (appErr *AppError) Unwrap() error {
	return appErr.Origin
}

const (
	ErrUnauthorized       = "UNAUTHORIZED"
	ErrInvalidCredentials = "INVALID_CREDENTIALS"
	ErrForbidden          = "FORBIDDEN"
	ErrNotFound           = "NOT_FOUND"
	ErrValidation         = "VALIDATION_ERROR"
	ErrDuplicatePost      = "DUPLICATE_POST"
	ErrEmailTaken         = "EMAIL_TAKEN"
	ErrTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrStorage            = "STORAGE_ERROR"
	ErrUpload             = "UPLOAD_ERROR"
)

func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

func NewNotAuthenticatedError() *AppError {
	return NewAppError(ErrUnauthorized, "User not authenticated", nil)
}

func NewForbiddenError() *AppError {
	return NewAppError(ErrForbidden, "Forbidden", nil)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(ErrNotFound, message, nil)
}

func NewValidationError(message string) *AppError {
	return NewAppError(ErrValidation, message, nil)
}

func NewDuplicatePostError() *AppError {
	return NewAppError(ErrDuplicatePost, "Already logged a sunset today", nil)
}

func NewStorageError(message string, err error) *AppError {
	return NewAppError(ErrStorage, message, err)
}

func NewUploadError(err error) *AppError {
	return NewAppError(ErrUpload, "Upload failed", err)
}

// AsAppError unwraps err into an *AppError when one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsErrorCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrUnauthorized, ErrInvalidCredentials:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation, ErrDuplicatePost, ErrEmailTaken:
		return http.StatusBadRequest
	case ErrTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
