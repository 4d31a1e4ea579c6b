package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorToHTTPStatus(t *testing.T) {
	cases := map[string]int{
		ErrUnauthorized:       http.StatusUnauthorized,
		ErrInvalidCredentials: http.StatusUnauthorized,
		ErrForbidden:          http.StatusForbidden,
		ErrNotFound:           http.StatusNotFound,
		ErrValidation:         http.StatusBadRequest,
		ErrDuplicatePost:      http.StatusBadRequest,
		ErrEmailTaken:         http.StatusBadRequest,
		ErrTooManyRequests:    http.StatusTooManyRequests,
		ErrStorage:            http.StatusInternalServerError,
		ErrUpload:             http.StatusInternalServerError,
		"SOMETHING_ELSE":      http.StatusInternalServerError,
	}

	for code, status := range cases {
		assert.Equal(t, status, AppErrorToHTTPStatus(code), code)
	}
}

func TestIsErrorCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("create sunset: %w", NewDuplicatePostError())

	assert.True(t, IsErrorCode(err, ErrDuplicatePost))
	assert.False(t, IsErrorCode(err, ErrNotFound))
	assert.False(t, IsErrorCode(errors.New("plain"), ErrDuplicatePost))
}

func TestAppError_MessageAndUnwrap(t *testing.T) {
	origin := errors.New("connection refused")
	err := NewStorageError("failed to load streak", origin)

	assert.Equal(t, "failed to load streak: connection refused", err.Error())
	assert.ErrorIs(t, err, origin)
	assert.Equal(t, "Already logged a sunset today", NewDuplicatePostError().Error())
}
