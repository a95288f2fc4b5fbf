package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorFormatting(t *testing.T) {
	err := New(ErrCodeBackendFailure, "keygen failed")
	assert.Equal(t, "BACKEND_FAILURE: keygen failed", err.Error())

	wrapped := Wrap(fmt.Errorf("entropy exhausted"), ErrCodeBackendFailure, "keygen failed")
	assert.Equal(t, "BACKEND_FAILURE: keygen failed: entropy exhausted", wrapped.Error())
	assert.Equal(t, "entropy exhausted", wrapped.Unwrap().Error())
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeInvalidEncoding, GetCode(New(ErrCodeInvalidEncoding, "bad")))
	assert.Equal(t, ErrCodeInternalError, GetCode(fmt.Errorf("plain error")))
}

func TestResourceExceededError(t *testing.T) {
	err := NewResourceExceededError(600, 512, 20, 80)

	assert.Equal(t, ErrCodeResourceExceeded, err.Code)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, 600.0, err.Context["memory_mb"])
	assert.Equal(t, 512.0, err.Context["max_memory_mb"])
	assert.Contains(t, GetUserMessage(err), "Resource constraints exceeded")
}

func TestEncodingError(t *testing.T) {
	err := NewEncodingError("public_key", "public_key is not valid base64")

	assert.Equal(t, ErrCodeInvalidEncoding, err.Code)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, "public_key", err.Context["field"])
}

func TestBackendErrorPreservesCause(t *testing.T) {
	cause := fmt.Errorf("scheme rejected input")
	err := NewBackendError("kem_encapsulate", cause)

	assert.Equal(t, ErrCodeBackendFailure, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, GetUserMessage(err), "kem_encapsulate failed")
}

func TestAlgorithmMismatchError(t *testing.T) {
	err := NewAlgorithmMismatchError("MLKEM768", "public key is 32 bytes, want 1184")

	assert.Equal(t, ErrCodeAlgorithmMismatch, err.Code)
	assert.Contains(t, err.Message, "MLKEM768")
}

func TestGetUserMessageFallback(t *testing.T) {
	assert.Equal(t, "An internal error occurred", GetUserMessage(fmt.Errorf("raw")))
	assert.Equal(t, "An internal error occurred", GetUserMessage(New(ErrCodeInternalError, "no user message")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"resource exceeded", NewResourceExceededError(600, 512, 20, 80), http.StatusTooManyRequests},
		{"invalid encoding", NewEncodingError("f", "bad"), http.StatusBadRequest},
		{"backend failure", NewBackendError("op", fmt.Errorf("x")), http.StatusBadRequest},
		{"algorithm mismatch", NewAlgorithmMismatchError("MLKEM768", "bad"), http.StatusBadRequest},
		{"database", NewDatabaseError("query", fmt.Errorf("x")), http.StatusInternalServerError},
		{"plain error", fmt.Errorf("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
