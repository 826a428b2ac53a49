package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := NewValidationError("empty_input", "crates list cannot be empty")
	assert.Equal(t, "[empty_input] crates list cannot be empty", err.Error())

	cause := errors.New("connection refused")
	wrapped := NewNetworkError("request to registry failed", cause)
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.ErrorIs(t, wrapped, cause)
}

func TestFromStatusCode(t *testing.T) {
	tests := []struct {
		status      int
		wantType    ErrorType
		recoverable bool
	}{
		{http.StatusTooManyRequests, ErrorTypeRateLimited, true},
		{http.StatusInternalServerError, ErrorTypeServer, true},
		{http.StatusBadGateway, ErrorTypeServer, true},
		{http.StatusServiceUnavailable, ErrorTypeServer, true},
		{http.StatusForbidden, ErrorTypeServer, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := FromStatusCode(tt.status)
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.recoverable, err.Recoverable)
			assert.Equal(t, tt.status, err.Status)
		})
	}
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsValidation(NewInvalidCrateName("bad name", "invalid characters")))
	assert.True(t, IsValidation(NewInvalidBatchInput("unrecognized shape")))
	assert.False(t, IsValidation(NewCrateNotFound("serde")))

	assert.True(t, IsNotFound(NewCrateNotFound("serde")))
	assert.True(t, IsNotFound(NewVersionNotFound("serde", "9.9.9")))
	assert.False(t, IsNotFound(NewNetworkError("boom", nil)))

	assert.True(t, IsRecoverable(FromStatusCode(http.StatusTooManyRequests)))
	assert.True(t, IsRecoverable(NewNetworkError("boom", nil)))
	assert.False(t, IsRecoverable(NewCrateNotFound("serde")))

	// Plain errors classify as nothing.
	plain := errors.New("plain")
	assert.False(t, IsValidation(plain))
	assert.False(t, IsNotFound(plain))
	assert.False(t, IsRecoverable(plain))
}

func TestStatusCodeMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusCode(NewValidationError("code", "msg")))
	assert.Equal(t, http.StatusNotFound, StatusCode(NewCrateNotFound("serde")))
	assert.Equal(t, http.StatusTooManyRequests, StatusCode(FromStatusCode(http.StatusTooManyRequests)))
	assert.Equal(t, http.StatusBadGateway, StatusCode(FromStatusCode(http.StatusInternalServerError)))
	assert.Equal(t, http.StatusGatewayTimeout, StatusCode(NewTimeoutError("slow", nil)))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("plain")))
}

func TestWrappedClassification(t *testing.T) {
	inner := NewCrateNotFound("serde")
	wrapped := fmt.Errorf("while checking: %w", inner)
	require.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, StatusCode(wrapped))
}
