package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsMatchesWrappedAppError(t *testing.T) {
	err := fmt.Errorf("loading conversation: %w", NotFound("Conversation", nil))

	assert.True(t, Is(err, "NOT_FOUND"))
	assert.False(t, Is(err, "FORBIDDEN"))
	assert.False(t, Is(fmt.Errorf("plain"), "NOT_FOUND"))
}

func TestFromStore(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"not found", status.Error(codes.NotFound, "missing"), "NOT_FOUND", http.StatusNotFound},
		{"permission", status.Error(codes.PermissionDenied, "denied"), "FORBIDDEN", http.StatusForbidden},
		{"unavailable", status.Error(codes.Unavailable, "down"), "UNAVAILABLE", http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, "UNAVAILABLE", http.StatusServiceUnavailable},
		{"other", fmt.Errorf("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStore(tt.err, "Failed to load conversation")
			appErr, ok := err.(*AppError)
			if assert.True(t, ok) {
				assert.Equal(t, tt.code, appErr.Code)
				assert.Equal(t, tt.status, appErr.Status)
			}
		})
	}

	assert.Nil(t, FromStore(nil, "unused"))

	original := BadRequest("bad", nil)
	assert.Same(t, original, FromStore(original, "unused"))
}

func TestTooManyRequestsIncludesWait(t *testing.T) {
	err := TooManyRequests("Slow down", 6*time.Second)
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.Contains(t, err.Message, "6s")
}
