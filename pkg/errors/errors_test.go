package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "Booking not found"},
			expected: "NOT_FOUND: Booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "Failed to list bookings",
				Err:     errors.New("connection reset"),
			},
			expected: "INTERNAL_ERROR: Failed to list bookings (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Listing"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Booking", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("dates overlap", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("not your booking"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("listing is locked"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Listings service"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode())
		})
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Booking", "665f1f77bcf86cd799439011")

	assert.Equal(t, "Booking not found", err.Message)
	assert.Equal(t, "Booking", err.Details["resource"])
	assert.Equal(t, "665f1f77bcf86cd799439011", err.Details["id"])
}

func TestAsAppError(t *testing.T) {
	t.Run("direct app error", func(t *testing.T) {
		original := Forbidden("only the renter can cancel")
		assert.Same(t, original, AsAppError(original))
	})

	t.Run("wrapped app error", func(t *testing.T) {
		original := Conflict("locked")
		wrapped := fmt.Errorf("transaction failed: %w", original)
		assert.Same(t, original, AsAppError(wrapped))
		assert.True(t, IsAppError(wrapped))
		assert.True(t, HasCode(wrapped, CodeConflict))
		assert.False(t, HasCode(wrapped, CodeNotFound))
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		plain := errors.New("disk full")
		appErr := AsAppError(plain)
		assert.Equal(t, CodeInternal, appErr.Code)
		assert.ErrorIs(t, appErr, plain)
		assert.False(t, IsAppError(plain))
	})
}

func TestWithDetails_Merges(t *testing.T) {
	err := Validation("Booking validation failed", map[string]any{"reason": "overlap"}).
		WithDetails(map[string]any{"conflicting_booking_id": "b1"})

	assert.Equal(t, map[string]any{"reason": "overlap", "conflicting_booking_id": "b1"}, err.Details)
	assert.Nil(t, Forbidden("no").WithDetails(nil).Details)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, (&AppError{Code: CodeNotFound}).StatusCode())
	assert.Equal(t, http.StatusTeapot, (&AppError{Code: CodeNotFound, HTTPStatus: http.StatusTeapot}).StatusCode())
	assert.Equal(t, http.StatusInternalServerError, (&AppError{Code: "CUSTOM", Message: "no status"}).StatusCode())
}

func TestWrap(t *testing.T) {
	cause := errors.New("write conflict")
	err := Wrap(cause, CodeConflict, "Listing is busy")

	assert.Equal(t, http.StatusConflict, err.StatusCode())
	assert.ErrorIs(t, err, cause)
}
