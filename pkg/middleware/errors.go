package middleware

import (
	"net/http"

	apperrors "rentmate/pkg/errors"
	httputil "rentmate/pkg/http"
)

// writeError renders middleware rejections in the same envelope the
// handlers use.
func writeError(w http.ResponseWriter, status int, code, message string) {
	_ = httputil.WriteError(w, &apperrors.AppError{Code: code, Message: message, HTTPStatus: status})
}

func requestIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
