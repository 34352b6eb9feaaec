package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"` // Debug-only detail
}

// MessageResponse is the body of operations that return a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Message: message})
}

// RespondWithAppError writes err using its mapped status. Client errors carry the
// error's own message; server errors are logged and answered with a generic message.
// The raw error text is attached only when debug is set.
func RespondWithAppError(w http.ResponseWriter, r *http.Request, err error, debug bool) {
	code := HTTPStatusFromError(err)
	resp := ErrorResponse{Message: ClientMessage(err)}
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)
	}
	if debug {
		resp.Error = err.Error()
	}
	RespondWithJSON(w, code, resp)
}

// ClientMessage returns the part of err that is safe to show to API clients.
func ClientMessage(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Message
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest):
		return "Invalid request"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, ErrConflict):
		return "User already exists"
	case errors.Is(err, ErrNotFound):
		return "Resource not found"
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrForbidden):
		return "Not authorized"
	case errors.Is(err, ErrTooManyRequests):
		return "Too many failed login attempts, try again later"
	default:
		return "Server error"
	}
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
