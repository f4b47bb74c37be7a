package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/application"
	"github.com/DanielPopoola/payment-intake/internal/domain"
)

// ErrorResponse is the envelope for every non-2xx JSON response.
type ErrorResponse struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Path      string `json:"path"`
}

const internalErrorMessage = "An unexpected error occurred"

// NewErrorResponse builds the envelope for an explicit status and message.
func NewErrorResponse(status int, message, path string) ErrorResponse {
	return ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      path,
	}
}

// BuildErrorResponse maps application errors to a status code and envelope.
// Internal failures never leak their cause to the client.
func BuildErrorResponse(err error, path string) (int, ErrorResponse) {
	statusCode := application.ToHTTPStatus(err)

	message := internalErrorMessage
	validationErr, isValidation := domain.IsValidationError(err)
	svcErr, isService := application.IsServiceError(err)
	switch {
	case isValidation:
		message = validationErr.Summary()
	case isService:
		message = svcErr.Message
	case statusCode < http.StatusInternalServerError:
		message = err.Error()
	}

	return statusCode, NewErrorResponse(statusCode, message, path)
}

// WriteError maps application errors to HTTP responses
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	statusCode, response := BuildErrorResponse(err, r.URL.Path)

	if statusCode >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", statusCode,
			"code", application.ToErrorCode(err),
			"category", application.CategorizeError(err),
			"error", err,
		)
	}

	WriteErrorResponse(w, response)
}

func WriteErrorResponse(w http.ResponseWriter, response ErrorResponse) {
	WriteJSON(w, response.Status, response)
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
