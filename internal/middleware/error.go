package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Messages shared by every error path of the API
const (
	MessageProcessingFailed = "Processing failed"
	MessageNoImageURL       = "No image URL provided"
	MessageBodyTooLarge     = "request body too large"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error            string            `json:"error"`
	Details          string            `json:"details,omitempty"`
	ValidationErrors []ValidationError `json:"validation_errors,omitempty"`
}

// RespondWithError sends an error body without details
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// RespondWithErrorDetails sends an error body carrying the underlying cause
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message, details string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Error: message, Details: details})
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:            "validation failed",
		ValidationErrors: errors,
	})
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithErrorDetails(w, http.StatusInternalServerError, MessageProcessingFailed, fmt.Sprint(err))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
