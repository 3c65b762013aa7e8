package discord

import (
	"fmt"

	"github.com/example/queuebot/internal/ports/secondary"
)

// APIError is a non-2xx response that is neither a rate limit nor a
// validation failure.
type APIError struct {
	Operation  string
	StatusCode int
	Code       int
	Message    string
}

func newAPIError(operation string, status, code int, message string) *APIError {
	return &APIError{Operation: operation, StatusCode: status, Code: code, Message: message}
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: HTTP %d: [%d] %s", e.Operation, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Operation, e.StatusCode, e.Message)
}

// Is lets errors.Is(err, secondary.ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == secondary.ErrNotFound && e.StatusCode == 404
}
