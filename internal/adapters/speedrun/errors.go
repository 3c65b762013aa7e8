package speedrun

import "fmt"

// APIError is a non-2xx response from speedrun.com.
// The message is kept verbatim; removed runs are recognised by its text.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func newAPIError(operation string, status int, message string) *APIError {
	return &APIError{Operation: operation, StatusCode: status, Message: message}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Operation, e.StatusCode, e.Message)
}
