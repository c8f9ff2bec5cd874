package httperr

import (
	"errors"
	"net/http"
)

// HTTPError represents a typed error with an HTTP status code.
type HTTPError struct {
	Code    int
	Message string
	Errors  map[string][]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// New returns an HTTPError with code and message.
func New(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

// NotFound returns a 404 error.
func NotFound(message string) *HTTPError {
	return New(http.StatusNotFound, message)
}

// UnprocessableEntity returns a 422 error with field-level validation errors.
func UnprocessableEntity(errs map[string][]string) *HTTPError {
	return &HTTPError{Code: http.StatusUnprocessableEntity, Message: "Validation failed", Errors: errs}
}

// StatusCode returns the code of the HTTPError in err's chain, 500 for any
// other error and 200 for nil.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err carries a 404.
func IsNotFound(err error) bool {
	return err != nil && StatusCode(err) == http.StatusNotFound
}
