package doli

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Match with errors.Is.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrAuthentication    = errors.New("authentication error")
	ErrTransport         = errors.New("request failed")
	ErrLoginTokenMissing = errors.New("login response has no success.token")
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired  = errors.New("config is required")
	ErrBaseURLRequired = fmt.Errorf("%w: BASE_URL is required", ErrConfiguration)
	ErrNoAPIKey        = fmt.Errorf("%w: no API key available and prompting is disabled", ErrAuthentication)
	ErrNoCredentials   = fmt.Errorf("%w: no credential provider configured", ErrAuthentication)
	ErrEmptyResponse   = errors.New("empty response body")
	ErrInvalidPayload  = errors.New("response body is not valid JSON")
	ErrKeyNotFound     = errors.New("API key not found in store")
)

// TransportError reports a failed HTTP exchange. The response body is not retained.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: %s: http %d %s", e.Method, e.URL, ErrTransport, e.StatusCode, http.StatusText(e.StatusCode))
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, ErrTransport, e.Cause)
	}

	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, ErrTransport)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is makes every TransportError match ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// IsTransport checks if the error is a transport error.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsUnauthorized checks if the error is a 401 from the API.
func IsUnauthorized(err error) bool {
	return statusCode(err) == http.StatusUnauthorized
}

// IsNotFound checks if the error is a 404 from the API.
func IsNotFound(err error) bool {
	return statusCode(err) == http.StatusNotFound
}

func statusCode(err error) int {
	transportErr := &TransportError{}
	if errors.As(err, &transportErr) {
		return transportErr.StatusCode
	}

	return 0
}
