package api

import (
	"errors"
	"fmt"
)

// CodeSessionExpired is the application-level code the API attaches to
// responses produced by an invalid or expired credential.
const CodeSessionExpired = 4011

// Error is a non-2xx API response. Code is the application-level code from
// the response body when the body carried one, zero otherwise.
type Error struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("api: status %d, code %d: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// IsSessionExpired reports whether err carries the session-invalid code,
// from any endpoint.
func IsSessionExpired(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == CodeSessionExpired
}
