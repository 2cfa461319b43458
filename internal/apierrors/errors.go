// Package apierrors contains all common errors used by the ERP client.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrTokenNotFound = fmt.Errorf("the token cannot be found")
var ErrMissingRefreshToken = fmt.Errorf("missing refresh token")
var ErrRefreshFailed = fmt.Errorf("refresh failed")
var ErrMissingAccessToken = fmt.Errorf("the refresh response did not contain an access token")
var ErrNotFound = fmt.Errorf("the requested resource cannot be found")
var ErrUnexpectedResponse = fmt.Errorf("the response body has an unexpected shape")
var ErrMissingDBResource = fmt.Errorf("the requested resource cannot be found in the DB")

// StatusError is returned when the API answers with a non-2xx status code.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.StatusCode, bodySnippet(e.Body))
}

// TransportError is returned when the request did not produce any HTTP response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthError reports a failed attempt to recover from a 401. Reason is one of
// ErrMissingRefreshToken or ErrRefreshFailed, Err is the error that is propagated
// to the caller (the original 401 or the refresh error).
type AuthError struct {
	Reason error
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

// StatusCode returns the HTTP status carried by err, or 0 if there is none.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

func bodySnippet(body []byte) string {
	if len(body) > 256 {
		body = body[:256]
	}
	return string(body)
}
