// Package apperr classifies downloader failures so callers can map them to exit codes
// or HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
)

// ConfigurationError reports bad or contradictory arguments. It is always raised
// before any network call.
type ConfigurationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ConfigurationError) Error() string {
	s := "configuration: "
	if e.Field != "" {
		s += e.Field + ": "
	}
	s += e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NetworkError reports a transport failure (timeout, refused connection).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: GET %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ResponseError reports a non-success status or an unusable body.
type ResponseError struct {
	URL    string
	Status int
	Msg    string
	Err    error
}

func (e *ResponseError) Error() string {
	s := "response"
	if e.Status != 0 {
		s += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.URL != "" {
		s += " from " + e.URL
	}
	s += ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ResponseError) Unwrap() error { return e.Err }

func Config(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func ConfigWrap(field, msg string, err error) error {
	return &ConfigurationError{Field: field, Msg: msg, Err: err}
}

func Network(url string, err error) error {
	return &NetworkError{URL: url, Err: err}
}

func Response(url string, status int, msg string, err error) error {
	return &ResponseError{URL: url, Status: status, Msg: msg, Err: err}
}

func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

func IsResponse(err error) bool {
	var re *ResponseError
	return errors.As(err, &re)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsConfiguration(err):
		return 2
	case IsNetwork(err):
		return 3
	case IsResponse(err):
		return 4
	default:
		return 1
	}
}
