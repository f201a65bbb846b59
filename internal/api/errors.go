package api

import (
	"errors"
	"fmt"
)

// StatusError means the backend answered, but not with a status the
// operation accepts.
type StatusError struct {
	Method    string
	Path      string
	Code      int
	Message   string // "message" field of the error body, if any
	RequestID string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

// TransportError means the request went out but no response came back
// (connection refused, reset, timeout).
type TransportError struct {
	Method    string
	Path      string
	RequestID string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: no response: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

const (
	msgGenericStatus = "An error occurred."
	msgNoResponse    = "No response received from the server. Please try again."
	msgUnexpected    = "An unexpected error occurred. Please try again."
)

// Describe turns any error returned by Client into the line shown to the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	if errors.As(err, &se) {
		msg := se.Message
		if msg == "" {
			msg = msgGenericStatus
		}
		return fmt.Sprintf("Error: %d - %s", se.Code, msg)
	}
	var te *TransportError
	if errors.As(err, &te) {
		return msgNoResponse
	}
	return msgUnexpected
}

// NoResponse reports whether err means the request may have reached the
// server without us learning the outcome.
func NoResponse(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
