package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrNoStoredToken     = errors.New("no stored token")
	ErrSessionExpired    = errors.New("session expired")
	ErrUnauthenticated   = errors.New("not signed in")
	ErrForbidden         = errors.New("insufficient role")
	ErrItemNotFound      = errors.New("item not found in collection")
	ErrInvalidStatus     = errors.New("invalid request status")
	ErrUnknownTransport  = errors.New("unknown api transport")
	ErrDocumentsDisabled = errors.New("document storage is not configured")
	ErrSessionSuperseded = errors.New("session changed before the result arrived")
)

// APIError is a failure reported by the server with a response.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message,omitempty"`
	Err     string `json:"error,omitempty"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Err
	}
	if msg == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, msg)
}

// NetworkError is a request that was sent but produced no response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: no response: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
