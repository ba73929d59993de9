package services

import (
	"errors"
	"net/http"
)

// RPCError classifies a failure for the command surface: Status carries the
// HTTP-style code callers in the mesh expect (400 for validation/dependency
// failures, 404 for missing orders) and Message is safe to return to the
// caller. Internal causes are logged where they occur, never leaked here.
type RPCError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}

// NewBadRequest builds a bad-request-class RPCError.
func NewBadRequest(message string) *RPCError {
	return &RPCError{Status: http.StatusBadRequest, Message: message}
}

// NewNotFound builds a not-found RPCError.
func NewNotFound(message string) *RPCError {
	return &RPCError{Status: http.StatusNotFound, Message: message}
}

// AsRPCError extracts an RPCError from an error chain.
func AsRPCError(err error) (*RPCError, bool) {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr, true
	}
	return nil, false
}
