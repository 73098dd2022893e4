// Package apperr carries the typed failures the services return: not-found,
// forbidden, conflict and invalid-input, each with its HTTP status. Anything
// else surfaces as a generic internal error so implementation details never
// reach a client.
package apperr

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

// Conflict marks an illegal state transition: double votes, removing a vote
// that isn't there, duplicate subscribe/ban.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

func Invalid(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// Status returns the HTTP status and client-safe message for err. Untyped
// errors collapse to 500 with a generic message.
func Status(err error) (int, string) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status, ae.Message
	}
	return http.StatusInternalServerError, "Something went wrong"
}

// IsConflict reports whether err is a Conflict failure.
func IsConflict(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusConflict
}
