package server

import (
	"errors"
	"net/http"
)

type errorKind int

const (
	errKindConflict errorKind = iota
	errKindValidation
	errKindNotFound
	errKindExhausted
)

// gameError carries the failure class so handlers can map rejected
// operations to a status code without matching on message strings.
type gameError struct {
	kind    errorKind
	message string
}

func (e *gameError) Error() string {
	return e.message
}

func validationError(message string) error {
	return &gameError{kind: errKindValidation, message: message}
}

func stateConflict(message string) error {
	return &gameError{kind: errKindConflict, message: message}
}

func notFound(message string) error {
	return &gameError{kind: errKindNotFound, message: message}
}

func resourceExhausted(message string) error {
	return &gameError{kind: errKindExhausted, message: message}
}

func errorStatus(err error) int {
	var gerr *gameError
	if errors.As(err, &gerr) {
		switch gerr.kind {
		case errKindValidation:
			return http.StatusBadRequest
		case errKindNotFound:
			return http.StatusNotFound
		case errKindExhausted:
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusConflict
}

func isNotFound(err error) bool {
	var gerr *gameError
	return errors.As(err, &gerr) && gerr.kind == errKindNotFound
}
