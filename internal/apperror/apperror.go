// Package apperror defines the error taxonomy shared across the ingest
// service and the single table that translates it to HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one of the abstract error categories the core
// operations raise. Kinds are stable across the package and are safe to
// switch on.
type Kind string

const (
	KindValidationFailed       Kind = "validation_failed"
	KindNotFound               Kind = "not_found"
	KindChunkChecksumMismatch  Kind = "chunk_checksum_mismatch"
	KindFileChecksumMismatch   Kind = "file_checksum_mismatch"
	KindNoChunks               Kind = "no_chunks"
	KindMissingChunks          Kind = "missing_chunks"
	KindNotAcceptingChunks     Kind = "not_accepting_chunks"
	KindNotReady               Kind = "not_ready"
	KindInconsistentState      Kind = "inconsistent_state"
	KindProcessingTimeout      Kind = "processing_timeout"
	KindProcessingFailed       Kind = "processing_failed"
	KindInternalIO             Kind = "internal_io"
)

// Error is a typed application error carrying one of the abstract Kinds
// plus an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given Kind with a message and no cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given Kind wrapping an existing error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// KindOf extracts the Kind from err, returning ("", false) if err is not
// an *Error produced by this package.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

// httpStatus is the single translation table from abstract error kind to
// HTTP status code. Every mapping used by the HTTP surface lives here.
var httpStatus = map[Kind]int{
	KindValidationFailed:      http.StatusUnprocessableEntity,
	KindNotFound:              http.StatusNotFound,
	KindChunkChecksumMismatch: http.StatusUnprocessableEntity,
	KindFileChecksumMismatch:  http.StatusUnprocessableEntity,
	KindNoChunks:              http.StatusUnprocessableEntity,
	KindMissingChunks:         http.StatusUnprocessableEntity,
	KindNotAcceptingChunks:    http.StatusUnprocessableEntity,
	KindNotReady:              http.StatusAccepted,
	KindInconsistentState:     http.StatusInternalServerError,
	KindProcessingTimeout:     http.StatusInternalServerError,
	KindProcessingFailed:      http.StatusInternalServerError,
	KindInternalIO:            http.StatusInternalServerError,
}

// HTTPStatus maps err to the HTTP status code the handler should return.
// Errors that are not *Error map to 500.
func HTTPStatus(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if status, ok := httpStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
