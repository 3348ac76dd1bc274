// Package errors carries the typed failures the order service reports. Each
// code decides the HTTP status and how much of the error reaches the caller.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeNotFound            Code = "NOT_FOUND"
	CodeConflict            Code = "CONFLICT"
	CodeIdempotency         Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInsufficientStock   Code = "INSUFFICIENT_STOCK"
	CodeInsufficientLoyalty Code = "INSUFFICIENT_LOYALTY_POINTS"
	CodeInvalidDiscount     Code = "INVALID_DISCOUNT"
	CodeInvalidTransition   Code = "INVALID_TRANSITION"
	CodePersistence         Code = "PERSISTENCE_FAILURE"
	CodeInternal            Code = "INTERNAL_ERROR"
	CodeDependency          Code = "DEPENDENCY_ERROR"
)

// Metadata is the public face of a code.
type Metadata struct {
	HTTPStatus     int
	PublicMessage  string
	DetailsAllowed bool
}

func rejected(status int, msg string) Metadata { return Metadata{status, msg, true} }
func opaque(status int, msg string) Metadata   { return Metadata{status, msg, false} }

var catalog = map[Code]Metadata{
	CodeValidation:          rejected(http.StatusBadRequest, "validation failed"),
	CodeInsufficientStock:   rejected(http.StatusBadRequest, "insufficient stock"),
	CodeInsufficientLoyalty: rejected(http.StatusBadRequest, "insufficient loyalty points"),
	CodeInvalidDiscount:     rejected(http.StatusBadRequest, "invalid discount"),
	CodeConflict:            rejected(http.StatusConflict, "conflict detected"),
	CodeIdempotency:         rejected(http.StatusConflict, "idempotency key reused"),
	CodeInvalidTransition:   rejected(http.StatusConflict, "status transition not allowed"),
	CodeDependency:          rejected(http.StatusServiceUnavailable, "dependency unavailable"),
	CodeUnauthorized:        opaque(http.StatusUnauthorized, "authentication required"),
	CodeForbidden:           opaque(http.StatusForbidden, "access denied"),
	CodeNotFound:            opaque(http.StatusNotFound, "resource not found"),
	CodePersistence:         opaque(http.StatusInternalServerError, "internal server error"),
	CodeInternal:            opaque(http.StatusInternalServerError, "internal server error"),
}

// MetadataFor falls back to CodeInternal for codes it does not know.
func MetadataFor(code Code) Metadata {
	if meta, ok := catalog[code]; ok {
		return meta
	}
	return catalog[CodeInternal]
}

// Error is a coded failure. The message is shown to clients for 4xx codes;
// details only when the code allows them.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code to cause. A nil cause behaves like New.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause == nil:
		return string(e.code) + ": " + e.message
	default:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stderrors.As(err, &typed) {
		return typed
	}
	return nil
}

func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// EnsureTyped leaves coded errors alone and wraps anything else with fallback.
func EnsureTyped(err error, fallback Code, message string) error {
	if err == nil || As(err) != nil {
		return err
	}
	return Wrap(fallback, err, message)
}
