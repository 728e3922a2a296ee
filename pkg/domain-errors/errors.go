// Package domainerrors defines the tagged error type shared by services and
// transports. Every failure that crosses a service boundary carries a Code;
// transports translate the Code into HTTP statuses or JSON-RPC error numbers
// without inspecting the message text.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code enumerates the failure kinds callers can observe.
type Code string

const (
	// Request shape
	CodeBadRequest           Code = "bad_request"
	CodeInvalidRequest       Code = "invalid_request"
	CodeInvalidInput         Code = "invalid_input"
	CodeUnsupportedGrantType Code = "unsupported_grant_type"

	// Not-found / expired artifacts. Existence is never distinguished from expiry.
	CodeInvalidOrExpiredLink Code = "invalid_or_expired_link"
	CodeRequestExpired       Code = "request_expired"
	CodeNotFound             Code = "not_found"

	// Integrity violations
	CodeInvalidGrant    Code = "invalid_grant"
	CodeInvalidClientID Code = "invalid_client_id"

	// Token codec
	CodeMalformedToken   Code = "malformed_token"
	CodeInvalidSignature Code = "invalid_signature"
	CodeTokenExpired     Code = "token_expired"
	CodeUnauthorized     Code = "unauthorized"

	// Authorization
	CodeCustomerNotFound Code = "customer_not_found"
	CodeForbiddenScope   Code = "forbidden_scope"
	CodeForbidden        Code = "forbidden"

	// RPC routing
	CodeMethodNotFound Code = "method_not_found"
	CodeInvalidParams  Code = "invalid_params"

	// Transport / internal
	CodeInternal Code = "internal_error"
)

// Error is the tagged error carried across service boundaries.
type Error struct {
	Code    Code
	Message string
	Err     error
	// Data holds optional structured detail that is safe to return to callers.
	Data map[string]any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so tests can compare against a freshly constructed error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// New builds an error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// WithData returns a copy of e carrying the given detail.
func (e *Error) WithData(key string, value any) *Error {
	cp := *e
	cp.Data = make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		cp.Data[k] = v
	}
	cp.Data[key] = value
	return &cp
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or CodeInternal for untagged errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// As extracts the tagged error from err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
