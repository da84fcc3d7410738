package core

import (
	"errors"
	"fmt"
)

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Symbol errors
	ErrInvalidSymbol  = &Error{Code: "INVALID_SYMBOL", Message: "invalid symbol"}
	ErrSymbolNotFound = &Error{Code: "SYMBOL_NOT_FOUND", Message: "symbol not found"}
	ErrNoData         = &Error{Code: "NO_DATA", Message: "no data available"}

	// Prediction service errors
	ErrTransport = &Error{Code: "TRANSPORT_ERROR", Message: "prediction service unreachable"}
	ErrUpstream  = &Error{Code: "UPSTREAM_ERROR", Message: "prediction service returned an error"}
	ErrShape     = &Error{Code: "SHAPE_ERROR", Message: "malformed prediction response"}
	ErrFetch     = &Error{Code: "FETCH_FAILED", Message: "signal fetch failed"}

	// Persistence errors
	ErrPersistFailed = &Error{Code: "PERSIST_FAILED", Message: "failed to persist state"}

	// Notifier errors
	ErrNotifierFailed = &Error{Code: "NOTIFIER_FAILED", Message: "notifier failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)

// FetchError is the single failure type returned for a symbol fetch.
// Cause wraps one of ErrTransport, ErrUpstream or ErrShape.
type FetchError struct {
	Symbol Symbol
	Cause  error
}

// NewFetchError wraps cause under the given taxonomy error.
func NewFetchError(symbol Symbol, kind *Error, cause error) *FetchError {
	return &FetchError{Symbol: symbol, Cause: WrapError(kind, cause)}
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Symbol, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrFetch) match any fetch failure.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// Kind returns the taxonomy code of the failure, or FETCH_FAILED when unknown.
func (e *FetchError) Kind() string {
	var coreErr *Error
	if errors.As(e.Cause, &coreErr) {
		return coreErr.Code
	}
	return ErrFetch.Code
}
