package order

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindState          Kind = "state"
	KindAuthorization  Kind = "authorization"
	KindConflict       Kind = "conflict"
	KindInfrastructure Kind = "infrastructure"
)

const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeTableNotFound       = "TABLE_NOT_FOUND"
	CodeMenuItemNotFound    = "MENU_ITEM_NOT_FOUND"
	CodeMenuItemUnavailable = "MENU_ITEM_UNAVAILABLE"
	CodeOrderNotFound       = "ORDER_NOT_FOUND"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeForbidden           = "FORBIDDEN"
	CodeConcurrentUpdate    = "CONCURRENT_UPDATE"
	CodeInternal            = "INTERNAL_ERROR"
)

// Error is the failure type returned by intake and status changes. Two
// errors match under errors.Is when their codes are equal.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrValidation          = &Error{Kind: KindValidation, Code: CodeValidationFailed, Message: "validation failed"}
	ErrTableNotFound       = &Error{Kind: KindNotFound, Code: CodeTableNotFound, Message: "table not found"}
	ErrMenuItemNotFound    = &Error{Kind: KindNotFound, Code: CodeMenuItemNotFound, Message: "menu item not found"}
	ErrMenuItemUnavailable = &Error{Kind: KindState, Code: CodeMenuItemUnavailable, Message: "menu item unavailable"}
	ErrOrderNotFound       = &Error{Kind: KindNotFound, Code: CodeOrderNotFound, Message: "order not found"}
	ErrInvalidTransition   = &Error{Kind: KindState, Code: CodeInvalidTransition, Message: "invalid status transition"}
	ErrForbidden           = &Error{Kind: KindAuthorization, Code: CodeForbidden, Message: "forbidden"}
	ErrConcurrentUpdate    = &Error{Kind: KindConflict, Code: CodeConcurrentUpdate, Message: "order was modified concurrently"}
	ErrInternal            = &Error{Kind: KindInfrastructure, Code: CodeInternal, Message: "internal error"}
)

func newError(base *Error, message string, cause error) *Error {
	if message == "" {
		message = base.Message
	}
	return &Error{Kind: base.Kind, Code: base.Code, Message: message, Err: cause}
}

func validationError(message string) *Error {
	return newError(ErrValidation, message, nil)
}

func internalError(cause error) *Error {
	return newError(ErrInternal, "", cause)
}

// HTTPStatus maps an error to the response status. Unknown errors are 500.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}

	switch e.Code {
	case CodeValidationFailed, CodeInvalidTransition:
		return http.StatusBadRequest
	case CodeTableNotFound, CodeMenuItemNotFound, CodeOrderNotFound:
		return http.StatusNotFound
	case CodeMenuItemUnavailable, CodeConcurrentUpdate:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage hides infrastructure causes from customers.
func PublicMessage(err error) (code, message string) {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInfrastructure {
		return CodeInternal, "Something went wrong, please try again"
	}
	return e.Code, e.Message
}
