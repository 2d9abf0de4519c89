package apperr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories surfaced to callers of the storefront services
type Kind int

const (
	KindInternal Kind = iota
	KindTransient
	KindValidation
	KindAuthRequired
	KindInvalidCredentials
	KindConflict
	KindNotFound
	KindPaymentDeclined
	KindPaymentCancelled
	KindPopupBlocked
	// KindOrderPersistence means payment was captured but the order write failed
	KindOrderPersistence
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "TRANSIENT"
	case KindValidation:
		return "VALIDATION"
	case KindAuthRequired:
		return "AUTH_REQUIRED"
	case KindInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case KindConflict:
		return "CONFLICT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindPaymentDeclined:
		return "PAYMENT_DECLINED"
	case KindPaymentCancelled:
		return "PAYMENT_CANCELLED"
	case KindPopupBlocked:
		return "POPUP_BLOCKED"
	case KindOrderPersistence:
		return "ORDER_PERSISTENCE"
	default:
		return "INTERNAL"
	}
}

// Error carries a kind, a human readable message and optional structured fields (payment id, product id, ...)
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// With returns the error with an extra structured field attached
func (e *Error) With(key, value string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[key] = value
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf reports the kind of the first *Error in err's chain, KindInternal when there is none
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Field returns a structured field from the first *Error in err's chain
func Field(err error, key string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Fields != nil {
		return appErr.Fields[key]
	}
	return ""
}
