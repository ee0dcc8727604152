// Package apperr carries the error taxonomy shared by services and the HTTP
// boundary. Services return *Error values; handlers translate Kind into a
// status code.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInvalidOTP
	KindExpired
	KindInvalidCredentials
	KindForbidden
	KindUnauthenticated
	KindValidationFailed
	KindDeliveryFailed
	KindGatewayError
	KindAlreadyPremium
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidOTP:
		return "invalid_otp"
	case KindExpired:
		return "expired"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindValidationFailed:
		return "validation_failed"
	case KindDeliveryFailed:
		return "delivery_failed"
	case KindGatewayError:
		return "gateway_error"
	case KindAlreadyPremium:
		return "already_premium"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so callers can write
// errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict           = &Error{Kind: KindConflict, Message: "conflict"}
	ErrInvalidOTP         = &Error{Kind: KindInvalidOTP, Message: "invalid OTP"}
	ErrExpired            = &Error{Kind: KindExpired, Message: "expired"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "unauthenticated"}
	ErrValidationFailed   = &Error{Kind: KindValidationFailed, Message: "validation failed"}
	ErrDeliveryFailed     = &Error{Kind: KindDeliveryFailed, Message: "delivery failed"}
	ErrGatewayError       = &Error{Kind: KindGatewayError, Message: "payment gateway error"}
	ErrAlreadyPremium     = &Error{Kind: KindAlreadyPremium, Message: "already premium"}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Invalid builds a ValidationFailed error listing every failed field rule.
func Invalid(message string, details ...string) *Error {
	return &Error{Kind: KindValidationFailed, Message: message, Details: details}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message of err. Internal errors never leak
// their detail.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}

// BanError is returned by the login guard while a temporary ban is active.
type BanError struct {
	Remaining time.Duration
}

func (e *BanError) Error() string {
	return fmt.Sprintf("Account is temporarily banned. Try again in %d minute(s).", e.Minutes())
}

// Minutes rounds the remaining ban up to whole minutes.
func (e *BanError) Minutes() int {
	m := int(e.Remaining / time.Minute)
	if e.Remaining%time.Minute > 0 {
		m++
	}
	return m
}

func (e *BanError) Is(target error) bool {
	return target == ErrForbidden
}

// Banned wraps a BanError as a Forbidden *Error so KindOf and Message work
// uniformly.
func Banned(remaining time.Duration) *Error {
	ban := &BanError{Remaining: remaining}
	return &Error{Kind: KindForbidden, Message: ban.Error(), Err: ban}
}
