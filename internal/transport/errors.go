package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a request failure. Every error leaving this package is an
// *Error carrying exactly one Kind; callers never see raw HTTP or net errors.
type Kind int

const (
	// KindNetwork: no response was received (connection failure or timeout).
	KindNetwork Kind = iota

	// KindHTTP: a non-2xx response with no more specific classification.
	KindHTTP

	// KindValidation: a 4xx response carrying a user-actionable message.
	KindValidation

	// KindConflict: a 409 response, e.g. a duplicate review.
	KindConflict

	// KindSessionExpired: a 401 response outside the auth endpoints.
	KindSessionExpired
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindSessionExpired:
		return "session-expired"
	}
	return "unknown"
}

// NetworkErrorMessage is the fixed message for failures with no response.
const NetworkErrorMessage = "Network error. Please check your connection."

// genericErrorMessage is used when the server response carries no message.
const genericErrorMessage = "An error occurred"

// Error is the normalized request failure.
type Error struct {
	Kind    Kind
	Status  int // zero when no response was received
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// classify maps a response status and server message to an Error.
func classify(status int, serverMessage string) *Error {
	message := serverMessage
	if message == "" {
		message = genericErrorMessage
	}

	e := &Error{Status: status, Message: message}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindSessionExpired
	case status == http.StatusConflict:
		e.Kind = KindConflict
	case status >= 400 && status < 500 && serverMessage != "":
		e.Kind = KindValidation
	default:
		e.Kind = KindHTTP
	}

	return e
}

func networkError() *Error {
	return &Error{Kind: KindNetwork, Message: NetworkErrorMessage}
}

// AsError unwraps err to the transport error, if it is one.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// KindOf reports the Kind of err, or KindHTTP if err is not a transport error.
func KindOf(err error) Kind {
	if te, ok := AsError(err); ok {
		return te.Kind
	}
	return KindHTTP
}

// IsConflict reports whether err is a 409 conflict.
func IsConflict(err error) bool {
	te, ok := AsError(err)
	return ok && te.Kind == KindConflict
}

// IsSessionExpired reports whether err is a 401 outside the auth endpoints.
func IsSessionExpired(err error) bool {
	te, ok := AsError(err)
	return ok && te.Kind == KindSessionExpired
}

// IsNetwork reports whether err is a no-response failure.
func IsNetwork(err error) bool {
	te, ok := AsError(err)
	return ok && te.Kind == KindNetwork
}

// Message returns the normalized user-facing message for err. Non-transport
// errors fall back to the generic message rather than leaking internals.
func Message(err error) string {
	if te, ok := AsError(err); ok {
		return te.Message
	}
	return genericErrorMessage
}
