// Package apperr is the client's error taxonomy. Every error carries a
// message fit for the user and, separately, the detail worth logging.
package apperr

import "fmt"

type Kind int

const (
	KindAuthenticationFailed Kind = iota + 1
	KindSessionAbsent
	KindMalformedResponse
	KindTransportFailure
	KindRequestRejected
	KindValidationFailed
	// the request could not be built or sent; the server never saw it
	KindRequestFailed
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticationFailed:
		return "AuthenticationFailed"
	case KindSessionAbsent:
		return "SessionAbsent"
	case KindMalformedResponse:
		return "MalformedResponse"
	case KindTransportFailure:
		return "TransportFailure"
	case KindRequestRejected:
		return "RequestRejected"
	case KindValidationFailed:
		return "ValidationFailed"
	case KindRequestFailed:
		return "RequestFailed"
	}
	return "Unknown"
}

type Error struct {
	Kind          Kind
	ClientMessage string
	DevMessage    string
	Err           error
}

// sentinels for errors.Is; they match any *Error of the same kind
var (
	ErrAuthenticationFailed = &Error{Kind: KindAuthenticationFailed}
	ErrSessionAbsent        = &Error{Kind: KindSessionAbsent}
	ErrMalformedResponse    = &Error{Kind: KindMalformedResponse}
	ErrTransportFailure     = &Error{Kind: KindTransportFailure}
	ErrRequestRejected      = &Error{Kind: KindRequestRejected}
	ErrValidationFailed     = &Error{Kind: KindValidationFailed}
	ErrRequestFailed        = &Error{Kind: KindRequestFailed}
)

func (e *Error) Error() string {
	msg := e.ClientMessage
	if e.DevMessage != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.DevMessage)
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func New(kind Kind, clientMessage string) *Error {
	return &Error{Kind: kind, ClientMessage: clientMessage}
}

func Wrap(err error, kind Kind, clientMessage, devMessage string) *Error {
	e := &Error{Kind: kind, ClientMessage: clientMessage, DevMessage: devMessage, Err: err}
	if err != nil && devMessage == "" {
		e.DevMessage = err.Error()
	}
	return e
}

func Validation(clientMessage string) *Error {
	return New(KindValidationFailed, clientMessage)
}

// Message returns the user-facing text of err, falling back to err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok && e.ClientMessage != "" {
		return e.ClientMessage
	}
	return err.Error()
}
