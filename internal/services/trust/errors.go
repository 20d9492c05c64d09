package trust

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindAuthentication     ErrorKind = "authentication"
	KindInvalid            ErrorKind = "invalid"
	KindServiceUnreachable ErrorKind = "service_unreachable"
	KindPredictionRejected ErrorKind = "prediction_rejected"
	KindEmptyResult        ErrorKind = "empty_result"
	KindUnexpected         ErrorKind = "unexpected"
)

const (
	MsgNotLoggedIn        = "You must be logged in to analyze a review."
	MsgServiceUnreachable = "The analysis service is unreachable. The backend may be down; please try again later."
	MsgEmptyPrediction    = "The model produced no result."
	MsgEmptyExplanation   = "Could not generate an explanation."
	MsgUnexpected         = "An unexpected error occurred."
)

// Error is the only error type Analyze returns. Message is safe to show to users.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error kind onto the API response status.
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindInvalid:
		return http.StatusBadRequest
	case KindServiceUnreachable, KindPredictionRejected, KindEmptyResult:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind ErrorKind, msg string, err error) *Error {
	if msg == "" {
		msg = MsgUnexpected
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf reports the kind of err, or KindUnexpected when err is not an *Error.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnexpected
}
