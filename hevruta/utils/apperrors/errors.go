package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so routes can map it to an HTTP
// status without inspecting message strings.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindExternal   Kind = "external_service"
	KindBusiness   Kind = "business_logic"
	KindInternal   Kind = "internal"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *AppError { return New(KindValidation, message) }
func NotFound(message string) *AppError   { return New(KindNotFound, message) }
func Conflict(message string) *AppError   { return New(KindConflict, message) }
func Business(message string) *AppError   { return New(KindBusiness, message) }

func External(message string, err error) *AppError {
	return Wrap(KindExternal, message, err)
}

// Status maps an error to its HTTP status code. Anything that is not an
// *AppError is an unexpected failure and maps to 500.
func Status(err error) int {
	var ae *AppError
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExternal:
		return http.StatusBadGateway
	case KindBusiness:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Envelope is the uniform JSON error body for all routes.
type Envelope struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ToEnvelope builds the wire representation. Unexpected errors get a
// generic message so internals never leak to clients.
func ToEnvelope(err error) Envelope {
	var ae *AppError
	if errors.As(err, &ae) {
		return Envelope{Error: ErrorBody{Kind: string(ae.Kind), Message: ae.Message}}
	}
	return Envelope{Error: ErrorBody{Kind: string(KindInternal), Message: "internal server error"}}
}
