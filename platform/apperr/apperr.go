// Package apperr is the error taxonomy shared by services and the HTTP layer.
// Services return *Error values; httpkit.HandleError turns the Kind into a
// status code and the Code into a stable machine-readable field.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindForbidden
	KindUnauthorized
	KindBadRequest
	KindInternal
	// KindTimeout means a unit of work gave up waiting; the caller may retry.
	KindTimeout
)

var kinds = map[Kind]struct {
	name   string
	status int
}{
	KindNotFound:     {"not_found", http.StatusNotFound},
	KindValidation:   {"validation", http.StatusBadRequest},
	KindConflict:     {"conflict", http.StatusConflict},
	KindForbidden:    {"forbidden", http.StatusForbidden},
	KindUnauthorized: {"unauthorized", http.StatusUnauthorized},
	KindBadRequest:   {"bad_request", http.StatusBadRequest},
	KindInternal:     {"internal", http.StatusInternalServerError},
	KindTimeout:      {"timeout", http.StatusServiceUnavailable},
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "unknown"
}

// Error carries a Kind plus optional context. Op names the failing
// operation, Details is rendered verbatim into the response body.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Op      string
	Err     error
	Details any
}

// Error renders "op: message: cause", omitting empty parts.
func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	parts = append(parts, e.Message)
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus is 500 for kinds without a mapping.
func (e *Error) HTTPStatus() int {
	if info, ok := kinds[e.Kind]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Validation(message string) *Error   { return New(KindValidation, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func BadRequest(message string) *Error   { return New(KindBadRequest, message) }
func Timeout(message string) *Error      { return New(KindTimeout, message) }

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// GetKind is KindUnknown when the chain holds no *Error.
func GetKind(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

func HasCode(err error, code string) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

func IsRetryable(err error) bool {
	return Is(err, KindTimeout)
}
