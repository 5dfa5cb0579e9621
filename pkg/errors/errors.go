package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors classify failures independently of their message.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
)

// kind ties a sentinel to the code and status it is reported with.
type kind struct {
	sentinel error
	code     string
	status   int
}

var (
	kindNotFound     = kind{ErrNotFound, "NOT_FOUND", http.StatusNotFound}
	kindInvalidInput = kind{ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest}
	kindUnauthorized = kind{ErrUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized}
	kindForbidden    = kind{ErrForbidden, "FORBIDDEN", http.StatusForbidden}
	kindConflict     = kind{ErrConflict, "CONFLICT", http.StatusConflict}
	kindUnavailable  = kind{ErrServiceUnavail, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable}
	kindInternal     = kind{ErrInternal, "INTERNAL_ERROR", http.StatusInternalServerError}
)

// kinds is searched in order by From and HTTPStatus.
var kinds = []kind{
	kindNotFound, kindInvalidInput, kindUnauthorized, kindForbidden, kindConflict, kindUnavailable,
}

// AppError is an error with the code, message and HTTP status a client sees.
// Err is kept for errors.Is and logging but never sent to clients.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (k kind) with(message string, cause error) *AppError {
	return &AppError{Code: k.code, Message: message, Status: k.status, Err: cause}
}

// New creates an AppError with a caller-chosen code. The sentinel passed as
// kind keeps errors.Is classification working for business-rule errors.
func New(code, message string, status int, kind error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: kind}
}

// NotFound creates a 404 error. The message reads "<Resource> not found",
// which is the body clients of the storefront already match on.
func NotFound(resource string) *AppError {
	return kindNotFound.with(resource+" not found", ErrNotFound)
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return kindInvalidInput.with(message, ErrInvalidInput)
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return kindUnauthorized.with(message, ErrUnauthorized)
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return kindForbidden.with(message, ErrForbidden)
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return kindConflict.with(message, ErrConflict)
}

// ServiceUnavailable creates a 503 error. A non-nil cause stays reachable
// through errors.Is alongside ErrServiceUnavail.
func ServiceUnavailable(message string, cause error) *AppError {
	if cause == nil {
		return kindUnavailable.with(message, ErrServiceUnavail)
	}
	return kindUnavailable.with(message, fmt.Errorf("%w: %w", ErrServiceUnavail, cause))
}

// Internal creates a 500 error. The message is fixed so the cause never
// reaches the client.
func Internal(err error) *AppError {
	return kindInternal.with("an internal error occurred", err)
}

// From returns err as an AppError. Errors carrying a sentinel but no
// AppError get that sentinel's generic message; anything else is Internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.with(k.sentinel.Error(), err)
		}
	}
	return Internal(err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	return From(err).Status
}
