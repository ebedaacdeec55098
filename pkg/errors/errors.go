package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError so callers can match on category instead of
// string-comparing messages.
type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindAccessDenied    Kind = "ACCESS_DENIED"
	KindInvalidState    Kind = "INVALID_STATE"
	KindValidation      Kind = "VALIDATION_ERROR"
	KindConflict        Kind = "CONFLICT"
	KindInactiveAccount Kind = "INACTIVE_ACCOUNT"
	KindInvalidRole     Kind = "INVALID_ROLE"
	KindAlreadyExists   Kind = "ALREADY_EXISTS"
	KindUnauthorized    Kind = "UNAUTHORIZED"
	KindInternal        Kind = "INTERNAL"
)

var (
	ErrInvalidCredentials = Unauthorized("invalid email or password")
	ErrInvalidToken       = Unauthorized("invalid or expired token")

	ErrUserNotFound      = NotFound("user", "user not found")
	ErrUserAlreadyExists = AlreadyExists("user with this email already exists")
	ErrUserInactive      = InactiveAccount("user account is inactive")
)

// AppError is the error currency of the service layer. Kind drives the HTTP
// status, Message is safe to show to callers, Err keeps the underlying cause.
type AppError struct {
	Kind    Kind
	Entity  string
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

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NotFound(entity, message string) *AppError {
	return &AppError{Kind: KindNotFound, Entity: entity, Message: message}
}

// AccessDenied deliberately carries a uniform message so callers cannot probe
// for entity existence through error text.
func AccessDenied(entity string) *AppError {
	return &AppError{Kind: KindAccessDenied, Entity: entity, Message: "access denied to " + entity}
}

func InvalidState(entity, current, requested string) *AppError {
	return &AppError{
		Kind:    KindInvalidState,
		Entity:  entity,
		Message: fmt.Sprintf("%s cannot transition from %s to %s", entity, current, requested),
	}
}

func Validation(message string, err error) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Err: err}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func InactiveAccount(message string) *AppError {
	return &AppError{Kind: KindInactiveAccount, Message: message}
}

func InvalidRole(message string) *AppError {
	return &AppError{Kind: KindInvalidRole, Message: message}
}

func AlreadyExists(message string) *AppError {
	return &AppError{Kind: KindAlreadyExists, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

// KindOf unwraps err and returns its Kind, or KindInternal for plain errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status code the REST surface reports.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindAccessDenied, KindInactiveAccount, KindInvalidRole:
		return http.StatusForbidden
	case KindInvalidState, KindConflict, KindAlreadyExists:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
