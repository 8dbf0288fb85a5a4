package services

import "errors"

// Error kinds. Match with errors.Is; the HTTP layer maps each to a status.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrMissingPassword    = errors.New("password required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
)

// Error carries a user-facing message for one of the kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

func invalid(message string) error {
	return newError(ErrInvalidInput, message)
}
