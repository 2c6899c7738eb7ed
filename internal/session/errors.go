package session

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAlreadyStarted   = errors.New("session already started")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
)

// Error is a rejected sign in or sign up. Message is the provider's text.
type Error struct {
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	return "session: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func asSessionError(err error) *Error {
	var sessionErr *Error
	if errors.As(err, &sessionErr) {
		return sessionErr
	}
	return &Error{Message: err.Error(), Err: err}
}
