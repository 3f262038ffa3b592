package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidState       = errors.New("invalid state")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrForbidden          = errors.New("forbidden")
)

var (
	ErrBookNotFound   = fmt.Errorf("book %w", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrBorrowNotFound = fmt.Errorf("borrow record %w", ErrNotFound)

	ErrUsernameTaken   = fmt.Errorf("username already in use: %w", ErrConflict)
	ErrEmailTaken      = fmt.Errorf("email already in use: %w", ErrConflict)
	ErrAlreadyBorrowed = fmt.Errorf("book already borrowed by user: %w", ErrConflict)

	ErrBookUnavailable = fmt.Errorf("book is not available: %w", ErrInvalidState)
	ErrAlreadyReturned = fmt.Errorf("book already returned: %w", ErrInvalidState)

	ErrPasswordTooLong = fmt.Errorf("password longer than 72 bytes: %w", ErrInvalidArgument)

	ErrWrongPassword = fmt.Errorf("current password is wrong: %w", ErrInvalidCredentials)
	ErrSessionClosed = fmt.Errorf("session closed: %w", ErrInvalidCredentials)
)
