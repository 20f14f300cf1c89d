package dashboard

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateIdentifier = errors.New("email already registered")
	ErrNotAuthenticated    = errors.New("login required")

	// ErrAuthentication covers both an unknown email and a wrong password.
	ErrAuthentication = errors.New("invalid email or password")

	ErrPasswordTooLong = errors.New("password too long")
)

type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// FetchError reports that market data for a coin could not be shown.
type FetchError struct {
	Coin string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s prices: %v", e.Coin, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
