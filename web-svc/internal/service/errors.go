package service

import "errors"

var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrSubmitInProgress       = errors.New("order submission already in progress")
	ErrRestaurantUndetermined = errors.New("order restaurant could not be determined")
	ErrItemNotSelected        = errors.New("no menu item selected")
	ErrCredentialsRequired    = errors.New("username and password are required")
	ErrInvalidMenuItem        = errors.New("menu item id must be positive")
	ErrItemRestaurantUnknown  = errors.New("menu item restaurant is unknown")
)

// UserError carries the message shown to the customer next to its cause.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func userError(msg string, err error) *UserError {
	return &UserError{Message: msg, Err: err}
}
