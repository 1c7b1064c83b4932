package service

import (
	"errors"
	"fmt"
)

// User directory errors
var (
	ErrDuplicateUsername    = errors.New("username already exists")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrAccountNotActive     = errors.New("account is not active")
	ErrEmailTaken           = errors.New("email is used by another account")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
	ErrSameAsCurrent        = errors.New("new password must be different from current password")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotLoggedIn          = errors.New("no user is logged in")
)

// Cart and discount errors
var (
	ErrProductNotFound       = errors.New("product not found")
	ErrQuantityLimitExceeded = errors.New("quantity limit exceeded")
	ErrInvalidQuantity       = errors.New("quantity out of range")
	ErrUnknownCode           = errors.New("unknown discount code")
	ErrMinimumOrderNotMet    = errors.New("order does not reach the minimum for this code")
	ErrAlreadyApplied        = errors.New("discount code already applied")
)

// Order errors
var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidDeliveryInfo = errors.New("invalid delivery information")
	ErrOrderNotFound       = errors.New("order not found")
	ErrNotCancellable      = errors.New("order can no longer be cancelled")
)

// Generic errors
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrSubmissionInFlight = errors.New("a submission of this form is already in progress")
	ErrOperationFailed    = errors.New("operation failed")
)

// ValidationError reports the form field that failed validation.
// It matches its Kind (ErrInvalidInput unless set) with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Kind    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap exposes the error kind
func (e *ValidationError) Unwrap() error {
	if e.Kind == nil {
		return ErrInvalidInput
	}
	return e.Kind
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error()}
}

// failed marks an unexpected storage failure
func failed(action string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrOperationFailed, action, err)
}
