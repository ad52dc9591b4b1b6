// Package apperror holds the error taxonomy shared by the conversational core.
//
// Only ValidationError and InsufficientStockError are ever shown to a customer.
// Everything else is infrastructure trouble and is treated as retryable: the
// inbound event is left for the messaging gateway to redeliver.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrLockTimeout      = errors.New("session lock timeout")
)

// ValidationError is a user-facing problem with the command itself.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError reports a product that cannot cover the requested quantity.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// Unavailable marks err as a storage failure. A nil err stays nil.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsInsufficientStock(err error) bool {
	var s *InsufficientStockError
	return errors.As(err, &s)
}

// IsUserFacing reports whether err carries a message meant for the customer.
// A storage failure anywhere in the chain wins over any business error it wraps.
func IsUserFacing(err error) bool {
	if infrastructure(err) {
		return false
	}
	return IsValidation(err) || IsInsufficientStock(err)
}

// IsRetryable reports whether the event that produced err should be redelivered.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if infrastructure(err) {
		return true
	}
	return !IsUserFacing(err)
}

func infrastructure(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrLockTimeout)
}
