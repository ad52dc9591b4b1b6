package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassification(t *testing.T) {
	tests := map[string]struct {
		err          error
		userFacing   bool
		retryable    bool
		unavailable  bool
		lockTimedOut bool
	}{
		"validation": {
			err:        Validation("invalid product number"),
			userFacing: true,
		},
		"wrapped validation": {
			err:        fmt.Errorf("select: %w", Validation("bad")),
			userFacing: true,
		},
		"insufficient stock": {
			err:        &InsufficientStockError{ProductID: "p1", Requested: 3, Available: 1},
			userFacing: true,
		},
		"store failure": {
			err:         Unavailable(errors.New("connection refused")),
			retryable:   true,
			unavailable: true,
		},
		"lock timeout": {
			err:          fmt.Errorf("acquire: %w", ErrLockTimeout),
			retryable:    true,
			lockTimedOut: true,
		},
		"failed hand-back hides stock shortage": {
			err: Unavailable(errors.Join(
				errors.New("release doohickey: connection reset"),
				&InsufficientStockError{ProductID: "gadget", Requested: 5},
			)),
			retryable:   true,
			unavailable: true,
		},
		"lock timeout around validation": {
			err:          fmt.Errorf("%w: %w", ErrLockTimeout, Validation("bad")),
			retryable:    true,
			lockTimedOut: true,
		},
		"unknown error is retryable": {
			err:       errors.New("boom"),
			retryable: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tt.userFacing, IsUserFacing(tt.err))
			require.Equal(t, tt.retryable, IsRetryable(tt.err))
			require.Equal(t, tt.unavailable, errors.Is(tt.err, ErrStoreUnavailable))
			require.Equal(t, tt.lockTimedOut, errors.Is(tt.err, ErrLockTimeout))
		})
	}
}

func TestUnavailable(t *testing.T) {
	require.NoError(t, Unavailable(nil))

	base := errors.New("db down")
	once := Unavailable(base)
	twice := Unavailable(once)

	require.ErrorIs(t, once, base)
	require.Equal(t, once, twice)
	require.False(t, IsRetryable(nil))
}
