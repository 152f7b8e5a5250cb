package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/giovaniif/items/domain/item"
)

var (
	ErrTimeout = errors.New("timeout error")
	ErrNetwork = errors.New("network error")
)

func NewTimeoutError(details string) error {
	return fmt.Errorf("%w: %s", ErrTimeout, details)
}

func NewNetworkError(details string) error {
	return fmt.Errorf("%w: %s", ErrNetwork, details)
}

// NewStoreError wraps a backend failure so callers can match it with item.ErrStore.
// Context expiry is additionally reported as ErrTimeout.
func NewStoreError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w: %s: %w", item.ErrStore, ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %w", item.ErrStore, op, err)
}

// IsRetriable reports timeouts and network (5xx) failures. The client uses it to
// decide which calls to replay.
func IsRetriable(err error) bool {
	return err != nil && (errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork))
}
