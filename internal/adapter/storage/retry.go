package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/retry"
)

var _ port.SlotStorage = (*RetryingSlots)(nil)

// RetryingSlots retries transient failures of a networked slot storage.
// Missing and corrupt slots are final answers and are not retried.
type RetryingSlots struct {
	next port.SlotStorage
	cfg  retry.RetryConfig
}

func NewRetryingSlots(next port.SlotStorage, cfg retry.RetryConfig) RetryingSlots {
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = transient
	}
	return RetryingSlots{next: next, cfg: cfg}
}

func transient(err error) bool {
	return !errors.Is(err, domain.ErrSlotNotFound) &&
		!errors.Is(err, domain.ErrCorruptSlot) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func (s RetryingSlots) LoadCart(
	ctx context.Context, key string,
) ([]domain.CartLine, error) {
	const op = "RetryingSlots.LoadCart"

	lines, err := retry.DoWithResult(ctx, s.cfg, func() ([]domain.CartLine, error) {
		return s.next.LoadCart(ctx, key)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lines, nil
}

func (s RetryingSlots) SaveCart(
	ctx context.Context, key string, lines []domain.CartLine,
) error {
	const op = "RetryingSlots.SaveCart"

	err := retry.Do(ctx, s.cfg, func() error {
		return s.next.SaveCart(ctx, key, lines)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
