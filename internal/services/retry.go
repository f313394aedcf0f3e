package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

// RetryPolicy bounds how often an atomic unit is retried after a conflict.
type RetryPolicy struct {
	MaxAttempts     uint64        // Total attempts including the first one
	InitialInterval time.Duration // First backoff delay
	MaxInterval     time.Duration // Upper bound of a single delay
	MaxElapsedTime  time.Duration // Total time budget, zero means no limit
}

// DefaultRetryPolicy is used when no policy is configured.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     5,
	InitialInterval: 10 * time.Millisecond,
	MaxInterval:     200 * time.Millisecond,
	MaxElapsedTime:  2 * time.Second,
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.MaxElapsedTime

	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, attempts-1), ctx)
}

// run calls op until it succeeds, fails with a non-conflict error or the
// policy is exhausted. Exhaustion is reported as models.ErrTransferFailed
// wrapping the last conflict.
func (p RetryPolicy) run(ctx context.Context, op func() error) error {
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, models.ErrConflict) {
			logger.Log.Warnw("atomic unit conflicted, retrying", "attempt", attempt, "error", err)
			return err
		}
		return backoff.Permanent(err)
	}, p.backOff(ctx))

	if errors.Is(err, models.ErrConflict) {
		return fmt.Errorf("%w: gave up after %d attempts: %w", models.ErrTransferFailed, attempt, err)
	}
	return err
}
