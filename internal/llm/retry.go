package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const maxBackoff = 10 * time.Second

// Retrying re-issues failed calls with exponential backoff. Context cancellation and
// ErrEmptyResponse are not retried.
type Retrying struct {
	Model       Model
	MaxAttempts int
	BaseDelay   time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, backoff(r.BaseDelay, attempt-1)); err != nil {
				return "", err
			}
		}
		text, err := r.Model.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			return "", err
		}
	}
	return "", fmt.Errorf("%d attempts exhausted for %s: %w", attempts, r.Model.Provider(), lastErr)
}

func (r *Retrying) Provider() string { return r.Model.Provider() }

func (r *Retrying) Name() string { return r.Model.Name() }

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrEmptyResponse) {
		return false
	}
	return true
}

// backoff returns base * 2^(retry-1), capped at maxBackoff.
func backoff(base time.Duration, retry int) time.Duration {
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	delay := base
	for i := 1; i < retry; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
