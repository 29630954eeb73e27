package backendsvc

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bobur6/professor-ai-helper/core"
)

// RetryConfig controls how idempotent requests are retried after network errors.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// retry runs op until it succeeds, fails with anything but a network error, or runs out of attempts.
func retry(ctx context.Context, cfg RetryConfig, op func() error) error {
	if cfg.MaxRetries <= 0 {
		return op()
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = cfg.InitialInterval
	exp.MaxInterval = cfg.MaxInterval
	exp.MaxElapsedTime = 0 // bounded by MaxRetries

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(cfg.MaxRetries)), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !core.IsNetwork(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}
