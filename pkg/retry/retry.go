// Package retry provides bounded exponential backoff for bringing up
// storage backends at startup. Feedback delivery never goes through it: a
// submission is exactly one HTTP attempt.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type Config struct {
	Name           string
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
	Logger         *zap.Logger
}

func DefaultConfig(name string) Config {
	return Config{
		Name:           name,
		MaxAttempts:    5,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         zap.NewNop(),
	}
}

// Permanent marks err as not worth retrying; Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

func (c *Config) normalize() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 200 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 5 * time.Second
	}
	if c.Multiplier < 1 {
		c.Multiplier = 2.0
	}
	if c.JitterFraction < 0 {
		c.JitterFraction = 0
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

func (c Config) policy(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.InitialDelay
	exp.MaxInterval = c.MaxDelay
	exp.Multiplier = c.Multiplier
	exp.RandomizationFactor = c.JitterFraction
	exp.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.MaxAttempts-1)), ctx)
}

func Do(ctx context.Context, cfg Config, operation func(ctx context.Context) error) error {
	cfg.normalize()

	if err := ctx.Err(); err != nil {
		return err
	}

	attempt := 0
	op := func() error {
		attempt++
		return operation(ctx)
	}
	notify := func(err error, delay time.Duration) {
		cfg.Logger.Warn("Attempt failed, retrying",
			zap.String("name", cfg.Name),
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", cfg.MaxAttempts),
			zap.Duration("delay", delay),
		)
	}

	err := backoff.RetryNotify(op, cfg.policy(ctx), notify)
	if err == nil && attempt > 1 {
		cfg.Logger.Info("Connected after retry",
			zap.String("name", cfg.Name),
			zap.Int("attempt", attempt),
		)
	}
	return err
}

func DoWithResult[T any](ctx context.Context, cfg Config, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func(ctx context.Context) error {
		var err error
		result, err = operation(ctx)
		return err
	})
	return result, err
}
