package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
	// Retryable classifies errors that are not marked Permanent. nil retries
	// everything.
	Retryable func(err error) bool
	Logger    *zap.Logger
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so Do returns it immediately without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// AfterHint is implemented by errors that know how long the upstream asked
// callers to wait, such as a 429 carrying Retry-After.
type AfterHint interface {
	RetryAfter() time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   100 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         zap.NewNop(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = d.InitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = d.MaxDelay
	}
	if c.Multiplier < 1 {
		c.Multiplier = d.Multiplier
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return c
}

// Do runs operation until it succeeds, returns a non-retryable error, or
// MaxAttempts is reached. The last error is returned unwrapped.
func Do(ctx context.Context, cfg Config, operation func() error) error {
	cfg = cfg.withDefaults()
	delay := cfg.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := operation()
		if err == nil {
			if attempt > 1 {
				cfg.Logger.Info("Operation succeeded after retry", zap.Int("attempt", attempt))
			}
			return nil
		}
		lastErr = err

		if !cfg.shouldRetry(err) {
			cfg.Logger.Debug("Error not retryable", zap.Error(err), zap.Int("attempt", attempt))
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		wait := cfg.wait(delay, err)
		cfg.Logger.Warn("Operation failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", cfg.MaxAttempts),
			zap.Duration("delay", wait),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return lastErr
}

func (c Config) shouldRetry(err error) bool {
	if IsPermanent(err) {
		return false
	}
	if c.Retryable == nil {
		return true
	}
	return c.Retryable(err)
}

// wait is the jittered backoff delay, raised to the upstream hint when one
// is present and capped at MaxDelay.
func (c Config) wait(delay time.Duration, err error) time.Duration {
	d := addJitter(delay, c.JitterFraction)

	var hint AfterHint
	if errors.As(err, &hint) && hint.RetryAfter() > d {
		d = hint.RetryAfter()
	}
	if d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

func addJitter(duration time.Duration, jitterFraction float64) time.Duration {
	if jitterFraction <= 0 {
		return duration
	}

	jitter := time.Duration(rand.Float64() * float64(duration) * jitterFraction)
	if rand.Intn(2) == 0 {
		return duration - jitter
	}
	return duration + jitter
}
