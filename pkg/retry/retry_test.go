package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	return cfg
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoReturnsLastErrorAfterMaxAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, attempts)
}

func TestPermanentStopsImmediately(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		return Permanent(errTransient)
	})

	assert.ErrorIs(t, err, errTransient)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, attempts)
	assert.Nil(t, Permanent(nil))
}

func TestRetryableClassifier(t *testing.T) {
	other := errors.New("other")
	cfg := fastConfig()
	cfg.Retryable = func(err error) bool { return errors.Is(err, errTransient) }

	attempts := 0
	err := Do(context.Background(), cfg, func() error {
		attempts++
		return other
	})

	assert.ErrorIs(t, err, other)
	assert.Equal(t, 1, attempts)
}

func TestDoHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(), func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

type throttled struct{ after time.Duration }

func (e throttled) Error() string             { return "throttled" }
func (e throttled) RetryAfter() time.Duration { return e.after }

func TestWaitHonoursHintUpToMaxDelay(t *testing.T) {
	cfg := fastConfig().withDefaults()
	cfg.JitterFraction = 0

	assert.Equal(t, time.Millisecond, cfg.wait(time.Millisecond, errTransient))
	assert.Equal(t, 2*time.Millisecond, cfg.wait(time.Millisecond, throttled{after: time.Hour}))

	cfg.MaxDelay = time.Second
	assert.Equal(t, 500*time.Millisecond, cfg.wait(time.Millisecond, throttled{after: 500 * time.Millisecond}))
}

func TestZeroConfigUsesDefaults(t *testing.T) {
	cfg := Config{InitialDelay: time.Millisecond}.withDefaults()

	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2.0, cfg.Multiplier)
	assert.NotNil(t, cfg.Logger)
}
