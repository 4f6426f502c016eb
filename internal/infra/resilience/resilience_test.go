package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(retries int) resilience.Config {
	return resilience.Config{MaxRetries: retries, InitialBackoff: 5 * time.Millisecond}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), fastConfig(3), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RetriesOnFailure(t *testing.T) {
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), fastConfig(2), func() error {
		calls++
		return errors.New("persistent error")
	})

	assert.EqualError(t, err, "persistent error")
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_PermanentStopsImmediately(t *testing.T) {
	cause := errors.New("duplicate key")
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), fastConfig(5), func() error {
		calls++
		return resilience.Permanent(cause)
	})

	assert.Equal(t, 1, calls)
	assert.Same(t, cause, err)
	assert.False(t, resilience.IsPermanent(err))
}

func TestRetryWithBackoff_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := resilience.RetryWithBackoff(ctx, resilience.Config{MaxRetries: 5, InitialBackoff: time.Second}, func() error {
		return errors.New("error")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, resilience.Permanent(nil))
}

func TestCircuitBreaker_RejectionsDoNotTrip(t *testing.T) {
	rejected := errors.New("409 conflict")
	cb := resilience.NewCircuitBreaker("test", func(err error) bool { return errors.Is(err, rejected) })

	for i := 0; i < 10; i++ {
		_, err := cb.Execute(func() (any, error) { return nil, rejected })
		require.ErrorIs(t, err, rejected)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_FailuresTrip(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test", nil)

	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (any, error) { return nil, errors.New("connection refused") })
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(func() (any, error) { return nil, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBulkhead_AcquireRelease(t *testing.T) {
	bh := resilience.NewBulkhead(2)

	require.NoError(t, bh.Acquire(context.Background()))
	require.NoError(t, bh.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, bh.Acquire(ctx), "third acquire should block until timeout")

	bh.Release()
	assert.NoError(t, bh.Acquire(context.Background()))
}
