package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestDo_RetriesRetryableUntilSuccess(t *testing.T) {
	clk := testclock.NewDilatedWallClock(time.Millisecond)
	calls := 0

	err := Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errTransient)
		}
		return nil
	}, WithClock(clk), WithMaxAttempts(5), WithInitialDelay(time.Millisecond))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ReturnsUnwrappedErrorAfterLastAttempt(t *testing.T) {
	clk := testclock.NewDilatedWallClock(time.Millisecond)
	calls := 0
	var delays []time.Duration

	err := Do(context.Background(), func(context.Context) error {
		calls++
		return Retryable(errTransient)
	},
		WithClock(clk),
		WithMaxAttempts(3),
		WithInitialDelay(10*time.Millisecond),
		WithJitter(0),
		WithOnRetry(func(_ int, _ error, d time.Duration) { delays = append(delays, d) }),
	)

	assert.Equal(t, errTransient, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, delays)
}

func TestDo_PermanentAndUnmatchedStopImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(errTransient)
	})
	assert.Equal(t, errTransient, err)
	assert.Equal(t, 1, calls)

	calls = 0
	err = Do(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	})
	assert.Equal(t, errTransient, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetryIf(t *testing.T) {
	clk := testclock.NewDilatedWallClock(time.Millisecond)
	calls := 0

	err := DatabaseRetrier(func(err error) bool { return errors.Is(err, errTransient) }, WithClock(clk)).
		Do(context.Background(), func(context.Context) error {
			calls++
			return errTransient
		})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func(context.Context) error {
		t.Fatal("operation must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicyDelay_Capped(t *testing.T) {
	r := New(WithInitialDelay(time.Second), WithMaxDelay(3*time.Second), WithJitter(0))
	assert.Equal(t, time.Second, r.policy.delay(1))
	assert.Equal(t, 2*time.Second, r.policy.delay(2))
	assert.Equal(t, 3*time.Second, r.policy.delay(5))
}

func TestDoWithData(t *testing.T) {
	v, err := DoWithData(context.Background(), func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
