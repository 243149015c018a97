package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})
	fail := func(ctx context.Context) error { return eris.New("boom") }

	for i := 0; i < 3; i++ {
		require.Error(t, b.Execute(context.Background(), fail))
	}
	assert.Equal(t, BreakerOpen, b.State())

	err := b.Execute(context.Background(), fail)
	assert.True(t, eris.Is(err, ErrBreakerOpen))
}

func TestBreakerHalfOpenProbeClosesOnSuccess(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})
	now := time.Now()
	b.now = func() time.Time { return now }

	require.Error(t, b.Execute(context.Background(), func(ctx context.Context) error {
		return eris.New("boom")
	}))
	assert.Equal(t, BreakerOpen, b.State())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, BreakerHalfOpen, b.State())

	require.NoError(t, b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	}))
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreakerHalfOpenProbeReopensOnFailure(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 2, ResetTimeout: time.Minute})
	now := time.Now()
	b.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		b.Execute(context.Background(), func(ctx context.Context) error { return eris.New("boom") })
	}
	now = now.Add(2 * time.Minute)

	// single failed probe reopens immediately, no threshold needed
	b.Execute(context.Background(), func(ctx context.Context) error { return eris.New("still down") })
	assert.Equal(t, BreakerOpen, b.State())

	err := b.Execute(context.Background(), func(ctx context.Context) error { return nil })
	assert.True(t, eris.Is(err, ErrBreakerOpen))
}

func TestBreakerShouldTripFilter(t *testing.T) {
	b := NewBreaker(BreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     time.Minute,
		ShouldTrip:       IsTransient,
	})

	// permanent errors pass through without tripping
	b.Execute(context.Background(), func(ctx context.Context) error { return eris.New("not found") })
	assert.Equal(t, BreakerClosed, b.State())

	b.Execute(context.Background(), func(ctx context.Context) error {
		return NewTransientError(eris.New("503"), 503)
	})
	assert.Equal(t, BreakerOpen, b.State())
}

func TestExecuteValPreservesValue(t *testing.T) {
	b := NewBreaker(BreakerConfig{})
	v, err := ExecuteVal(context.Background(), b, func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestBreakerStateChangeCallback(t *testing.T) {
	var transitions []string
	b := NewBreaker(BreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     time.Minute,
		OnStateChange: func(from, to BreakerState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	b.Execute(context.Background(), func(ctx context.Context) error { return eris.New("boom") })
	b.Reset()
	assert.Equal(t, []string{"closed->open", "open->closed"}, transitions)
}
