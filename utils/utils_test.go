package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(4)
	require.NoError(t, err)

	// 4 random bytes hex-encode to 8 characters
	assert.Len(t, code, 8)
	assert.Regexp(t, "^[0-9A-F]+$", code)
}

func TestGenerateCode_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateCode(8)
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestCircuitBreaker_StaysClosedOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker("test")

	for i := 0; i < 50; i++ {
		err := cb.Execute(context.Background(), func() error { return nil })
		require.NoError(t, err)
	}

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_TripsAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("remote store down")

	// Default trip point: at least 10 requests with a 60% failure ratio.
	for i := 0; i < 10; i++ {
		err := cb.Execute(context.Background(), func() error { return boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(context.Background(), func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_StaleResultIgnoredAfterStateChange(t *testing.T) {
	cb := NewCircuitBreaker("test")

	// Issue a call under the current generation, then flip the breaker
	// state before the result lands.
	gen, err := cb.beforeRequest()
	require.NoError(t, err)

	cb.mutex.Lock()
	cb.setState(StateOpen, time.Now())
	cb.mutex.Unlock()

	cb.afterRequest(gen, false)

	cb.mutex.Lock()
	counts := cb.counts
	cb.mutex.Unlock()

	// The late failure belongs to the old generation and must not count
	// against the fresh window.
	assert.Zero(t, counts.Requests)
	assert.Zero(t, counts.TotalFailures)
}

func TestCircuitBreaker_GenerationAdvancesOnTrip(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("remote store down")

	_, before := func() (State, uint64) {
		cb.mutex.Lock()
		defer cb.mutex.Unlock()
		return cb.currentState(time.Now())
	}()

	for i := 0; i < 10; i++ {
		cb.Execute(context.Background(), func() error { return boom })
	}
	require.Equal(t, StateOpen, cb.State())

	cb.mutex.Lock()
	after := cb.generation
	cb.mutex.Unlock()

	assert.Greater(t, after, before)
}

func TestCircuitBreaker_MixedCallsBelowRatioStayClosed(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("remote store down")

	for i := 0; i < 20; i++ {
		var fn func() error
		if i%2 == 0 {
			fn = func() error { return nil }
		} else {
			fn = func() error { return boom }
		}
		cb.Execute(context.Background(), fn)
	}

	// 50% failures is below the 60% trip ratio.
	assert.Equal(t, StateClosed, cb.State())
}
