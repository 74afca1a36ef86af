package circuitbreaker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

const openTimeout = 20 * time.Millisecond

func newTestBreaker(threshold uint32) *Breaker {
	return New("test", Config{FailureThreshold: threshold, OpenTimeout: openTimeout})
}

func waitHalfOpen(t *testing.T, b *Breaker) {
	t.Helper()
	require.Eventually(t, func() bool { return b.State() == StateHalfOpen }, time.Second, 2*time.Millisecond)
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := New("test", Config{FailureThreshold: 2, OpenTimeout: time.Hour})

	assert.ErrorIs(t, b.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b := newTestBreaker(2)

	_ = b.Execute(func() error { return errBoom })
	require.NoError(t, b.Execute(func() error { return nil }))
	_ = b.Execute(func() error { return errBoom })
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := newTestBreaker(1)

	_ = b.Execute(func() error { return errBoom })
	require.Equal(t, StateOpen, b.State())

	waitHalfOpen(t, b)

	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	b := newTestBreaker(1)

	_ = b.Execute(func() error { return errBoom })
	waitHalfOpen(t, b)

	assert.ErrorIs(t, b.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerHalfOpenAllowsSingleProbe(t *testing.T) {
	b := newTestBreaker(1)

	_ = b.Execute(func() error { return errBoom })
	waitHalfOpen(t, b)

	release := make(chan struct{})
	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = b.Execute(func() error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	called := false
	err := b.Execute(func() error { called = true; return nil })
	close(release)
	wg.Wait()

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerPanicCountsAsFailure(t *testing.T) {
	b := New("test", Config{FailureThreshold: 1, OpenTimeout: time.Hour})

	assert.Panics(t, func() {
		_ = b.Execute(func() error { panic("boom") })
	})
	assert.Equal(t, StateOpen, b.State())
}

func TestRegistryReturnsSameBreakerPerKey(t *testing.T) {
	r := NewRegistry(Config{FailureThreshold: 1})
	a := r.Get("https://a.example/hook")
	assert.Same(t, a, r.Get("https://a.example/hook"))
	assert.NotSame(t, a, r.Get("https://b.example/hook"))
}
