package llm

import (
	"context"
	"errors"
	"sync"
	"time"
)

// BreakerState is the circuit breaker's current disposition.
type BreakerState int

const (
	// BreakerClosed passes requests through normally.
	BreakerClosed BreakerState = iota
	// BreakerOpen short-circuits requests until the cooldown elapses.
	BreakerOpen
	// BreakerHalfOpen lets one probe request through; its outcome decides
	// whether the breaker closes or re-opens.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// ErrBreakerOpen is returned without touching the provider while the
// breaker is open.
type ErrBreakerOpen struct {
	Until time.Time
}

func (e *ErrBreakerOpen) Error() string {
	return "circuit breaker open: provider short-circuited until " + e.Until.Format(time.RFC3339)
}

// BreakerProvider is a decorator that short-circuits a provider after
// consecutive auth or availability failures, instead of hammering a dead
// or mis-keyed endpoint once per pipeline attempt.
type BreakerProvider struct {
	inner Provider
	cfg   BreakerConfig

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
	now      func() time.Time // test seam
}

// WithBreaker wraps a Provider with a circuit breaker.
func WithBreaker(p Provider, cfg BreakerConfig) *BreakerProvider {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &BreakerProvider{inner: p, cfg: cfg, now: time.Now}
}

func (b *BreakerProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := b.allow(); err != nil {
		return nil, err
	}

	resp, err := b.inner.Generate(ctx, req)
	b.record(err)
	return resp, err
}

func (b *BreakerProvider) ModelID() string {
	return b.inner.ModelID()
}

// State returns the breaker's current state.
func (b *BreakerProvider) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset explicitly closes the breaker, e.g. after the operator rotates a key.
func (b *BreakerProvider) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.failures = 0
}

func (b *BreakerProvider) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen {
		until := b.openedAt.Add(b.cfg.Cooldown)
		if b.now().Before(until) {
			return &ErrBreakerOpen{Until: until}
		}
		b.state = BreakerHalfOpen
	}
	return nil
}

func (b *BreakerProvider) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil || !tripsBreaker(err) {
		b.state = BreakerClosed
		b.failures = 0
		return
	}

	if b.state == BreakerHalfOpen {
		// The probe failed; re-open immediately.
		b.state = BreakerOpen
		b.openedAt = b.now()
		return
	}

	b.failures++
	if b.failures >= b.cfg.FailureThreshold {
		b.state = BreakerOpen
		b.openedAt = b.now()
	}
}

// tripsBreaker reports whether an error counts toward opening the breaker.
// Only auth rejections and hard availability failures count: an invalid
// response or rate limit says nothing about the key or the endpoint.
func tripsBreaker(err error) bool {
	var auth *ErrAuthFailed
	if errors.As(err, &auth) {
		return true
	}
	var unavail *ErrProviderUnavailable
	return errors.As(err, &unavail)
}
