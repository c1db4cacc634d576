package backend

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrRateLimitExceeded is returned by HandleRateLimit once the backend has
// rate-limited more consecutive calls than the configured retry ceiling.
var ErrRateLimitExceeded = errors.New("backend rate limit exceeded after maximum retries")

// RateLimiterConfig controls pacing and backoff behavior.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
}

// DefaultRateLimiterConfig matches the backend's published client guidance.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 10,
		MaxRetries:        5,
		InitialDelay:      time.Second,
		MaxDelay:          30 * time.Second,
	}
}

// RateLimiter paces outbound backend calls to a target rate and applies
// jittered exponential backoff when the backend answers with a rate-limit
// error. One instance is shared by every caller in the process, so a fanned-out
// federated query draws on the same pacing state and the same retry budget.
type RateLimiter struct {
	minInterval  time.Duration
	initialDelay time.Duration
	maxDelay     time.Duration
	maxRetries   int

	mu           sync.Mutex
	lastRequest  time.Time
	retries      int
	backoffUntil time.Time
}

// NewRateLimiter creates a rate limiter from cfg. Zero or negative fields fall
// back to the defaults.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	def := DefaultRateLimiterConfig()
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	return &RateLimiter{
		minInterval:  time.Duration(float64(time.Second) / cfg.RequestsPerSecond),
		initialDelay: cfg.InitialDelay,
		maxDelay:     cfg.MaxDelay,
		maxRetries:   cfg.MaxRetries,
	}
}

// Acquire blocks until it is safe to issue one request: any active backoff
// window has passed and at least the minimum inter-request interval has
// elapsed since the previous acquire. The mutex is held across the waits so
// concurrent acquirers serialize and never pace themselves off stale state.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if wait := time.Until(r.backoffUntil); wait > 0 {
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}

	if !r.lastRequest.IsZero() {
		if wait := r.minInterval - time.Since(r.lastRequest); wait > 0 {
			if err := sleep(ctx, wait); err != nil {
				return err
			}
		}
	}

	r.lastRequest = time.Now()
	return nil
}

// HandleRateLimit is called after the backend answered with a rate-limit
// error. It grows the backoff delay exponentially with up to 10% random
// jitter, records the window Acquire must respect, and sleeps the delay. Once
// the number of consecutive rate-limited calls exceeds the retry ceiling it
// resets the counter and returns ErrRateLimitExceeded instead of pausing
// again. The counter only clears on Reset, so retries accumulate across the
// sub-queries of a federated call.
func (r *RateLimiter) HandleRateLimit(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.retries++
	if r.retries > r.maxRetries {
		r.retries = 0
		return ErrRateLimitExceeded
	}

	delay := r.initialDelay * time.Duration(1<<(r.retries-1))
	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	// Jitter spreads simultaneous retries so a fan-out does not hammer the
	// backend in lockstep.
	delay += time.Duration(rand.Float64() * 0.1 * float64(delay))

	r.backoffUntil = time.Now().Add(delay)
	return sleep(ctx, delay)
}

// Reset clears the retry counter after a successful call.
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	r.retries = 0
	r.mu.Unlock()
}

// Retries reports the current consecutive rate-limit count.
func (r *RateLimiter) Retries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retries
}

// MinInterval reports the pacing interval between requests.
func (r *RateLimiter) MinInterval() time.Duration {
	return r.minInterval
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
