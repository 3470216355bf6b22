// Package retry provides a bounded retry policy with exponential backoff.
package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the wait after the first failure. It doubles per attempt.
	BaseDelay time.Duration

	// MaxDelay caps a single wait.
	MaxDelay time.Duration

	// Jitter enables a random -25% to +25% spread on each wait.
	Jitter bool

	// sleep waits for d or until ctx is done. Tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

// Result is the outcome of Do.
type Result struct {
	// Attempts is how many times the operation ran.
	Attempts int

	// Err is the last error, or nil if an attempt succeeded.
	Err error
}

// OK reports whether an attempt succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// RemovalPolicy is used when deleting stale index storage, where the OS may
// still hold file handles for a short while.
func RemovalPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		Jitter:      true,
	}
}

// Do runs fn until it succeeds, the attempts are exhausted or ctx is done.
// fn receives the 1-based attempt number.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) Result {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var res Result
	for attempt := 1; attempt <= attempts; attempt++ {
		res.Attempts = attempt
		res.Err = fn(attempt)
		if res.Err == nil || attempt == attempts {
			return res
		}
		if err := sleep(ctx, p.Backoff(attempt)); err != nil {
			return res
		}
	}
	return res
}

// Backoff returns the wait after the given failed attempt.
// Attempt 1 waits BaseDelay, attempt 2 waits twice that, and so on up to MaxDelay.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt <= 0 || p.BaseDelay <= 0 {
		return 0
	}
	// Cap the shift to avoid overflow.
	if attempt > 30 {
		attempt = 30
	}
	d := p.BaseDelay * time.Duration(1<<uint(attempt-1))
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter && d > 0 {
		d += time.Duration(rand.Int64N(int64(d)/2+1)) - d/4
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
