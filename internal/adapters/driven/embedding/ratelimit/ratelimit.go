// Package ratelimit wraps an EmbeddingService with a token bucket so that
// large Build batches stay under hosted provider quotas.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
	// Backoff is how long to pause after the provider reports a rate limit.
	Backoff time.Duration
}

// DefaultConfig is conservative enough for free-tier OpenAI keys.
var DefaultConfig = Config{RequestsPerSecond: 3, BurstSize: 5, Backoff: 20 * time.Second}

// EmbeddingService delegates to an inner service, waiting for a token before
// each call. A rate-limit error from the inner service pauses all callers
// for Backoff and the call is retried once.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
	backoff time.Duration

	mu      sync.Mutex
	retryAt time.Time
	now     func() time.Time
}

// New wraps inner with the given limits.
func New(inner driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultConfig.RequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = DefaultConfig.BurstSize
	}
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}
	return &EmbeddingService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		backoff: cfg.Backoff,
		now:     time.Now,
	}
}

// wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by a previous rate-limit error.
func (s *EmbeddingService) wait(ctx context.Context) error {
	s.mu.Lock()
	retryAt := s.retryAt
	s.mu.Unlock()

	if d := retryAt.Sub(s.now()); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return s.limiter.Wait(ctx)
}

func (s *EmbeddingService) recordRateLimit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retryAt = s.now().Add(s.backoff)
}

func call[T any](ctx context.Context, s *EmbeddingService, fn func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		if err := s.wait(ctx); err != nil {
			return zero, err
		}
		v, err := fn()
		if err == nil || !errors.Is(err, domain.ErrRateLimited) || attempt > 0 {
			return v, err
		}
		logger.Warn("embedding provider rate limited, backing off %s", s.backoff)
		s.recordRateLimit()
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	return call(ctx, s, func() ([]float32, error) { return s.inner.Embed(ctx, text) })
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return call(ctx, s, func() ([][]float32, error) { return s.inner.EmbedBatch(ctx, texts) })
}

// Dimensions returns the inner service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the inner service's model.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping bypasses the limiter.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close closes the inner service.
func (s *EmbeddingService) Close() error { return s.inner.Close() }
