package organizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"acordex/internal/domain"
	"acordex/internal/port"
)

// Breaker stops calling a provider that answered 429 until its Retry-After
// window has passed. Calls made while open fail fast with a RateLimitError.
type Breaker struct {
	next   port.Organizer
	name   string
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

// NewBreaker wraps next, naming it in logs and errors.
func NewBreaker(next port.Organizer, name string, logger *zap.Logger) *Breaker {
	return &Breaker{next: next, name: name, logger: logger, now: time.Now}
}

func (b *Breaker) isOpen(now time.Time) (time.Time, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.resetAt, !b.resetAt.IsZero() && now.Before(b.resetAt)
}

func (b *Breaker) open(resetAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetAt = resetAt
}

func (b *Breaker) Organize(ctx context.Context, input port.OrganizeInput) (*domain.OrganizedResult, error) {
	now := b.now()
	if resetAt, open := b.isOpen(now); open {
		b.logger.Debug("organizer circuit open", zap.String("provider", b.name), zap.Time("reset_at", resetAt))
		retryAfter := resetAt.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError(b.name, fmt.Errorf("circuit open until %s", resetAt.Format(time.RFC3339)), int(retryAfter.Seconds()))
	}

	res, err := b.next.Organize(ctx, input)
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		resetAt := now.Add(rlErr.RetryAfter)
		b.open(resetAt)
		b.logger.Warn("organizer rate limited, opening circuit",
			zap.String("provider", b.name), zap.Duration("retry_after", rlErr.RetryAfter))
	}
	return res, err
}
