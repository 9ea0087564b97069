package organizer

import (
	"context"

	"golang.org/x/time/rate"

	"acordex/internal/domain"
	"acordex/internal/port"
)

// RateLimited caps the rate of calls reaching the wrapped organizer. Waiting
// for a token counts against the caller's deadline.
type RateLimited struct {
	next    port.Organizer
	limiter *rate.Limiter
}

// NewRateLimited allows perSecond calls per second with a burst of one.
func NewRateLimited(next port.Organizer, perSecond float64) *RateLimited {
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

func (r *RateLimited) Organize(ctx context.Context, input port.OrganizeInput) (*domain.OrganizedResult, error) {
	if input.IsEmpty() {
		return r.next.Organize(ctx, input)
	}
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return r.next.Organize(ctx, input)
}
