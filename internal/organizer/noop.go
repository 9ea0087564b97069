package organizer

import (
	"context"

	"acordex/internal/domain"
	"acordex/internal/port"
)

// Noop is an Organizer that never calls a model. It returns an empty result,
// which leaves unformatted_data as placeholders.
type Noop struct{}

func (Noop) Organize(ctx context.Context, _ port.OrganizeInput) (*domain.OrganizedResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return EmptyResult(), nil
}

// EmptyResult is the organizer result for input with nothing to organize.
func EmptyResult() *domain.OrganizedResult {
	return &domain.OrganizedResult{
		Insurers:         []domain.Insurer{},
		AdditionalFields: map[string]string{},
	}
}
