package port

import (
	"context"
	"strings"

	"acordex/internal/domain"
)

// OrganizeInput carries the loose content the organizer should structure.
type OrganizeInput struct {
	Mode     domain.OrganizeMode
	Fields   domain.RawFieldMap
	PageText string
}

// IsEmpty reports whether there is nothing worth sending to a model.
func (in OrganizeInput) IsEmpty() bool {
	return in.Fields.NonEmpty().Len() == 0 && strings.TrimSpace(in.PageText) == ""
}

// Organizer turns unstructured certificate content into an OrganizedResult.
// Implementations make a single attempt and honor ctx cancellation.
type Organizer interface {
	Organize(ctx context.Context, input OrganizeInput) (*domain.OrganizedResult, error)
}
