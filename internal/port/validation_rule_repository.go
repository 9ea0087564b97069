package port

import (
	"context"

	"acordex/internal/domain"
)

// ValidationRuleRepository persists validation rules. Every batch method runs
// in a single transaction: it either applies to all rules or to none.
type ValidationRuleRepository interface {
	// CreateBatch inserts rules and fills in their IDs and timestamps.
	CreateBatch(ctx context.Context, rules []*domain.ValidationRule) error
	GetByID(ctx context.Context, id int64) (*domain.ValidationRule, error)
	// List returns every rule, newest first.
	List(ctx context.Context) ([]domain.ValidationRule, error)
	UpdateBatch(ctx context.Context, rules []*domain.ValidationRule) error
	// DeleteBatch removes rules and returns them in request order.
	DeleteBatch(ctx context.Context, ids []int64) ([]domain.ValidationRule, error)
	// FindActiveMatch returns the active rule holding exactly this pair.
	FindActiveMatch(ctx context.Context, certificateType, productName string) (*domain.ValidationRule, error)
	Ping(ctx context.Context) error
}
