package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"acordex/internal/domain"
	"acordex/internal/metrics"
	"acordex/internal/port"
)

// RuleInput is the DTO for creating a validation rule. A nil IsActive means
// active.
type RuleInput struct {
	CertificateType string
	ProductName     string
	IsActive        *bool
}

// UpdateRuleInput is the DTO for replacing a validation rule's fields.
type UpdateRuleInput struct {
	ID              int64
	CertificateType string
	ProductName     string
	IsActive        *bool
}

// RuleService defines the validation rule management and matching contract.
type RuleService interface {
	Create(ctx context.Context, input RuleInput) (*domain.ValidationRule, error)
	// CreateBatch stores every rule or none of them.
	CreateBatch(ctx context.Context, inputs []RuleInput) ([]domain.ValidationRule, error)
	Get(ctx context.Context, id int64) (*domain.ValidationRule, error)
	List(ctx context.Context) ([]domain.ValidationRule, error)
	Update(ctx context.Context, input UpdateRuleInput) (*domain.ValidationRule, error)
	UpdateBatch(ctx context.Context, inputs []UpdateRuleInput) ([]domain.ValidationRule, error)
	Delete(ctx context.Context, id int64) (*domain.ValidationRule, error)
	DeleteBatch(ctx context.Context, ids []int64) ([]domain.ValidationRule, error)
	Match(ctx context.Context, input domain.MatchInput) (*domain.MatchResult, error)
}

type ruleService struct {
	repo   port.ValidationRuleRepository
	logger *zap.Logger
}

// NewRuleService creates a new RuleService implementation.
func NewRuleService(repo port.ValidationRuleRepository, logger *zap.Logger) RuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ruleService{repo: repo, logger: logger}
}

func (s *ruleService) Create(ctx context.Context, input RuleInput) (*domain.ValidationRule, error) {
	created, err := s.CreateBatch(ctx, []RuleInput{input})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

func (s *ruleService) CreateBatch(ctx context.Context, inputs []RuleInput) ([]domain.ValidationRule, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no rules in request", domain.ErrInvalidInput)
	}

	rules := make([]*domain.ValidationRule, len(inputs))
	for i, in := range inputs {
		rule, err := newRule(i, in.CertificateType, in.ProductName, in.IsActive)
		if err != nil {
			return nil, err
		}
		rules[i] = rule
	}
	if err := checkBatchPairs(rules); err != nil {
		return nil, err
	}

	if err := s.repo.CreateBatch(ctx, rules); err != nil {
		return nil, err
	}

	s.logger.Info("validation rules created", zap.Int("count", len(rules)))
	return derefRules(rules), nil
}

func (s *ruleService) Get(ctx context.Context, id int64) (*domain.ValidationRule, error) {
	if id <= 0 {
		return nil, &domain.InvalidRuleError{Index: 0, Reason: fmt.Sprintf("id must be positive, got %d", id)}
	}
	return s.repo.GetByID(ctx, id)
}

func (s *ruleService) List(ctx context.Context) ([]domain.ValidationRule, error) {
	return s.repo.List(ctx)
}

func (s *ruleService) Update(ctx context.Context, input UpdateRuleInput) (*domain.ValidationRule, error) {
	updated, err := s.UpdateBatch(ctx, []UpdateRuleInput{input})
	if err != nil {
		return nil, err
	}
	return &updated[0], nil
}

func (s *ruleService) UpdateBatch(ctx context.Context, inputs []UpdateRuleInput) ([]domain.ValidationRule, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no rules in request", domain.ErrInvalidInput)
	}

	ids := make([]int64, len(inputs))
	rules := make([]*domain.ValidationRule, len(inputs))
	for i, in := range inputs {
		ids[i] = in.ID
		rule, err := newRule(i, in.CertificateType, in.ProductName, in.IsActive)
		if err != nil {
			return nil, err
		}
		rule.ID = in.ID
		rules[i] = rule
	}
	if err := checkIDs(ids); err != nil {
		return nil, err
	}
	if err := checkBatchPairs(rules); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBatch(ctx, rules); err != nil {
		return nil, err
	}

	s.logger.Info("validation rules updated", zap.Int("count", len(rules)))
	return derefRules(rules), nil
}

func (s *ruleService) Delete(ctx context.Context, id int64) (*domain.ValidationRule, error) {
	deleted, err := s.DeleteBatch(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return &deleted[0], nil
}

func (s *ruleService) DeleteBatch(ctx context.Context, ids []int64) ([]domain.ValidationRule, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no rule ids in request", domain.ErrInvalidInput)
	}
	if err := checkIDs(ids); err != nil {
		return nil, err
	}

	deleted, err := s.repo.DeleteBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	s.logger.Info("validation rules deleted", zap.Int64s("ids", ids))
	return deleted, nil
}

func (s *ruleService) Match(ctx context.Context, input domain.MatchInput) (*domain.MatchResult, error) {
	res, err := s.match(ctx, input)
	if err != nil {
		return nil, err
	}
	metrics.MatchOutcomes.WithLabelValues(string(res.Outcome)).Inc()
	return res, nil
}

func (s *ruleService) match(ctx context.Context, input domain.MatchInput) (*domain.MatchResult, error) {
	res := &domain.MatchResult{
		DocumentType:    input.DocumentType,
		CertificateType: input.CertificateType,
		ProductName:     input.ProductName,
	}

	if !strings.EqualFold(strings.TrimSpace(input.DocumentType), domain.CertificateDocumentType) {
		res.Outcome = domain.MatchOutcomeNotApplicable
		res.Message = fmt.Sprintf("validation rules do not apply to document type %q", input.DocumentType)
		return res, nil
	}

	rule, err := s.repo.FindActiveMatch(ctx, input.CertificateType, input.ProductName)
	if err != nil {
		return nil, fmt.Errorf("matching rules: %w", err)
	}
	if rule == nil {
		res.Outcome = domain.MatchOutcomeRejected
		res.Message = fmt.Sprintf("no active rule for certificate type %q and product name %q",
			input.CertificateType, input.ProductName)
		return res, nil
	}

	id := rule.ID
	res.Outcome = domain.MatchOutcomeApproved
	res.MatchedRuleID = &id
	res.Message = fmt.Sprintf("approved by rule %d", id)
	return res, nil
}

// newRule trims and checks one rule from a request batch.
func newRule(index int, certificateType, productName string, isActive *bool) (*domain.ValidationRule, error) {
	rule := &domain.ValidationRule{
		CertificateType: strings.TrimSpace(certificateType),
		ProductName:     strings.TrimSpace(productName),
		IsActive:        true,
	}
	if isActive != nil {
		rule.IsActive = *isActive
	}
	if rule.CertificateType == "" {
		return nil, &domain.InvalidRuleError{Index: index, Reason: "certificate_type is required"}
	}
	if rule.ProductName == "" {
		return nil, &domain.InvalidRuleError{Index: index, Reason: "product_name is required"}
	}
	return rule, nil
}

// checkBatchPairs reports every pair of batch entries that hold the same
// (certificate_type, product_name) ignoring case.
func checkBatchPairs(rules []*domain.ValidationRule) error {
	var conflicts []domain.IndexPair
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			if samePair(rules[i], rules[j]) {
				conflicts = append(conflicts, domain.IndexPair{First: i, Second: j})
			}
		}
	}
	if len(conflicts) > 0 {
		return &domain.DuplicateRulesInRequestError{Conflicts: conflicts}
	}
	return nil
}

func samePair(a, b *domain.ValidationRule) bool {
	return strings.EqualFold(a.CertificateType, b.CertificateType) &&
		strings.EqualFold(a.ProductName, b.ProductName)
}

// checkIDs rejects non-positive and repeated ids.
func checkIDs(ids []int64) error {
	seen := make(map[int64]int, len(ids))
	for i, id := range ids {
		if id <= 0 {
			return &domain.InvalidRuleError{Index: i, Reason: fmt.Sprintf("id must be positive, got %d", id)}
		}
		if first, ok := seen[id]; ok {
			return &domain.InvalidRuleError{Index: i, Reason: fmt.Sprintf("id %d repeats index %d", id, first)}
		}
		seen[id] = i
	}
	return nil
}

func derefRules(rules []*domain.ValidationRule) []domain.ValidationRule {
	out := make([]domain.ValidationRule, len(rules))
	for i, r := range rules {
		out[i] = *r
	}
	return out
}
