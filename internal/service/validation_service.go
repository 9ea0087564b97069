package service

import (
	"context"

	"go.uber.org/zap"

	"acordex/internal/domain"
)

// ValidationResult pairs an extraction with its rule matching outcome.
type ValidationResult struct {
	Extraction *domain.ExtractionResult `json:"extraction"`
	Match      *domain.MatchResult      `json:"match"`
}

// ValidationService extracts a document and checks it against the rules.
type ValidationService interface {
	Validate(ctx context.Context, input *ExtractInput) (*ValidationResult, error)
}

type validationService struct {
	extractionSvc ExtractionService
	ruleSvc       RuleService
	logger        *zap.Logger
}

// NewValidationService creates a new ValidationService implementation.
func NewValidationService(extractionSvc ExtractionService, ruleSvc RuleService, logger *zap.Logger) ValidationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &validationService{extractionSvc: extractionSvc, ruleSvc: ruleSvc, logger: logger}
}

func (s *validationService) Validate(ctx context.Context, input *ExtractInput) (*ValidationResult, error) {
	extraction, err := s.extractionSvc.Extract(ctx, input)
	if err != nil {
		return nil, err
	}

	match, err := s.ruleSvc.Match(ctx, extraction.MatchInput())
	if err != nil {
		return nil, err
	}

	s.logger.Info("document validated",
		zap.String("request_id", extraction.RequestID),
		zap.String("outcome", string(match.Outcome)),
	)
	return &ValidationResult{Extraction: extraction, Match: match}, nil
}
