package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"acordex/internal/domain"
)

// MockValidationRuleRepo is a mock implementation of port.ValidationRuleRepository.
type MockValidationRuleRepo struct {
	mock.Mock
}

func (m *MockValidationRuleRepo) CreateBatch(ctx context.Context, rules []*domain.ValidationRule) error {
	args := m.Called(ctx, rules)
	return args.Error(0)
}

func (m *MockValidationRuleRepo) GetByID(ctx context.Context, id int64) (*domain.ValidationRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationRule), args.Error(1)
}

func (m *MockValidationRuleRepo) List(ctx context.Context) ([]domain.ValidationRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ValidationRule), args.Error(1)
}

func (m *MockValidationRuleRepo) UpdateBatch(ctx context.Context, rules []*domain.ValidationRule) error {
	args := m.Called(ctx, rules)
	return args.Error(0)
}

func (m *MockValidationRuleRepo) DeleteBatch(ctx context.Context, ids []int64) ([]domain.ValidationRule, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ValidationRule), args.Error(1)
}

func (m *MockValidationRuleRepo) FindActiveMatch(ctx context.Context, certificateType, productName string) (*domain.ValidationRule, error) {
	args := m.Called(ctx, certificateType, productName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationRule), args.Error(1)
}

func (m *MockValidationRuleRepo) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
