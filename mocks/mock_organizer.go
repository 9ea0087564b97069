package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"acordex/internal/domain"
	"acordex/internal/port"
)

// MockOrganizer is a mock implementation of port.Organizer.
type MockOrganizer struct {
	mock.Mock
}

func (m *MockOrganizer) Organize(ctx context.Context, input port.OrganizeInput) (*domain.OrganizedResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrganizedResult), args.Error(1)
}
