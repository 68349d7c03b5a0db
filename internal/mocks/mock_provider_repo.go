package mocks

import (
	"context"

	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

type MockProviderRepo struct {
	domain.ProviderRepository
	EnsureFunc  func(ctx context.Context, name string, websiteURL *string) (*domain.Provider, error)
	GetByIdFunc func(ctx context.Context, id int) (*domain.Provider, error)
	GetAllFunc  func(ctx context.Context) ([]*domain.Provider, error)
}

func (m *MockProviderRepo) Ensure(ctx context.Context, name string, websiteURL *string) (*domain.Provider, error) {
	return m.EnsureFunc(ctx, name, websiteURL)
}

func (m *MockProviderRepo) GetById(ctx context.Context, id int) (*domain.Provider, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockProviderRepo) GetAll(ctx context.Context) ([]*domain.Provider, error) {
	return m.GetAllFunc(ctx)
}
