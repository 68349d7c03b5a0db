package mocks

import (
	"context"

	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

type MockCinemaRepo struct {
	domain.CinemaRepository
	EnsureFunc  func(ctx context.Context, key domain.CinemaKey, attrs domain.CinemaAttrs) (*domain.Cinema, error)
	GetByIdFunc func(ctx context.Context, id int) (*domain.Cinema, error)
	GetAllFunc  func(ctx context.Context) ([]*domain.Cinema, error)
}

func (m *MockCinemaRepo) Ensure(ctx context.Context, key domain.CinemaKey, attrs domain.CinemaAttrs) (*domain.Cinema, error) {
	return m.EnsureFunc(ctx, key, attrs)
}

func (m *MockCinemaRepo) GetById(ctx context.Context, id int) (*domain.Cinema, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockCinemaRepo) GetAll(ctx context.Context) ([]*domain.Cinema, error) {
	return m.GetAllFunc(ctx)
}
