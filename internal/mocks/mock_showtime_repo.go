package mocks

import (
	"context"

	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

type MockShowtimeRepo struct {
	domain.ShowtimeRepository
	EnsureFunc func(ctx context.Context, key domain.ShowtimeKey, attrs domain.ShowtimeAttrs) (*domain.Showtime, error)
	SearchFunc func(ctx context.Context, filters domain.ShowtimeFilters) ([]*domain.ShowtimeDetails, *domain.Metadata, error)
}

func (m *MockShowtimeRepo) Ensure(ctx context.Context, key domain.ShowtimeKey, attrs domain.ShowtimeAttrs) (*domain.Showtime, error) {
	return m.EnsureFunc(ctx, key, attrs)
}

func (m *MockShowtimeRepo) Search(ctx context.Context, filters domain.ShowtimeFilters) ([]*domain.ShowtimeDetails, *domain.Metadata, error) {
	return m.SearchFunc(ctx, filters)
}
