package mocks

import (
	"context"

	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

type MockMovieRepo struct {
	domain.MovieRepository
	EnsureFunc      func(ctx context.Context, key domain.MovieKey, attrs domain.MovieAttrs) (*domain.Movie, error)
	GetByIdFunc     func(ctx context.Context, id int) (*domain.Movie, error)
	FindByTitleFunc func(ctx context.Context, term string) (*domain.Movie, error)
}

func (m *MockMovieRepo) Ensure(ctx context.Context, key domain.MovieKey, attrs domain.MovieAttrs) (*domain.Movie, error) {
	return m.EnsureFunc(ctx, key, attrs)
}

func (m *MockMovieRepo) GetById(ctx context.Context, id int) (*domain.Movie, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockMovieRepo) FindByTitle(ctx context.Context, term string) (*domain.Movie, error) {
	return m.FindByTitleFunc(ctx, term)
}
