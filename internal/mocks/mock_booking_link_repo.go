package mocks

import (
	"context"

	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

type MockBookingLinkRepo struct {
	domain.BookingLinkRepository
	EnsureFunc func(ctx context.Context, key domain.BookingLinkKey) (*domain.BookingLink, error)
	GetAllFunc func(ctx context.Context) ([]*domain.BookingLink, error)
}

func (m *MockBookingLinkRepo) Ensure(ctx context.Context, key domain.BookingLinkKey) (*domain.BookingLink, error) {
	return m.EnsureFunc(ctx, key)
}

func (m *MockBookingLinkRepo) GetAll(ctx context.Context) ([]*domain.BookingLink, error) {
	return m.GetAllFunc(ctx)
}
