package domain

import "context"

type BookingLink struct {
	ID         int
	ShowtimeID int
	URL        string
}

type BookingLinkKey struct {
	ShowtimeID int
	URL        string
}

type BookingLinkRepository interface {
	Ensure(ctx context.Context, key BookingLinkKey) (*BookingLink, error)
	GetAll(ctx context.Context) ([]*BookingLink, error)
}
