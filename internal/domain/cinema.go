package domain

import "context"

type Cinema struct {
	ID         int
	ProviderID int
	ExternalID string
	Name       string
	City       *string
	Country    *string
}

// CinemaKey is unique only within a provider.
type CinemaKey struct {
	ProviderID int
	ExternalID string
}

type CinemaAttrs struct {
	Name    string
	City    *string
	Country *string
}

type CinemaRepository interface {
	Ensure(ctx context.Context, key CinemaKey, attrs CinemaAttrs) (*Cinema, error)
	GetById(ctx context.Context, id int) (*Cinema, error)
	GetAll(ctx context.Context) ([]*Cinema, error)
}
