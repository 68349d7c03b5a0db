package domain

import "context"

type Provider struct {
	ID         int
	Name       string
	WebsiteURL *string
}

type ProviderRepository interface {
	Ensure(ctx context.Context, name string, websiteURL *string) (*Provider, error)
	GetById(ctx context.Context, id int) (*Provider, error)
	GetAll(ctx context.Context) ([]*Provider, error)
}
