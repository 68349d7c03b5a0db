package repository

import (
	"context"
	"errors"

	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

const providerNameConstraint = "providers_name_key"

type PostgresProviderRepository struct {
	db DBTX
}

func NewPostgresProviderRepository(db DBTX) *PostgresProviderRepository {
	return &PostgresProviderRepository{
		db: db,
	}
}

func (p *PostgresProviderRepository) Ensure(ctx context.Context, name string, websiteURL *string) (*domain.Provider, error) {
	provider, err := p.getByName(ctx, name)
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return provider, err
	}

	query := `INSERT INTO providers (name, website_url)
		VALUES ($1, $2)
		RETURNING id, name, website_url`

	provider = &domain.Provider{}

	err = p.db.QueryRow(ctx, query, name, websiteURL).Scan(
		&provider.ID,
		&provider.Name,
		&provider.WebsiteURL,
	)

	if err != nil {
		if isUniqueViolation(err, providerNameConstraint) {
			return p.getByName(ctx, name)
		}

		return nil, wrapErr(err)
	}

	return provider, nil
}

func (p *PostgresProviderRepository) getByName(ctx context.Context, name string) (*domain.Provider, error) {
	query := `SELECT id, name, website_url FROM providers WHERE name = $1`

	var provider domain.Provider

	err := p.db.QueryRow(ctx, query, name).Scan(&provider.ID, &provider.Name, &provider.WebsiteURL)
	if err != nil {
		return nil, wrapErr(err)
	}

	return &provider, nil
}

func (p *PostgresProviderRepository) GetById(ctx context.Context, id int) (*domain.Provider, error) {
	query := `SELECT id, name, website_url FROM providers WHERE id = $1`

	var provider domain.Provider

	err := p.db.QueryRow(ctx, query, id).Scan(&provider.ID, &provider.Name, &provider.WebsiteURL)
	if err != nil {
		return nil, wrapErr(err)
	}

	return &provider, nil
}

func (p *PostgresProviderRepository) GetAll(ctx context.Context) ([]*domain.Provider, error) {
	query := `SELECT id, name, website_url FROM providers ORDER BY id`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	providers := []*domain.Provider{}

	for rows.Next() {
		var provider domain.Provider

		err := rows.Scan(&provider.ID, &provider.Name, &provider.WebsiteURL)
		if err != nil {
			return nil, wrapErr(err)
		}

		providers = append(providers, &provider)
	}

	if err = rows.Err(); err != nil {
		return nil, wrapErr(err)
	}

	return providers, nil
}
