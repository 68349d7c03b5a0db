package repository

import (
	"context"
	"errors"

	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

const cinemaKeyConstraint = "cinemas_provider_external_key"

type PostgresCinemaRepository struct {
	db DBTX
}

func NewPostgresCinemaRepository(db DBTX) *PostgresCinemaRepository {
	return &PostgresCinemaRepository{
		db: db,
	}
}

func (p *PostgresCinemaRepository) Ensure(ctx context.Context, key domain.CinemaKey, attrs domain.CinemaAttrs) (*domain.Cinema, error) {
	cinema, err := p.getByKey(ctx, key)
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return cinema, err
	}

	query := `INSERT INTO cinemas (provider_id, external_id, name, city, country)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, provider_id, external_id, name, city, country`

	cinema = &domain.Cinema{}

	err = p.db.QueryRow(ctx,
		query,
		key.ProviderID,
		key.ExternalID,
		attrs.Name,
		attrs.City,
		attrs.Country).Scan(
		&cinema.ID,
		&cinema.ProviderID,
		&cinema.ExternalID,
		&cinema.Name,
		&cinema.City,
		&cinema.Country,
	)

	if err != nil {
		if isUniqueViolation(err, cinemaKeyConstraint) {
			return p.getByKey(ctx, key)
		}

		return nil, wrapErr(err)
	}

	return cinema, nil
}

func (p *PostgresCinemaRepository) getByKey(ctx context.Context, key domain.CinemaKey) (*domain.Cinema, error) {
	query := `SELECT id, provider_id, external_id, name, city, country
		FROM cinemas
		WHERE provider_id = $1 AND external_id = $2`

	return p.scanOne(ctx, query, key.ProviderID, key.ExternalID)
}

func (p *PostgresCinemaRepository) GetById(ctx context.Context, id int) (*domain.Cinema, error) {
	query := `SELECT id, provider_id, external_id, name, city, country
		FROM cinemas
		WHERE id = $1`

	return p.scanOne(ctx, query, id)
}

func (p *PostgresCinemaRepository) scanOne(ctx context.Context, query string, args ...any) (*domain.Cinema, error) {
	var cinema domain.Cinema

	err := p.db.QueryRow(ctx, query, args...).Scan(
		&cinema.ID,
		&cinema.ProviderID,
		&cinema.ExternalID,
		&cinema.Name,
		&cinema.City,
		&cinema.Country,
	)
	if err != nil {
		return nil, wrapErr(err)
	}

	return &cinema, nil
}

func (p *PostgresCinemaRepository) GetAll(ctx context.Context) ([]*domain.Cinema, error) {
	query := `SELECT id, provider_id, external_id, name, city, country
		FROM cinemas
		ORDER BY id`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	cinemas := []*domain.Cinema{}

	for rows.Next() {
		var cinema domain.Cinema

		err := rows.Scan(
			&cinema.ID,
			&cinema.ProviderID,
			&cinema.ExternalID,
			&cinema.Name,
			&cinema.City,
			&cinema.Country,
		)
		if err != nil {
			return nil, wrapErr(err)
		}

		cinemas = append(cinemas, &cinema)
	}

	if err = rows.Err(); err != nil {
		return nil, wrapErr(err)
	}

	return cinemas, nil
}
