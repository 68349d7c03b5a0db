package repository

import (
	"context"
	"errors"

	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

const (
	movieKeyConstraint    = "movies_provider_external_key"
	movieCoreIDConstraint = "movies_provider_core_movie_key"
	movieColumns          = "id, provider_id, external_id, core_movie_id, title, poster, raw_data"
)

type PostgresMovieRepository struct {
	db DBTX
}

func NewPostgresMovieRepository(db DBTX) *PostgresMovieRepository {
	return &PostgresMovieRepository{
		db: db,
	}
}

// Ensure returns the movie stored under key, creating it when missing. An
// existing movie gets its title, poster and raw data refreshed when attrs
// carries different values.
func (p *PostgresMovieRepository) Ensure(ctx context.Context, key domain.MovieKey, attrs domain.MovieAttrs) (*domain.Movie, error) {
	movie, err := p.getByKey(ctx, key)
	if err == nil {
		return p.applyChanges(ctx, movie, attrs)
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}

	query := `INSERT INTO movies (provider_id, external_id, core_movie_id, title, poster, raw_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + movieColumns

	movie, err = p.scanOne(ctx, query,
		key.ProviderID,
		key.ExternalID,
		attrs.CoreMovieID,
		attrs.Title,
		attrs.Poster,
		attrs.RawData)

	if err != nil {
		switch {
		case isUniqueViolation(err, movieKeyConstraint):
			movie, err = p.getByKey(ctx, key)
			if err != nil {
				return nil, err
			}

			return p.applyChanges(ctx, movie, attrs)
		case isUniqueViolation(err, movieCoreIDConstraint):
			return nil, domain.ErrCoreMovieConflict
		default:
			return nil, wrapErr(err)
		}
	}

	return movie, nil
}

func (p *PostgresMovieRepository) applyChanges(ctx context.Context, movie *domain.Movie, attrs domain.MovieAttrs) (*domain.Movie, error) {
	changes := movie.Changes(attrs)
	if changes.IsZero() {
		return movie, nil
	}

	var title *string
	if changes.Title != "" {
		title = &changes.Title
	}

	query := `UPDATE movies
		SET title = COALESCE($2, title),
			poster = COALESCE($3, poster),
			raw_data = COALESCE($4, raw_data)
		WHERE id = $1
		RETURNING ` + movieColumns

	return p.queryOne(ctx, query, movie.ID, title, changes.Poster, changes.RawData)
}

func (p *PostgresMovieRepository) getByKey(ctx context.Context, key domain.MovieKey) (*domain.Movie, error) {
	query := `SELECT ` + movieColumns + `
		FROM movies
		WHERE provider_id = $1 AND external_id = $2`

	return p.queryOne(ctx, query, key.ProviderID, key.ExternalID)
}

func (p *PostgresMovieRepository) GetById(ctx context.Context, id int) (*domain.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`

	return p.queryOne(ctx, query, id)
}

// FindByTitle returns the lowest-id movie whose title contains term,
// ignoring case.
func (p *PostgresMovieRepository) FindByTitle(ctx context.Context, term string) (*domain.Movie, error) {
	query := `SELECT ` + movieColumns + `
		FROM movies
		WHERE title ILIKE '%' || $1::text || '%'
		ORDER BY id
		LIMIT 1`

	return p.queryOne(ctx, query, term)
}

func (p *PostgresMovieRepository) queryOne(ctx context.Context, query string, args ...any) (*domain.Movie, error) {
	movie, err := p.scanOne(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err)
	}

	return movie, nil
}

func (p *PostgresMovieRepository) scanOne(ctx context.Context, query string, args ...any) (*domain.Movie, error) {
	var movie domain.Movie

	err := p.db.QueryRow(ctx, query, args...).Scan(
		&movie.ID,
		&movie.ProviderID,
		&movie.ExternalID,
		&movie.CoreMovieID,
		&movie.Title,
		&movie.Poster,
		&movie.RawData,
	)
	if err != nil {
		return nil, err
	}

	return &movie, nil
}
