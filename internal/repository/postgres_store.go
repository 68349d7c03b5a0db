package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxstd "github.com/jackc/pgx/v5/stdlib"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
	"github.com/metinatakli/showtime-aggregator/migrations"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// NewRegistries builds the write path over any handle, a pool for the API
// or a single acquired connection for a pipeline run.
func NewRegistries(db DBTX) domain.Registries {
	return domain.Registries{
		Providers:    NewPostgresProviderRepository(db),
		Cinemas:      NewPostgresCinemaRepository(db),
		Movies:       NewPostgresMovieRepository(db),
		Showtimes:    NewPostgresShowtimeRepository(db),
		BookingLinks: NewPostgresBookingLinkRepository(db),
	}
}

// Migrate applies every pending schema migration.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return s.withMigrator(ctx, func(m *migrate.Migrate) error {
		err := m.Up()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration failed: %w", err)
		}

		return nil
	})
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	return s.withMigrator(ctx, func(m *migrate.Migrate) error {
		err := m.Down()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("dropping schema failed: %w", err)
		}

		err = m.Up()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("recreating schema failed: %w", err)
		}

		return nil
	})
}

func (s *PostgresStore) withMigrator(ctx context.Context, fn func(m *migrate.Migrate) error) (err error) {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	db := pgxstd.OpenDB(*s.db.Config().ConnConfig)

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("pgx migration driver error: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		db.Close()
		return fmt.Errorf("migration source error: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx", driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("migrate.New error: %w", err)
	}

	defer func() {
		sourceErr, dbErr := m.Close()
		err = errors.Join(err, sourceErr, dbErr)
	}()

	return fn(m)
}

func (s *PostgresStore) Acquire(ctx context.Context) (domain.Session, error) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return &postgresSession{
		conn:       conn,
		registries: NewRegistries(conn),
	}, nil
}

type postgresSession struct {
	conn       *pgxpool.Conn
	registries domain.Registries
}

func (s *postgresSession) Registries() domain.Registries {
	return s.registries
}

func (s *postgresSession) Counts(ctx context.Context) (domain.Counts, error) {
	query := `SELECT
		(SELECT count(*) FROM providers),
		(SELECT count(*) FROM cinemas),
		(SELECT count(*) FROM movies),
		(SELECT count(*) FROM showtimes),
		(SELECT count(*) FROM booking_links)`

	var counts domain.Counts

	err := s.conn.QueryRow(ctx, query).Scan(
		&counts.Providers,
		&counts.Cinemas,
		&counts.Movies,
		&counts.Showtimes,
		&counts.BookingLinks,
	)
	if err != nil {
		return domain.Counts{}, wrapErr(err)
	}

	return counts, nil
}

func (s *postgresSession) Release() {
	s.conn.Release()
}
