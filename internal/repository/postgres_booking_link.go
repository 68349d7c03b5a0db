package repository

import (
	"context"
	"errors"

	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

const bookingLinkKeyConstraint = "booking_links_showtime_url_key"

type PostgresBookingLinkRepository struct {
	db DBTX
}

func NewPostgresBookingLinkRepository(db DBTX) *PostgresBookingLinkRepository {
	return &PostgresBookingLinkRepository{
		db: db,
	}
}

func (p *PostgresBookingLinkRepository) Ensure(ctx context.Context, key domain.BookingLinkKey) (*domain.BookingLink, error) {
	link, err := p.getByKey(ctx, key)
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return link, err
	}

	query := `INSERT INTO booking_links (showtime_id, url)
		VALUES ($1, $2)
		RETURNING id, showtime_id, url`

	link = &domain.BookingLink{}

	err = p.db.QueryRow(ctx, query, key.ShowtimeID, key.URL).Scan(&link.ID, &link.ShowtimeID, &link.URL)
	if err != nil {
		if isUniqueViolation(err, bookingLinkKeyConstraint) {
			return p.getByKey(ctx, key)
		}

		return nil, wrapErr(err)
	}

	return link, nil
}

func (p *PostgresBookingLinkRepository) getByKey(ctx context.Context, key domain.BookingLinkKey) (*domain.BookingLink, error) {
	query := `SELECT id, showtime_id, url FROM booking_links WHERE showtime_id = $1 AND url = $2`

	var link domain.BookingLink

	err := p.db.QueryRow(ctx, query, key.ShowtimeID, key.URL).Scan(&link.ID, &link.ShowtimeID, &link.URL)
	if err != nil {
		return nil, wrapErr(err)
	}

	return &link, nil
}

func (p *PostgresBookingLinkRepository) GetAll(ctx context.Context) ([]*domain.BookingLink, error) {
	query := `SELECT id, showtime_id, url FROM booking_links ORDER BY id`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	links := []*domain.BookingLink{}

	for rows.Next() {
		var link domain.BookingLink

		err := rows.Scan(&link.ID, &link.ShowtimeID, &link.URL)
		if err != nil {
			return nil, wrapErr(err)
		}

		links = append(links, &link)
	}

	if err = rows.Err(); err != nil {
		return nil, wrapErr(err)
	}

	return links, nil
}
