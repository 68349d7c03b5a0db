package repository

import (
	"context"
	"errors"

	"github.com/metinatakli/showtime-aggregator/internal/domain"
)

const showtimeKeyConstraint = "showtimes_cinema_movie_start_key"

type PostgresShowtimeRepository struct {
	db DBTX
}

func NewPostgresShowtimeRepository(db DBTX) *PostgresShowtimeRepository {
	return &PostgresShowtimeRepository{
		db: db,
	}
}

// Ensure never rewrites the attributes of an existing showtime: the first
// stored version, hall and languages win.
func (p *PostgresShowtimeRepository) Ensure(ctx context.Context, key domain.ShowtimeKey, attrs domain.ShowtimeAttrs) (*domain.Showtime, error) {
	showtime, err := p.getByKey(ctx, key)
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return showtime, err
	}

	query := `INSERT INTO showtimes
		(cinema_id, movie_id, start_time, version_label, hall_type, audio_language, subtitle_language)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, cinema_id, movie_id, start_time, version_label, hall_type, audio_language, subtitle_language`

	showtime = &domain.Showtime{}

	err = p.db.QueryRow(ctx,
		query,
		key.CinemaID,
		key.MovieID,
		key.StartTime,
		attrs.VersionLabel,
		attrs.HallType,
		attrs.AudioLanguage,
		attrs.SubtitleLanguage).Scan(
		&showtime.ID,
		&showtime.CinemaID,
		&showtime.MovieID,
		&showtime.StartTime,
		&showtime.VersionLabel,
		&showtime.HallType,
		&showtime.AudioLanguage,
		&showtime.SubtitleLanguage,
	)

	if err != nil {
		if isUniqueViolation(err, showtimeKeyConstraint) {
			return p.getByKey(ctx, key)
		}

		return nil, wrapErr(err)
	}

	return showtime, nil
}

func (p *PostgresShowtimeRepository) getByKey(ctx context.Context, key domain.ShowtimeKey) (*domain.Showtime, error) {
	query := `SELECT id, cinema_id, movie_id, start_time, version_label, hall_type, audio_language, subtitle_language
		FROM showtimes
		WHERE cinema_id = $1 AND movie_id = $2 AND start_time = $3`

	var showtime domain.Showtime

	err := p.db.QueryRow(ctx, query, key.CinemaID, key.MovieID, key.StartTime).Scan(
		&showtime.ID,
		&showtime.CinemaID,
		&showtime.MovieID,
		&showtime.StartTime,
		&showtime.VersionLabel,
		&showtime.HallType,
		&showtime.AudioLanguage,
		&showtime.SubtitleLanguage,
	)
	if err != nil {
		return nil, wrapErr(err)
	}

	return &showtime, nil
}

func (p *PostgresShowtimeRepository) Search(
	ctx context.Context,
	filters domain.ShowtimeFilters) ([]*domain.ShowtimeDetails, *domain.Metadata, error) {

	query := `
		SELECT count(*) OVER(), s.id, s.cinema_id, s.movie_id, s.start_time,
			s.version_label, s.hall_type, s.audio_language, s.subtitle_language,
			c.id, c.name, p.id, p.name
		FROM showtimes s
		JOIN cinemas c ON c.id = s.cinema_id
		JOIN providers p ON p.id = c.provider_id
		JOIN movies m ON m.id = s.movie_id
		WHERE ($1::int IS NULL OR s.movie_id = $1)
			AND ($2::text = '' OR m.title ILIKE '%' || $2::text || '%')
		ORDER BY s.start_time, s.id
		LIMIT $3 OFFSET $4
	`

	rows, err := p.db.Query(ctx, query, filters.MovieID, filters.MovieTitle, filters.Limit(), filters.Offset())
	if err != nil {
		return nil, nil, wrapErr(err)
	}
	defer rows.Close()

	totalRecords := 0
	showtimes := []*domain.ShowtimeDetails{}
	byID := make(map[int]*domain.ShowtimeDetails)
	ids := []int{}

	for rows.Next() {
		var st domain.ShowtimeDetails

		err := rows.Scan(
			&totalRecords,
			&st.ID,
			&st.CinemaID,
			&st.MovieID,
			&st.StartTime,
			&st.VersionLabel,
			&st.HallType,
			&st.AudioLanguage,
			&st.SubtitleLanguage,
			&st.Cinema.ID,
			&st.Cinema.Name,
			&st.Cinema.Provider.ID,
			&st.Cinema.Provider.Name,
		)
		if err != nil {
			return nil, nil, wrapErr(err)
		}

		st.BookingLinks = []domain.BookingLink{}
		showtimes = append(showtimes, &st)
		byID[st.ID] = &st
		ids = append(ids, st.ID)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, wrapErr(err)
	}

	if len(ids) > 0 {
		err = p.attachBookingLinks(ctx, ids, byID)
		if err != nil {
			return nil, nil, err
		}
	}

	metadata := domain.NewMetadata(totalRecords, filters.Page, filters.PageSize)

	return showtimes, metadata, nil
}

func (p *PostgresShowtimeRepository) attachBookingLinks(
	ctx context.Context,
	ids []int,
	byID map[int]*domain.ShowtimeDetails) error {

	query := `SELECT id, showtime_id, url FROM booking_links WHERE showtime_id = ANY($1) ORDER BY id`

	rows, err := p.db.Query(ctx, query, ids)
	if err != nil {
		return wrapErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var link domain.BookingLink

		err := rows.Scan(&link.ID, &link.ShowtimeID, &link.URL)
		if err != nil {
			return wrapErr(err)
		}

		if st, ok := byID[link.ShowtimeID]; ok {
			st.BookingLinks = append(st.BookingLinks, link)
		}
	}

	return wrapErr(rows.Err())
}
