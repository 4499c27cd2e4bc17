package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgExclusionViolation = "23P01"
	pgCheckViolation     = "23514"
	pgUniqueViolation    = "23505"
)

// BookingsSchema creates the bookings table. The exclusion constraint is
// the database-level guarantee that no two bookings on one resource
// overlap, even if a writer bypasses InsertIfNoOverlap.
const BookingsSchema = `
CREATE EXTENSION IF NOT EXISTS btree_gist;
CREATE TABLE IF NOT EXISTS bookings (
	id          UUID PRIMARY KEY,
	title       TEXT NOT NULL,
	resource    TEXT NOT NULL,
	starts_at   TIMESTAMPTZ NOT NULL,
	ends_at     TIMESTAMPTZ NOT NULL,
	all_day     BOOLEAN NOT NULL DEFAULT false,
	club_name   TEXT NOT NULL DEFAULT '',
	purpose     TEXT NOT NULL DEFAULT '',
	num_guests  INTEGER NOT NULL DEFAULT 0,
	color       TEXT NOT NULL DEFAULT '',
	recurrence  JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT bookings_interval_check CHECK (starts_at < ends_at),
	CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
		resource WITH =,
		tstzrange(starts_at, ends_at, '[)') WITH &&
	)
);
CREATE INDEX IF NOT EXISTS bookings_resource_start_idx ON bookings (resource, starts_at);
`

const bookingColumns = `id, title, resource, starts_at, ends_at, all_day, club_name, purpose, num_guests, color, recurrence, created_at`

// PgxPool is the part of *pgxpool.Pool the store uses.
type PgxPool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGBookingRepository struct {
	db PgxPool
}

func NewBookingRepository(db PgxPool) *PGBookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, BookingsSchema)
	return err
}

func (r *PGBookingRepository) InsertIfNoOverlap(ctx context.Context, booking *domain.Booking) error {
	recurrence, err := encodeRecurrence(booking.Recurrence)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Serializes writers on one resource until commit.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, booking.Resource); err != nil {
		return err
	}

	var clash string
	err = tx.QueryRow(ctx, `SELECT id FROM bookings WHERE resource = $1 AND starts_at < $3 AND ends_at > $2 LIMIT 1`,
		booking.Resource, booking.Start, booking.End).Scan(&clash)
	switch {
	case err == nil:
		return domain.ErrConflict
	case !errors.Is(err, pgx.ErrNoRows):
		return err
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, title, resource, starts_at, ends_at, all_day, club_name, purpose, num_guests, color, recurrence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`,
		booking.ID, booking.Title, booking.Resource, booking.Start, booking.End, booking.AllDay,
		booking.ClubName, booking.Purpose, booking.NumGuests, booking.Color, recurrence).
		Scan(&booking.CreatedAt); err != nil {
		return translatePGError(err)
	}

	return translatePGError(tx.Commit(ctx))
}

func (r *PGBookingRepository) List(ctx context.Context, resource string) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	var args []any
	if resource != "" {
		query += ` WHERE resource = $1`
		args = append(args, resource)
	}
	query += ` ORDER BY starts_at, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) Delete(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `DELETE FROM bookings WHERE id = $1 RETURNING `+bookingColumns, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, translatePGError(err)
	}
	return b, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b          domain.Booking
		recurrence []byte
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Resource, &b.Start, &b.End, &b.AllDay,
		&b.ClubName, &b.Purpose, &b.NumGuests, &b.Color, &recurrence, &b.CreatedAt); err != nil {
		return nil, err
	}
	if len(recurrence) > 0 {
		b.Recurrence = &domain.Recurrence{}
		if err := json.Unmarshal(recurrence, b.Recurrence); err != nil {
			return nil, fmt.Errorf("decode recurrence for booking %s: %w", b.ID, err)
		}
	}
	b.Start, b.End, b.CreatedAt = b.Start.UTC(), b.End.UTC(), b.CreatedAt.UTC()
	return &b, nil
}

func encodeRecurrence(rec *domain.Recurrence) (any, error) {
	if rec == nil {
		return nil, nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// translatePGError maps constraint violations raised by the schema onto
// domain errors.
func translatePGError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return domain.ErrConflict
		case pgCheckViolation:
			return domain.ErrInvalidInterval
		case pgUniqueViolation:
			return domain.Invalidf("booking already exists")
		}
	}
	return err
}

var (
	_ BookingRepository = (*PGBookingRepository)(nil)
	_ PgxPool           = (*pgxpool.Pool)(nil)
)
