package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"canchero/internal/model"
)

// CreateBooking inserts a booking. A missing ID is generated; a missing
// status defaults to PENDIENTE.
func (db *DB) CreateBooking(ctx context.Context, b *model.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = model.StatusPendiente
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := db.ExecContext(ctx, `
		INSERT INTO bookings (id, court_id, client_id, start_time, end_time, status, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.CourtID, nullable(b.ClientID), b.StartTime.UTC(), b.EndTime.UTC(),
		b.Status, b.Comment, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetBooking returns a booking by id.
func (db *DB) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, court_id, client_id, start_time, end_time, status, comment, created_at, updated_at
		FROM bookings WHERE id = ?`, id)

	b, err := scanBookingRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBooking rewrites the mutable fields of a booking.
func (db *DB) UpdateBooking(ctx context.Context, b *model.Booking) error {
	b.UpdatedAt = time.Now().UTC()
	res, err := db.ExecContext(ctx, `
		UPDATE bookings
		SET court_id = ?, client_id = ?, start_time = ?, end_time = ?, status = ?, comment = ?, updated_at = ?
		WHERE id = ?`,
		b.CourtID, nullable(b.ClientID), b.StartTime.UTC(), b.EndTime.UTC(),
		b.Status, b.Comment, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	return requireRow(res)
}

// UpdateBookingStatus sets only the status.
func (db *DB) UpdateBookingStatus(ctx context.Context, id, status string) error {
	res, err := db.ExecContext(ctx,
		"UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return requireRow(res)
}

// DeleteBooking removes a booking row. The booking stops blocking
// availability immediately.
func (db *DB) DeleteBooking(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ActiveBookingsInRange returns non-cancelled bookings for a court whose
// interval overlaps [from, to), in insertion order. This is the storage
// order conflict checks resolve ties by.
func (db *DB) ActiveBookingsInRange(ctx context.Context, courtID string, from, to time.Time) ([]model.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, court_id, client_id, start_time, end_time, status, comment, created_at, updated_at
		FROM bookings
		WHERE court_id = ?
		AND start_time < ? AND end_time > ?
		AND status != ?
		ORDER BY rowid`,
		courtID, to.UTC(), from.UTC(), model.StatusCancelado,
	)
	if err != nil {
		return nil, fmt.Errorf("query active bookings: %w", err)
	}
	return collectBookings(rows)
}

// ListBookingsInRange returns all bookings for a court overlapping
// [from, to), cancelled included, ordered by start time.
func (db *DB) ListBookingsInRange(ctx context.Context, courtID string, from, to time.Time) ([]model.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, court_id, client_id, start_time, end_time, status, comment, created_at, updated_at
		FROM bookings
		WHERE court_id = ?
		AND start_time < ? AND end_time > ?
		ORDER BY start_time`,
		courtID, to.UTC(), from.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(s scanner) (*model.Booking, error) {
	var b model.Booking
	var clientID, comment sql.NullString
	if err := s.Scan(
		&b.ID, &b.CourtID, &clientID, &b.StartTime, &b.EndTime,
		&b.Status, &comment, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.ClientID = clientID.String
	b.Comment = comment.String
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	return &b, nil
}

func scanBookingRow(row *sql.Row) (*model.Booking, error) {
	return scanBooking(row)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
