package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"canchero/internal/model"
)

// CreateCourt inserts a court. A missing ID is generated.
func (db *DB) CreateCourt(ctx context.Context, c *model.Court) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := db.ExecContext(ctx, `
		INSERT INTO courts (id, name, type, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Type, c.Description, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert court: %w", err)
	}
	return nil
}

// GetCourt returns a court by id.
func (db *DB) GetCourt(ctx context.Context, id string) (*model.Court, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, name, type, description, is_active, created_at, updated_at
		FROM courts WHERE id = ?`, id)
	return scanCourt(row)
}

// GetCourtByName returns a court by its unique name.
func (db *DB) GetCourtByName(ctx context.Context, name string) (*model.Court, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, name, type, description, is_active, created_at, updated_at
		FROM courts WHERE name = ?`, name)
	return scanCourt(row)
}

// ListActiveCourts returns courts offered for new bookings, ordered by name.
func (db *DB) ListActiveCourts(ctx context.Context) ([]model.Court, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, type, description, is_active, created_at, updated_at
		FROM courts WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list courts: %w", err)
	}
	defer rows.Close()

	var courts []model.Court
	for rows.Next() {
		var c model.Court
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &desc, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Description = desc.String
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

// SetCourtActive toggles whether a court is offered for new bookings.
func (db *DB) SetCourtActive(ctx context.Context, id string, active bool) error {
	res, err := db.ExecContext(ctx,
		"UPDATE courts SET is_active = ?, updated_at = ? WHERE id = ?",
		active, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SyncCourts upserts the configured courts by name. Configured courts are
// activated; courts absent from the list are left untouched.
func (db *DB) SyncCourts(ctx context.Context, courts []model.Court) error {
	for _, c := range courts {
		existing, err := db.GetCourtByName(ctx, c.Name)
		switch {
		case err == nil:
			_, err = db.ExecContext(ctx,
				"UPDATE courts SET type = ?, description = ?, is_active = 1, updated_at = ? WHERE id = ?",
				c.Type, c.Description, time.Now().UTC(), existing.ID,
			)
			if err != nil {
				return fmt.Errorf("update court %s: %w", c.Name, err)
			}
		case errors.Is(err, ErrNotFound):
			c.IsActive = true
			if err := db.CreateCourt(ctx, &c); err != nil {
				return fmt.Errorf("create court %s: %w", c.Name, err)
			}
		default:
			return err
		}
	}
	return nil
}

func scanCourt(row *sql.Row) (*model.Court, error) {
	var c model.Court
	var desc sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Type, &desc, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Description = desc.String
	return &c, nil
}
