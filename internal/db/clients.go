package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"canchero/internal/model"
)

// CreateClient inserts a client. A missing ID is generated.
func (db *DB) CreateClient(ctx context.Context, c *model.Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := db.ExecContext(ctx, `
		INSERT INTO clients (id, name, phone, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Phone, c.Email, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetClient returns a client by id.
func (db *DB) GetClient(ctx context.Context, id string) (*model.Client, error) {
	var c model.Client
	var phone, email sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT id, name, phone, email, created_at, updated_at
		FROM clients WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &phone, &email, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Phone = phone.String
	c.Email = email.String
	return &c, nil
}

// ListClients returns all clients ordered by name.
func (db *DB) ListClients(ctx context.Context) ([]model.Client, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, phone, email, created_at, updated_at
		FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		var c model.Client
		var phone, email sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &phone, &email, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Phone = phone.String
		c.Email = email.String
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
