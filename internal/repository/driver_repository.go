package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/pomar/internal/database"
	"github.com/stwalsh4118/pomar/internal/models"
)

// DriverRepository defines data access for the driver directory (motoristas).
type DriverRepository interface {
	// FindByName matches the stored name exactly. Returns nil, nil if absent.
	FindByName(ctx context.Context, name string) (*models.Driver, error)

	// InsertIfAbsent creates d unless the name exists and reports whether it
	// inserted. A concurrent insert of the same name is not an error.
	InsertIfAbsent(ctx context.Context, d *models.Driver) (bool, error)

	List(ctx context.Context) ([]models.Driver, error)
}

type driverRepository struct {
	q database.Querier
}

func (r *driverRepository) FindByName(ctx context.Context, name string) (*models.Driver, error) {
	var d models.Driver
	err := r.q.QueryRow(ctx, `SELECT id, nome FROM motoristas WHERE nome = $1`, name).Scan(&d.ID, &d.Nome)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query driver %q: %w", name, err)
	}
	return &d, nil
}

func (r *driverRepository) InsertIfAbsent(ctx context.Context, d *models.Driver) (bool, error) {
	if d.ID == "" {
		d.ID = NewID()
	}
	tag, err := r.q.Exec(ctx, `INSERT INTO motoristas (id, nome) VALUES ($1, $2) ON CONFLICT (nome) DO NOTHING`, d.ID, d.Nome)
	if err != nil {
		return false, fmt.Errorf("failed to insert driver %q: %w", d.Nome, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *driverRepository) List(ctx context.Context) ([]models.Driver, error) {
	rows, err := r.q.Query(ctx, `SELECT id, nome FROM motoristas ORDER BY nome`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	drivers := []models.Driver{}
	for rows.Next() {
		var d models.Driver
		if err := rows.Scan(&d.ID, &d.Nome); err != nil {
			return nil, fmt.Errorf("failed to scan driver row: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating driver rows: %w", err)
	}
	return drivers, nil
}
