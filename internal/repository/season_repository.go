package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/pomar/internal/database"
	"github.com/stwalsh4118/pomar/internal/models"
)

// SeasonRepository defines data access for harvest seasons (safras).
type SeasonRepository interface {
	Create(ctx context.Context, s *models.Season) error

	// FindByID returns nil, nil if no season has the id.
	FindByID(ctx context.Context, id string) (*models.Season, error)

	// LockByID is FindByID plus a row lock held until the enclosing
	// transaction ends. Load writes take it to serialize per season.
	LockByID(ctx context.Context, id string) (*models.Season, error)

	// FindActive returns the most recently created active season, or nil, nil.
	FindActive(ctx context.Context) (*models.Season, error)

	// List returns seasons newest first.
	List(ctx context.Context) ([]models.Season, error)

	// Update returns nil, nil if the season is gone.
	Update(ctx context.Context, s *models.Season) (*models.Season, error)

	// Delete returns ErrForeignKeyViolation while loads or overlays reference it.
	Delete(ctx context.Context, id string) (bool, error)
}

type seasonRepository struct {
	q database.Querier
}

const seasonColumns = `id, nome, is_active, data_inicial_colheita, created_at, updated_at`

func scanSeason(row scanner, s *models.Season) error {
	var anchor *int64
	if err := row.Scan(&s.ID, &s.Nome, &s.IsActive, &anchor, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return err
	}
	s.DataInicialColheita = millisPtr(anchor)
	return nil
}

func millisPtr(v *int64) *models.Millis {
	if v == nil {
		return nil
	}
	m := models.Millis(*v)
	return &m
}

func millisArg(m *models.Millis) *int64 {
	if m == nil {
		return nil
	}
	v := int64(*m)
	return &v
}

func (r *seasonRepository) Create(ctx context.Context, s *models.Season) error {
	if s.ID == "" {
		s.ID = NewID()
	}

	query := `
		INSERT INTO safras (id, nome, is_active, data_inicial_colheita)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query, s.ID, s.Nome, s.IsActive, millisArg(s.DataInicialColheita)).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert season %q: %w", s.Nome, classify(err))
	}
	return nil
}

func (r *seasonRepository) FindByID(ctx context.Context, id string) (*models.Season, error) {
	return r.findOne(ctx, `SELECT `+seasonColumns+` FROM safras WHERE id = $1`, id)
}

func (r *seasonRepository) LockByID(ctx context.Context, id string) (*models.Season, error) {
	return r.findOne(ctx, `SELECT `+seasonColumns+` FROM safras WHERE id = $1 FOR UPDATE`, id)
}

func (r *seasonRepository) FindActive(ctx context.Context) (*models.Season, error) {
	return r.findOne(ctx, `SELECT `+seasonColumns+` FROM safras WHERE is_active ORDER BY created_at DESC, id LIMIT 1`)
}

func (r *seasonRepository) findOne(ctx context.Context, query string, args ...any) (*models.Season, error) {
	var s models.Season
	if err := scanSeason(r.q.QueryRow(ctx, query, args...), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query season: %w", err)
	}
	return &s, nil
}

func (r *seasonRepository) List(ctx context.Context) ([]models.Season, error) {
	rows, err := r.q.Query(ctx, `SELECT `+seasonColumns+` FROM safras ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	seasons := []models.Season{}
	for rows.Next() {
		var s models.Season
		if err := scanSeason(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan season row: %w", err)
		}
		seasons = append(seasons, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating season rows: %w", err)
	}
	return seasons, nil
}

func (r *seasonRepository) Update(ctx context.Context, s *models.Season) (*models.Season, error) {
	query := `
		UPDATE safras SET nome = $2, is_active = $3, data_inicial_colheita = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + seasonColumns

	var out models.Season
	if err := scanSeason(r.q.QueryRow(ctx, query, s.ID, s.Nome, s.IsActive, millisArg(s.DataInicialColheita)), &out); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update season %s: %w", s.ID, classify(err))
	}
	return &out, nil
}

func (r *seasonRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM safras WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete season %s: %w", id, classify(err))
	}
	return tag.RowsAffected() > 0, nil
}
