package repository

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/pomar/internal/database"
	"github.com/stwalsh4118/pomar/internal/models"
)

// HarvestWeekRepository defines data access for the harvest-week ledger
// (semanas_colheita). Rows are only ever inserted.
type HarvestWeekRepository interface {
	// InsertIfAbsent inserts w unless the season already maps its calendar
	// week, and reports whether a row was created. Concurrent duplicates are
	// absorbed by the unique key, not reported as errors.
	InsertIfAbsent(ctx context.Context, w *models.HarvestWeek) (bool, error)

	// ListBySeason returns the season's ledger ordered by calendar week.
	ListBySeason(ctx context.Context, seasonID string) ([]models.HarvestWeek, error)
}

type harvestWeekRepository struct {
	q database.Querier
}

func (r *harvestWeekRepository) InsertIfAbsent(ctx context.Context, w *models.HarvestWeek) (bool, error) {
	if w.ID == "" {
		w.ID = NewID()
	}

	query := `
		INSERT INTO semanas_colheita (id, safra_id, semana_ano, semana_colheita)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (safra_id, semana_ano) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, query, w.ID, w.SafraID, w.SemanaAno, w.SemanaColheita)
	if err != nil {
		return false, fmt.Errorf("failed to insert week %d of season %s: %w", w.SemanaAno, w.SafraID, classify(err))
	}
	return tag.RowsAffected() > 0, nil
}

func (r *harvestWeekRepository) ListBySeason(ctx context.Context, seasonID string) ([]models.HarvestWeek, error) {
	query := `
		SELECT id, safra_id, semana_ano, semana_colheita
		FROM semanas_colheita
		WHERE safra_id = $1
		ORDER BY semana_ano
	`
	rows, err := r.q.Query(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list weeks of season %s: %w", seasonID, err)
	}
	defer rows.Close()

	weeks := []models.HarvestWeek{}
	for rows.Next() {
		var w models.HarvestWeek
		if err := rows.Scan(&w.ID, &w.SafraID, &w.SemanaAno, &w.SemanaColheita); err != nil {
			return nil, fmt.Errorf("failed to scan week row: %w", err)
		}
		weeks = append(weeks, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating week rows: %w", err)
	}
	return weeks, nil
}
