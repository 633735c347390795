package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/pomar/internal/database"
	"github.com/stwalsh4118/pomar/internal/models"
)

// LoadFilter narrows List. Empty fields match everything.
type LoadFilter struct {
	SafraID  string
	TalhaoID string
}

// LoadRepository defines data access for harvest loads (carregamentos).
type LoadRepository interface {
	// Create inserts l and fills Seq, CreatedAt and UpdatedAt.
	Create(ctx context.Context, l *models.Load) error

	// FindByID returns nil, nil if no load has the id.
	FindByID(ctx context.Context, id string) (*models.Load, error)

	// List returns matching loads in chronological order (data, then insertion).
	List(ctx context.Context, filter LoadFilter) ([]models.Load, error)

	// Update replaces every field except Seq and CreatedAt.
	// Returns nil, nil if the load is gone.
	Update(ctx context.Context, l *models.Load) (*models.Load, error)

	Delete(ctx context.Context, id string) (bool, error)

	// SetRunningTotal overwrites the stored season-to-date total of one load.
	SetRunningTotal(ctx context.Context, id string, total float64) error

	// SumByPlot returns the season's box count per plot id.
	SumByPlot(ctx context.Context, seasonID string) (map[string]float64, error)
}

type loadRepository struct {
	q database.Querier
}

const loadColumns = `
	id, seq, data, talhao_id, safra_id, qtde_plantas, variedade, motorista, placa,
	qte_caixa, semana, semana_colheita, total_acumulado, created_at, updated_at`

func scanLoad(row scanner, l *models.Load) error {
	var data int64
	err := row.Scan(
		&l.ID,
		&l.Seq,
		&data,
		&l.TalhaoID,
		&l.SafraID,
		&l.QtdePlantas,
		&l.Variedade,
		&l.Motorista,
		&l.Placa,
		&l.QteCaixa,
		&l.Semana,
		&l.SemanaColheita,
		&l.TotalAcumulado,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	l.Data = models.Millis(data)
	return nil
}

func (r *loadRepository) Create(ctx context.Context, l *models.Load) error {
	if l.ID == "" {
		l.ID = NewID()
	}

	query := `
		INSERT INTO carregamentos (
			id, data, talhao_id, safra_id, qtde_plantas, variedade, motorista, placa,
			qte_caixa, semana, semana_colheita, total_acumulado
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING seq, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		l.ID, int64(l.Data), l.TalhaoID, l.SafraID, l.QtdePlantas, l.Variedade, l.Motorista, l.Placa,
		l.QteCaixa, l.Semana, l.SemanaColheita, l.TotalAcumulado,
	).Scan(&l.Seq, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert load for plot %s: %w", l.TalhaoID, classify(err))
	}
	return nil
}

func (r *loadRepository) FindByID(ctx context.Context, id string) (*models.Load, error) {
	var l models.Load
	if err := scanLoad(r.q.QueryRow(ctx, `SELECT `+loadColumns+` FROM carregamentos WHERE id = $1`, id), &l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query load %s: %w", id, err)
	}
	return &l, nil
}

func (r *loadRepository) List(ctx context.Context, filter LoadFilter) ([]models.Load, error) {
	query := `SELECT ` + loadColumns + `
		FROM carregamentos
		WHERE ($1 = '' OR safra_id = $1) AND ($2 = '' OR talhao_id = $2)
		ORDER BY data, seq`

	rows, err := r.q.Query(ctx, query, filter.SafraID, filter.TalhaoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loads: %w", err)
	}
	defer rows.Close()

	loads := []models.Load{}
	for rows.Next() {
		var l models.Load
		if err := scanLoad(rows, &l); err != nil {
			return nil, fmt.Errorf("failed to scan load row: %w", err)
		}
		loads = append(loads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating load rows: %w", err)
	}
	return loads, nil
}

func (r *loadRepository) Update(ctx context.Context, l *models.Load) (*models.Load, error) {
	query := `
		UPDATE carregamentos SET
			data = $2, talhao_id = $3, safra_id = $4, qtde_plantas = $5, variedade = $6,
			motorista = $7, placa = $8, qte_caixa = $9, semana = $10, semana_colheita = $11,
			total_acumulado = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + loadColumns

	var out models.Load
	err := scanLoad(r.q.QueryRow(ctx, query,
		l.ID, int64(l.Data), l.TalhaoID, l.SafraID, l.QtdePlantas, l.Variedade,
		l.Motorista, l.Placa, l.QteCaixa, l.Semana, l.SemanaColheita, l.TotalAcumulado,
	), &out)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update load %s: %w", l.ID, classify(err))
	}
	return &out, nil
}

func (r *loadRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM carregamentos WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete load %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *loadRepository) SetRunningTotal(ctx context.Context, id string, total float64) error {
	if _, err := r.q.Exec(ctx, `UPDATE carregamentos SET total_acumulado = $2 WHERE id = $1`, id, total); err != nil {
		return fmt.Errorf("failed to set running total of load %s: %w", id, err)
	}
	return nil
}

func (r *loadRepository) SumByPlot(ctx context.Context, seasonID string) (map[string]float64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT talhao_id, COALESCE(SUM(qte_caixa), 0)
		FROM carregamentos
		WHERE safra_id = $1
		GROUP BY talhao_id
	`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum loads of season %s: %w", seasonID, err)
	}
	defer rows.Close()

	sums := make(map[string]float64)
	for rows.Next() {
		var plotID string
		var total float64
		if err := rows.Scan(&plotID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan load sum row: %w", err)
		}
		sums[plotID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating load sum rows: %w", err)
	}
	return sums, nil
}
