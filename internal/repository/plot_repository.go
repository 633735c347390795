package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/pomar/internal/database"
	"github.com/stwalsh4118/pomar/internal/models"
)

// PlotRepository defines data access for base plots (talhoes).
type PlotRepository interface {
	// Create inserts p and fills CreatedAt/UpdatedAt.
	// Returns ErrUniqueViolation if p.Codigo is already taken.
	Create(ctx context.Context, p *models.Plot) error

	// FindByID returns nil, nil if no plot has the id.
	FindByID(ctx context.Context, id string) (*models.Plot, error)

	// List returns plots ordered by name. With activeOnly, plots whose
	// ativo flag is false are skipped.
	List(ctx context.Context, activeOnly bool) ([]models.Plot, error)

	// Update replaces every editable field. Returns nil, nil if the plot is gone.
	Update(ctx context.Context, p *models.Plot) (*models.Plot, error)

	// Delete hard-deletes the plot and reports whether a row was removed.
	// Returns ErrForeignKeyViolation while loads or overlays still reference it.
	Delete(ctx context.Context, id string) (bool, error)
}

type plotRepository struct {
	q database.Querier
}

const plotColumns = `
	id, codigo, nome, tipo, area, variedade, porta_enxerto, data_plantio,
	idade, falhas, espacamento, cor, qtde_plantas, ativo, observacoes, kml_id,
	created_at, updated_at`

func scanPlot(row scanner, p *models.Plot) error {
	return row.Scan(
		&p.ID,
		&p.Codigo,
		&p.Nome,
		&p.Tipo,
		&p.Area,
		&p.Variedade,
		&p.PortaEnxerto,
		&p.DataPlantio,
		&p.Idade,
		&p.Falhas,
		&p.Espacamento,
		&p.Cor,
		&p.QtdePlantas,
		&p.Ativo,
		&p.Observacoes,
		&p.KmlID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *plotRepository) Create(ctx context.Context, p *models.Plot) error {
	if p.ID == "" {
		p.ID = NewID()
	}

	query := `
		INSERT INTO talhoes (
			id, codigo, nome, tipo, area, variedade, porta_enxerto, data_plantio,
			idade, falhas, espacamento, cor, qtde_plantas, ativo, observacoes, kml_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		p.ID, p.Codigo, p.Nome, p.Tipo, p.Area, p.Variedade, p.PortaEnxerto, p.DataPlantio,
		p.Idade, p.Falhas, p.Espacamento, p.Cor, p.QtdePlantas, p.Ativo, p.Observacoes, p.KmlID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert plot %q: %w", p.Nome, classify(err))
	}
	return nil
}

func (r *plotRepository) FindByID(ctx context.Context, id string) (*models.Plot, error) {
	query := `SELECT ` + plotColumns + ` FROM talhoes WHERE id = $1`

	var p models.Plot
	if err := scanPlot(r.q.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query plot %s: %w", id, err)
	}
	return &p, nil
}

func (r *plotRepository) List(ctx context.Context, activeOnly bool) ([]models.Plot, error) {
	query := `SELECT ` + plotColumns + ` FROM talhoes WHERE ($1 = FALSE OR ativo) ORDER BY nome, id`

	rows, err := r.q.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list plots: %w", err)
	}
	defer rows.Close()

	plots := []models.Plot{}
	for rows.Next() {
		var p models.Plot
		if err := scanPlot(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan plot row: %w", err)
		}
		plots = append(plots, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plot rows: %w", err)
	}
	return plots, nil
}

func (r *plotRepository) Update(ctx context.Context, p *models.Plot) (*models.Plot, error) {
	query := `
		UPDATE talhoes SET
			codigo = $2, nome = $3, tipo = $4, area = $5, variedade = $6,
			porta_enxerto = $7, data_plantio = $8, idade = $9, falhas = $10,
			espacamento = $11, cor = $12, qtde_plantas = $13, ativo = $14,
			observacoes = $15, kml_id = $16, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + plotColumns

	var out models.Plot
	err := scanPlot(r.q.QueryRow(ctx, query,
		p.ID, p.Codigo, p.Nome, p.Tipo, p.Area, p.Variedade, p.PortaEnxerto, p.DataPlantio,
		p.Idade, p.Falhas, p.Espacamento, p.Cor, p.QtdePlantas, p.Ativo, p.Observacoes, p.KmlID,
	), &out)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update plot %s: %w", p.ID, classify(err))
	}
	return &out, nil
}

func (r *plotRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM talhoes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete plot %s: %w", id, classify(err))
	}
	return tag.RowsAffected() > 0, nil
}
