package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/pomar/internal/database"
	"github.com/stwalsh4118/pomar/internal/models"
)

// ForecastRepository defines data access for yield forecasts (previsoes).
type ForecastRepository interface {
	// Upsert updates the (plot, season) forecast in place or creates it.
	// f.ID is set to the id of the stored row.
	Upsert(ctx context.Context, f *models.Forecast) error

	FindByPlotAndSeason(ctx context.Context, plotID, seasonID string) (*models.Forecast, error)
	ListBySeason(ctx context.Context, seasonID string) ([]models.Forecast, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type forecastRepository struct {
	q database.Querier
}

const forecastColumns = `
	id, talhao_id, safra_id, talhao_nome, variedade, data_plantio, idade,
	qtde_plantas, caixas_por_planta, updated_at`

func scanForecast(row scanner, f *models.Forecast) error {
	return row.Scan(
		&f.ID,
		&f.TalhaoID,
		&f.SafraID,
		&f.TalhaoNome,
		&f.Variedade,
		&f.DataPlantio,
		&f.Idade,
		&f.QtdePlantas,
		&f.CaixasPorPlanta,
		&f.UpdatedAt,
	)
}

func (r *forecastRepository) Upsert(ctx context.Context, f *models.Forecast) error {
	if f.ID == "" {
		f.ID = NewID()
	}

	query := `
		INSERT INTO previsoes (
			id, talhao_id, safra_id, talhao_nome, variedade, data_plantio, idade,
			qtde_plantas, caixas_por_planta
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (talhao_id, safra_id) DO UPDATE SET
			talhao_nome = EXCLUDED.talhao_nome,
			variedade = EXCLUDED.variedade,
			data_plantio = EXCLUDED.data_plantio,
			idade = EXCLUDED.idade,
			qtde_plantas = EXCLUDED.qtde_plantas,
			caixas_por_planta = EXCLUDED.caixas_por_planta,
			updated_at = NOW()
		RETURNING ` + forecastColumns

	err := scanForecast(r.q.QueryRow(ctx, query,
		f.ID, f.TalhaoID, f.SafraID, f.TalhaoNome, f.Variedade, f.DataPlantio, f.Idade,
		f.QtdePlantas, f.CaixasPorPlanta,
	), f)
	if err != nil {
		return fmt.Errorf("failed to upsert forecast for plot %s: %w", f.TalhaoID, classify(err))
	}
	return nil
}

func (r *forecastRepository) FindByPlotAndSeason(ctx context.Context, plotID, seasonID string) (*models.Forecast, error) {
	var f models.Forecast
	query := `SELECT ` + forecastColumns + ` FROM previsoes WHERE talhao_id = $1 AND safra_id = $2`
	if err := scanForecast(r.q.QueryRow(ctx, query, plotID, seasonID), &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query forecast: %w", err)
	}
	return &f, nil
}

func (r *forecastRepository) ListBySeason(ctx context.Context, seasonID string) ([]models.Forecast, error) {
	rows, err := r.q.Query(ctx, `SELECT `+forecastColumns+` FROM previsoes WHERE safra_id = $1 ORDER BY talhao_nome, id`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list forecasts of season %s: %w", seasonID, err)
	}
	defer rows.Close()

	out := []models.Forecast{}
	for rows.Next() {
		var f models.Forecast
		if err := scanForecast(rows, &f); err != nil {
			return nil, fmt.Errorf("failed to scan forecast row: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating forecast rows: %w", err)
	}
	return out, nil
}

func (r *forecastRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM previsoes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete forecast %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
