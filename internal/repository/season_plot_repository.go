package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/pomar/internal/database"
	"github.com/stwalsh4118/pomar/internal/models"
)

// SeasonPlotRepository defines data access for season overlays (talhao_safra).
type SeasonPlotRepository interface {
	// Create returns ErrUniqueViolation if the (plot, season) pair exists.
	Create(ctx context.Context, sp *models.SeasonPlot) error

	FindByID(ctx context.Context, id string) (*models.SeasonPlot, error)
	FindByPlotAndSeason(ctx context.Context, plotID, seasonID string) (*models.SeasonPlot, error)

	// ListBySeason returns the season's overlays. With activeOnly, rows whose
	// ativo flag is false are skipped.
	ListBySeason(ctx context.Context, seasonID string, activeOnly bool) ([]models.SeasonPlot, error)
	CountBySeason(ctx context.Context, seasonID string) (int, error)

	// ListViews left-joins every plot with its overlay for the season,
	// ordered by plot name. Overlay is nil for plots not in the season.
	ListViews(ctx context.Context, seasonID string) ([]models.SeasonPlotView, error)

	// Update replaces the agronomic fields. Returns nil, nil if the row is gone.
	Update(ctx context.Context, sp *models.SeasonPlot) (*models.SeasonPlot, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type seasonPlotRepository struct {
	q database.Querier
}

const seasonPlotColumns = `
	ts.id, ts.talhao_id, ts.safra_id, ts.area, ts.variedade, ts.qtde_plantas,
	ts.porta_enxerto, ts.data_plantio, ts.idade, ts.falhas, ts.espacamento,
	ts.observacoes, ts.ativo, ts.created_at, ts.updated_at`

func scanSeasonPlot(row scanner, sp *models.SeasonPlot) error {
	return row.Scan(
		&sp.ID,
		&sp.TalhaoID,
		&sp.SafraID,
		&sp.Area,
		&sp.Variedade,
		&sp.QtdePlantas,
		&sp.PortaEnxerto,
		&sp.DataPlantio,
		&sp.Idade,
		&sp.Falhas,
		&sp.Espacamento,
		&sp.Observacoes,
		&sp.Ativo,
		&sp.CreatedAt,
		&sp.UpdatedAt,
	)
}

func (r *seasonPlotRepository) Create(ctx context.Context, sp *models.SeasonPlot) error {
	if sp.ID == "" {
		sp.ID = NewID()
	}

	query := `
		INSERT INTO talhao_safra (
			id, talhao_id, safra_id, area, variedade, qtde_plantas, porta_enxerto,
			data_plantio, idade, falhas, espacamento, observacoes, ativo
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		sp.ID, sp.TalhaoID, sp.SafraID, sp.Area, sp.Variedade, sp.QtdePlantas, sp.PortaEnxerto,
		sp.DataPlantio, sp.Idade, sp.Falhas, sp.Espacamento, sp.Observacoes, sp.Ativo,
	).Scan(&sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert overlay for plot %s in season %s: %w", sp.TalhaoID, sp.SafraID, classify(err))
	}
	return nil
}

func (r *seasonPlotRepository) FindByID(ctx context.Context, id string) (*models.SeasonPlot, error) {
	return r.findOne(ctx, `SELECT `+seasonPlotColumns+` FROM talhao_safra ts WHERE ts.id = $1`, id)
}

func (r *seasonPlotRepository) FindByPlotAndSeason(ctx context.Context, plotID, seasonID string) (*models.SeasonPlot, error) {
	return r.findOne(ctx, `SELECT `+seasonPlotColumns+` FROM talhao_safra ts WHERE ts.talhao_id = $1 AND ts.safra_id = $2`, plotID, seasonID)
}

func (r *seasonPlotRepository) findOne(ctx context.Context, query string, args ...any) (*models.SeasonPlot, error) {
	var sp models.SeasonPlot
	if err := scanSeasonPlot(r.q.QueryRow(ctx, query, args...), &sp); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query overlay: %w", err)
	}
	return &sp, nil
}

func (r *seasonPlotRepository) ListBySeason(ctx context.Context, seasonID string, activeOnly bool) ([]models.SeasonPlot, error) {
	query := `SELECT ` + seasonPlotColumns + `
		FROM talhao_safra ts
		WHERE ts.safra_id = $1 AND ($2 = FALSE OR ts.ativo)
		ORDER BY ts.created_at, ts.id`

	rows, err := r.q.Query(ctx, query, seasonID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list overlays of season %s: %w", seasonID, err)
	}
	defer rows.Close()

	out := []models.SeasonPlot{}
	for rows.Next() {
		var sp models.SeasonPlot
		if err := scanSeasonPlot(rows, &sp); err != nil {
			return nil, fmt.Errorf("failed to scan overlay row: %w", err)
		}
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overlay rows: %w", err)
	}
	return out, nil
}

func (r *seasonPlotRepository) CountBySeason(ctx context.Context, seasonID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM talhao_safra WHERE safra_id = $1`, seasonID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count overlays of season %s: %w", seasonID, err)
	}
	return n, nil
}

func (r *seasonPlotRepository) ListViews(ctx context.Context, seasonID string) ([]models.SeasonPlotView, error) {
	query := `
		SELECT
			t.id, t.codigo, t.nome, t.tipo, t.area, t.variedade, t.porta_enxerto, t.data_plantio,
			t.idade, t.falhas, t.espacamento, t.cor, t.qtde_plantas, t.ativo, t.observacoes, t.kml_id,
			t.created_at, t.updated_at,
			ts.id, ts.area, ts.variedade, ts.qtde_plantas, ts.porta_enxerto, ts.data_plantio,
			ts.idade, ts.falhas, ts.espacamento, ts.observacoes, ts.ativo, ts.created_at, ts.updated_at
		FROM talhoes t
		LEFT JOIN talhao_safra ts ON ts.talhao_id = t.id AND ts.safra_id = $1
		ORDER BY t.nome, t.id
	`

	rows, err := r.q.Query(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plots for season %s: %w", seasonID, err)
	}
	defer rows.Close()

	views := []models.SeasonPlotView{}
	for rows.Next() {
		var (
			p         models.Plot
			o         models.SeasonPlot
			overlayID *string
			ativo     *bool
			created   *time.Time
			updated   *time.Time
		)
		err := rows.Scan(
			&p.ID, &p.Codigo, &p.Nome, &p.Tipo, &p.Area, &p.Variedade, &p.PortaEnxerto, &p.DataPlantio,
			&p.Idade, &p.Falhas, &p.Espacamento, &p.Cor, &p.QtdePlantas, &p.Ativo, &p.Observacoes, &p.KmlID,
			&p.CreatedAt, &p.UpdatedAt,
			&overlayID, &o.Area, &o.Variedade, &o.QtdePlantas, &o.PortaEnxerto, &o.DataPlantio,
			&o.Idade, &o.Falhas, &o.Espacamento, &o.Observacoes, &ativo, &created, &updated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan season plot row: %w", err)
		}

		view := models.SeasonPlotView{Plot: p}
		if overlayID != nil {
			o.ID = *overlayID
			o.TalhaoID = p.ID
			o.SafraID = seasonID
			o.Ativo = ativo != nil && *ativo
			if created != nil {
				o.CreatedAt = *created
			}
			if updated != nil {
				o.UpdatedAt = *updated
			}
			view.Overlay = &o
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating season plot rows: %w", err)
	}
	return views, nil
}

func (r *seasonPlotRepository) Update(ctx context.Context, sp *models.SeasonPlot) (*models.SeasonPlot, error) {
	query := `
		UPDATE talhao_safra ts SET
			area = $2, variedade = $3, qtde_plantas = $4, porta_enxerto = $5,
			data_plantio = $6, idade = $7, falhas = $8, espacamento = $9,
			observacoes = $10, ativo = $11, updated_at = NOW()
		WHERE ts.id = $1
		RETURNING ` + seasonPlotColumns

	var out models.SeasonPlot
	err := scanSeasonPlot(r.q.QueryRow(ctx, query,
		sp.ID, sp.Area, sp.Variedade, sp.QtdePlantas, sp.PortaEnxerto,
		sp.DataPlantio, sp.Idade, sp.Falhas, sp.Espacamento, sp.Observacoes, sp.Ativo,
	), &out)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update overlay %s: %w", sp.ID, classify(err))
	}
	return &out, nil
}

func (r *seasonPlotRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM talhao_safra WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete overlay %s: %w", id, classify(err))
	}
	return tag.RowsAffected() > 0, nil
}
