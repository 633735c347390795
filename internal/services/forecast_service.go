package services

import (
	"context"
	"fmt"
	"math"

	"github.com/stwalsh4118/pomar/internal/logger"
	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/repository"
)

// ForecastReport is a forecast next to what the plot actually produced.
type ForecastReport struct {
	models.Forecast
	Realizado float64 `json:"realizado"`
	Previsto  float64 `json:"previsto"`
	// Razao is realizado/previsto, nil when nothing was predicted.
	Razao *float64 `json:"razao"`
}

// ForecastService manages yield forecasts (previsões).
type ForecastService interface {
	// Save creates or replaces the forecast of a plot in a season. Plot
	// attributes are copied from the season overlay, or the base plot.
	Save(ctx context.Context, plotID, seasonID string, boxesPerPlant float64) (*models.Forecast, error)

	// Report lists the season's forecasts with realized and predicted boxes.
	Report(ctx context.Context, seasonID string) ([]ForecastReport, error)
}

type forecastService struct {
	store repository.Store
	log   *logger.Logger
}

// NewForecastService creates a ForecastService.
func NewForecastService(store repository.Store, log *logger.Logger) ForecastService {
	return &forecastService{store: store, log: log}
}

func (s *forecastService) Save(ctx context.Context, plotID, seasonID string, boxesPerPlant float64) (*models.Forecast, error) {
	if math.IsNaN(boxesPerPlant) || math.IsInf(boxesPerPlant, 0) || boxesPerPlant < 0 {
		return nil, fmt.Errorf("%w: caixas_por_planta must be a non-negative number", ErrInvalidForecast)
	}

	plot, err := findPlot(ctx, s.store, plotID)
	if err != nil {
		return nil, err
	}
	if _, err := findSeason(ctx, s.store, seasonID); err != nil {
		return nil, err
	}
	attrs, err := effectiveAgronomics(ctx, s.store, plot, seasonID)
	if err != nil {
		return nil, err
	}

	f := &models.Forecast{
		TalhaoID:        plot.ID,
		SafraID:         seasonID,
		TalhaoNome:      plot.Nome,
		Variedade:       attrs.Variedade,
		DataPlantio:     attrs.DataPlantio,
		Idade:           attrs.Idade,
		QtdePlantas:     attrs.QtdePlantas,
		CaixasPorPlanta: boxesPerPlant,
	}
	if err := s.store.Forecasts().Upsert(ctx, f); err != nil {
		s.log.Error("Failed to save forecast", err, map[string]interface{}{
			"talhao_id": plotID,
			"safra_id":  seasonID,
		})
		return nil, fmt.Errorf("failed to save forecast: %w", err)
	}

	s.log.Info("Forecast saved", map[string]interface{}{
		"previsao_id":       f.ID,
		"talhao_id":         plotID,
		"safra_id":          seasonID,
		"caixas_por_planta": boxesPerPlant,
	})
	return f, nil
}

func (s *forecastService) Report(ctx context.Context, seasonID string) ([]ForecastReport, error) {
	if _, err := findSeason(ctx, s.store, seasonID); err != nil {
		return nil, err
	}

	forecasts, err := s.store.Forecasts().ListBySeason(ctx, seasonID)
	if err != nil {
		s.log.Error("Failed to list forecasts", err, map[string]interface{}{"safra_id": seasonID})
		return nil, fmt.Errorf("failed to list forecasts: %w", err)
	}
	realized, err := s.store.Loads().SumByPlot(ctx, seasonID)
	if err != nil {
		s.log.Error("Failed to sum season loads", err, map[string]interface{}{"safra_id": seasonID})
		return nil, fmt.Errorf("failed to sum season loads: %w", err)
	}

	reports := make([]ForecastReport, 0, len(forecasts))
	for _, f := range forecasts {
		r := ForecastReport{Forecast: f, Realizado: realized[f.TalhaoID]}
		if f.QtdePlantas != nil {
			r.Previsto = f.CaixasPorPlanta * float64(*f.QtdePlantas)
		}
		if r.Previsto > 0 {
			ratio := r.Realizado / r.Previsto
			r.Razao = &ratio
		}
		reports = append(reports, r)
	}
	return reports, nil
}
