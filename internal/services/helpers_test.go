package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/pomar/internal/harvest"
	"github.com/stwalsh4118/pomar/internal/logger"
	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/repository"
	"github.com/stwalsh4118/pomar/internal/repository/memstore"
)

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) models.Millis {
	return models.MillisFromTime(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

type fixture struct {
	store   *memstore.Store
	loads   LoadService
	overlay SeasonPlotService
	plots   PlotService
	seasons SeasonService
	ctx     context.Context
}

func newFixture() *fixture {
	store := memstore.New()
	log := logger.Nop()
	return &fixture{
		store:   store,
		loads:   NewLoadService(store, harvest.NewCalendar(time.UTC), log),
		overlay: NewSeasonPlotService(store, log),
		plots:   NewPlotService(store, log),
		seasons: NewSeasonService(store, log),
		ctx:     context.Background(),
	}
}

func (f *fixture) plot(t *testing.T, nome string, attrs models.Agronomics) models.Plot {
	t.Helper()
	p := models.Plot{Nome: nome, Agronomics: attrs}
	require.NoError(t, f.plots.Create(f.ctx, &p))
	return p
}

func (f *fixture) season(t *testing.T, nome string, anchor *models.Millis) models.Season {
	t.Helper()
	s := models.Season{Nome: nome, IsActive: true, DataInicialColheita: anchor}
	require.NoError(t, f.seasons.Create(f.ctx, &s))
	return s
}

func (f *fixture) seasonLoads(t *testing.T, seasonID string) []models.Load {
	t.Helper()
	loads, err := f.loads.List(f.ctx, repository.LoadFilter{SafraID: seasonID})
	require.NoError(t, err)
	return loads
}
