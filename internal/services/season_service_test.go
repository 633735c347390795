package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/pomar/internal/models"
)

func TestSeasonService_CRUD(t *testing.T) {
	f := newFixture()
	season := f.season(t, " 2025 ", nil)
	assert.Equal(t, "2025", season.Nome)

	season.DataInicialColheita = ptr(day(2025, time.March, 3))
	updated, err := f.seasons.Update(f.ctx, &season)
	require.NoError(t, err)
	require.NotNil(t, updated.DataInicialColheita)
	assert.Equal(t, day(2025, time.March, 3), *updated.DataInicialColheita)

	list, err := f.seasons.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.seasons.Delete(f.ctx, season.ID))
	_, err = f.seasons.Get(f.ctx, season.ID)
	assert.ErrorIs(t, err, ErrSeasonNotFound)
}

func TestSeasonService_Validation(t *testing.T) {
	f := newFixture()
	assert.ErrorIs(t, f.seasons.Create(f.ctx, &models.Season{}), ErrInvalidSeason)

	_, err := f.seasons.Update(f.ctx, &models.Season{ID: "missing", Nome: "x"})
	assert.ErrorIs(t, err, ErrSeasonNotFound)
}

func TestSeasonService_RejectsAnchorOutOfRange(t *testing.T) {
	f := newFixture()
	far := models.Millis(math.MaxInt64)
	assert.ErrorIs(t, f.seasons.Create(f.ctx, &models.Season{Nome: "2025", DataInicialColheita: &far}), ErrInvalidSeason)

	season := f.season(t, "2025", nil)
	season.DataInicialColheita = ptr(day(1850, time.June, 1))
	_, err := f.seasons.Update(f.ctx, &season)
	assert.ErrorIs(t, err, ErrInvalidSeason)

	list, err := f.seasons.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].DataInicialColheita)
}

func TestSeasonService_Active(t *testing.T) {
	f := newFixture()
	_, err := f.seasons.Active(f.ctx)
	assert.ErrorIs(t, err, ErrSeasonNotFound)

	inactive := models.Season{Nome: "2024"}
	require.NoError(t, f.seasons.Create(f.ctx, &inactive))
	active := f.season(t, "2025", nil)

	got, err := f.seasons.Active(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)
}

func TestSeasonService_DeleteInUse(t *testing.T) {
	f := newFixture()
	plot := f.plot(t, "A", models.Agronomics{Ativo: true})
	season := f.season(t, "2025", ptr(day(2025, time.March, 3)))
	_, err := f.loads.Register(f.ctx, LoadInput{Data: day(2025, time.March, 3), TalhaoID: plot.ID, SafraID: season.ID, QteCaixa: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, f.seasons.Delete(f.ctx, season.ID), ErrInUse)
	assert.ErrorIs(t, f.seasons.Delete(f.ctx, "missing"), ErrSeasonNotFound)
}
