package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/pomar/internal/models"
)

func TestPlotRepository_CreateAndFind(t *testing.T) {
	db := setupTestDatabase(t)

	inRollbackTx(t, db, func(ctx context.Context, tx Store) {
		plot := seedPlot(t, ctx, tx, "Talhão 1")
		assert.NotEmpty(t, plot.ID)
		assert.False(t, plot.CreatedAt.IsZero())

		found, err := tx.Plots().FindByID(ctx, plot.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Talhão 1", found.Nome)
		assert.Equal(t, 500, *found.QtdePlantas)
		assert.Nil(t, found.Area)

		missing, err := tx.Plots().FindByID(ctx, NewID())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestPlotRepository_ListActiveOnly(t *testing.T) {
	db := setupTestDatabase(t)

	inRollbackTx(t, db, func(ctx context.Context, tx Store) {
		active := seedPlot(t, ctx, tx, "ativo")
		inactive := &models.Plot{Nome: "inativo", Agronomics: models.Agronomics{Ativo: false}}
		require.NoError(t, tx.Plots().Create(ctx, inactive))

		plots, err := tx.Plots().List(ctx, true)
		require.NoError(t, err)
		ids := map[string]bool{}
		for _, p := range plots {
			ids[p.ID] = true
		}
		assert.True(t, ids[active.ID])
		assert.False(t, ids[inactive.ID])
	})
}

func TestPlotRepository_DuplicateCodigoIsUniqueViolation(t *testing.T) {
	db := setupTestDatabase(t)

	inRollbackTx(t, db, func(ctx context.Context, tx Store) {
		plot := seedPlot(t, ctx, tx, "a")

		err := tx.Plots().Create(ctx, &models.Plot{Nome: "b", Codigo: plot.Codigo})
		assert.ErrorIs(t, err, ErrUniqueViolation)
	})
}

func TestPlotRepository_NullCodigoIsNotUnique(t *testing.T) {
	db := setupTestDatabase(t)

	inRollbackTx(t, db, func(ctx context.Context, tx Store) {
		require.NoError(t, tx.Plots().Create(ctx, &models.Plot{Nome: "a"}))
		require.NoError(t, tx.Plots().Create(ctx, &models.Plot{Nome: "b"}))
	})
}

func TestPlotRepository_DeleteWithLoadsIsForeignKeyViolation(t *testing.T) {
	db := setupTestDatabase(t)

	inRollbackTx(t, db, func(ctx context.Context, tx Store) {
		plot := seedPlot(t, ctx, tx, "a")
		season := seedSeason(t, ctx, tx, "s")
		seedLoad(t, ctx, tx, plot, season, day(2025, time.March, 3), 1)

		_, err := tx.Plots().Delete(ctx, plot.ID)
		assert.ErrorIs(t, err, ErrForeignKeyViolation)
	})
}
