package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/pomar/internal/models"
)

func loadIDs(loads []models.Load) []string {
	ids := make([]string, 0, len(loads))
	for _, l := range loads {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestLoadRepository_ListOrdersByDataThenSeq(t *testing.T) {
	db := setupTestDatabase(t)

	inRollbackTx(t, db, func(ctx context.Context, tx Store) {
		season := seedSeason(t, ctx, tx, "order")
		plot := seedPlot(t, ctx, tx, "a")

		late := seedLoad(t, ctx, tx, plot, season, day(2025, time.March, 10), 50)
		early1 := seedLoad(t, ctx, tx, plot, season, day(2025, time.March, 3), 10)
		early2 := seedLoad(t, ctx, tx, plot, season, day(2025, time.March, 3), 20)
		assert.Less(t, early1.Seq, early2.Seq)

		loads, err := tx.Loads().List(ctx, LoadFilter{SafraID: season.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{early1.ID, early2.ID, late.ID}, loadIDs(loads))
	})
}

func TestLoadRepository_ListFilters(t *testing.T) {
	db := setupTestDatabase(t)

	inRollbackTx(t, db, func(ctx context.Context, tx Store) {
		s1 := seedSeason(t, ctx, tx, "s1")
		s2 := seedSeason(t, ctx, tx, "s2")
		p1 := seedPlot(t, ctx, tx, "p1")
		p2 := seedPlot(t, ctx, tx, "p2")

		a := seedLoad(t, ctx, tx, p1, s1, day(2025, time.March, 3), 1)
		b := seedLoad(t, ctx, tx, p2, s1, day(2025, time.March, 4), 2)
		c := seedLoad(t, ctx, tx, p1, s2, day(2025, time.March, 5), 3)

		loads, err := tx.Loads().List(ctx, LoadFilter{SafraID: s1.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID, b.ID}, loadIDs(loads))

		loads, err = tx.Loads().List(ctx, LoadFilter{SafraID: s1.ID, TalhaoID: p1.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID}, loadIDs(loads))

		loads, err = tx.Loads().List(ctx, LoadFilter{TalhaoID: p1.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID, c.ID}, loadIDs(loads))
	})
}

func TestLoadRepository_UpdateKeepsSeq(t *testing.T) {
	db := setupTestDatabase(t)

	inRollbackTx(t, db, func(ctx context.Context, tx Store) {
		season := seedSeason(t, ctx, tx, "update")
		plot := seedPlot(t, ctx, tx, "a")
		l := seedLoad(t, ctx, tx, plot, season, day(2025, time.March, 3), 10)
		seq := l.Seq

		l.QteCaixa = 99
		l.Motorista = ptr("ANA")
		l.SemanaColheita = ptr(1)
		updated, err := tx.Loads().Update(ctx, l)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, seq, updated.Seq)
		assert.Equal(t, float64(99), updated.QteCaixa)
		assert.Equal(t, "ANA", *updated.Motorista)

		require.NoError(t, tx.Loads().SetRunningTotal(ctx, l.ID, 123))
		found, err := tx.Loads().FindByID(ctx, l.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, float64(123), found.TotalAcumulado)
		assert.Equal(t, day(2025, time.March, 3), found.Data)

		gone, err := tx.Loads().Update(ctx, &models.Load{ID: NewID(), TalhaoID: plot.ID, SafraID: season.ID})
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}

func TestLoadRepository_SumByPlotAndDelete(t *testing.T) {
	db := setupTestDatabase(t)

	inRollbackTx(t, db, func(ctx context.Context, tx Store) {
		season := seedSeason(t, ctx, tx, "sum")
		p1 := seedPlot(t, ctx, tx, "p1")
		p2 := seedPlot(t, ctx, tx, "p2")
		seedLoad(t, ctx, tx, p1, season, day(2025, time.March, 3), 10)
		seedLoad(t, ctx, tx, p1, season, day(2025, time.March, 4), 15.5)
		l := seedLoad(t, ctx, tx, p2, season, day(2025, time.March, 4), 7)

		sums, err := tx.Loads().SumByPlot(ctx, season.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{p1.ID: 25.5, p2.ID: 7}, sums)

		deleted, err := tx.Loads().Delete(ctx, l.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = tx.Loads().Delete(ctx, l.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestLoadRepository_UnknownSeasonIsForeignKeyViolation(t *testing.T) {
	db := setupTestDatabase(t)

	inRollbackTx(t, db, func(ctx context.Context, tx Store) {
		plot := seedPlot(t, ctx, tx, "a")

		err := tx.Loads().Create(ctx, &models.Load{TalhaoID: plot.ID, SafraID: NewID(), Data: day(2025, time.March, 3)})
		assert.ErrorIs(t, err, ErrForeignKeyViolation)
	})
}
