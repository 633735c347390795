package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/pomar/internal/models"
)

func TestHarvestWeekRepository_InsertIfAbsent(t *testing.T) {
	db := setupTestDatabase(t)

	inRollbackTx(t, db, func(ctx context.Context, tx Store) {
		season := seedSeason(t, ctx, tx, "ledger")
		repo := tx.HarvestWeeks()

		inserted, err := repo.InsertIfAbsent(ctx, &models.HarvestWeek{SafraID: season.ID, SemanaAno: 11, SemanaColheita: 2})
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = repo.InsertIfAbsent(ctx, &models.HarvestWeek{SafraID: season.ID, SemanaAno: 10, SemanaColheita: 1})
		require.NoError(t, err)
		assert.True(t, inserted)

		// Same (season, week) again: nothing written, first value kept.
		inserted, err = repo.InsertIfAbsent(ctx, &models.HarvestWeek{SafraID: season.ID, SemanaAno: 10, SemanaColheita: 7})
		require.NoError(t, err)
		assert.False(t, inserted)

		weeks, err := repo.ListBySeason(ctx, season.ID)
		require.NoError(t, err)
		require.Len(t, weeks, 2)
		assert.Equal(t, 10, weeks[0].SemanaAno)
		assert.Equal(t, 1, weeks[0].SemanaColheita)
		assert.Equal(t, 11, weeks[1].SemanaAno)
	})
}

func TestHarvestWeekRepository_SameWeekInOtherSeason(t *testing.T) {
	db := setupTestDatabase(t)

	inRollbackTx(t, db, func(ctx context.Context, tx Store) {
		a := seedSeason(t, ctx, tx, "a")
		b := seedSeason(t, ctx, tx, "b")

		for _, s := range []*models.Season{a, b} {
			inserted, err := tx.HarvestWeeks().InsertIfAbsent(ctx, &models.HarvestWeek{SafraID: s.ID, SemanaAno: 10, SemanaColheita: 1})
			require.NoError(t, err)
			assert.True(t, inserted)
		}
	})
}

func TestDriverRepository_InsertIfAbsent(t *testing.T) {
	db := setupTestDatabase(t)

	inRollbackTx(t, db, func(ctx context.Context, tx Store) {
		name := "MOTORISTA " + NewID()

		inserted, err := tx.Drivers().InsertIfAbsent(ctx, &models.Driver{Nome: name})
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = tx.Drivers().InsertIfAbsent(ctx, &models.Driver{Nome: name})
		require.NoError(t, err)
		assert.False(t, inserted)

		found, err := tx.Drivers().FindByName(ctx, name)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, name, found.Nome)

		missing, err := tx.Drivers().FindByName(ctx, "NOBODY "+NewID())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}
