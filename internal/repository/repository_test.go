package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/pomar/internal/config"
	"github.com/stwalsh4118/pomar/internal/database"
	"github.com/stwalsh4118/pomar/internal/models"
)

// getTestConfig returns database configuration for integration tests.
func getTestConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "pomar_test"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		SSLMode:  "disable",
		PoolMin:  1,
		PoolMax:  5,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupTestDatabase connects to the test database and applies the schema,
// skipping the test in short mode or when no database is reachable.
func setupTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := database.NewPostgresPool(ctx, getTestConfig())
	if err != nil {
		t.Skipf("Skipping integration test, database unavailable: %v", err)
	}
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))
	return db
}

var errRollback = errors.New("rollback")

// inRollbackTx runs fn in a transaction that is always rolled back, so
// tests leave no rows behind.
func inRollbackTx(t *testing.T, db *database.Database, fn func(ctx context.Context, tx Store)) {
	t.Helper()
	ctx := context.Background()
	err := NewStore(db).WithTx(ctx, func(tx Store) error {
		fn(ctx, tx)
		return errRollback
	})
	require.ErrorIs(t, err, errRollback)
}

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) models.Millis {
	return models.MillisFromTime(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func seedPlot(t *testing.T, ctx context.Context, tx Store, nome string) *models.Plot {
	t.Helper()
	p := &models.Plot{
		Nome:       nome,
		Codigo:     ptr("T-" + NewID()),
		Agronomics: models.Agronomics{QtdePlantas: ptr(500), Variedade: ptr("Pera"), Ativo: true},
	}
	require.NoError(t, tx.Plots().Create(ctx, p))
	return p
}

func seedSeason(t *testing.T, ctx context.Context, tx Store, nome string) *models.Season {
	t.Helper()
	s := &models.Season{Nome: nome, DataInicialColheita: ptr(day(2025, time.March, 3))}
	require.NoError(t, tx.Seasons().Create(ctx, s))
	return s
}

func seedLoad(t *testing.T, ctx context.Context, tx Store, plot *models.Plot, season *models.Season, data models.Millis, boxes float64) *models.Load {
	t.Helper()
	l := &models.Load{TalhaoID: plot.ID, SafraID: season.ID, Data: data, QteCaixa: boxes, Semana: 10}
	require.NoError(t, tx.Loads().Create(ctx, l))
	return l
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantMsg string
	}{
		{
			name:    "unique violation",
			err:     &pgconn.PgError{Code: "23505", ConstraintName: "talhoes_codigo_key"},
			wantIs:  ErrUniqueViolation,
			wantMsg: "talhoes_codigo_key",
		},
		{
			name:    "foreign key violation",
			err:     fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23503", ConstraintName: "carregamentos_safra_id_fkey"}),
			wantIs:  ErrForeignKeyViolation,
			wantMsg: "carregamentos_safra_id_fkey",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.ErrorIs(t, got, tt.wantIs)
			assert.Contains(t, got.Error(), tt.wantMsg)

			var pgErr *pgconn.PgError
			assert.True(t, errors.As(got, &pgErr), "original error must stay in the chain")
		})
	}
}

func TestClassify_PassesOtherErrorsThrough(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Same(t, plain, classify(plain))

	other := &pgconn.PgError{Code: "42P01"}
	got := classify(other)
	assert.NotErrorIs(t, got, ErrUniqueViolation)
	assert.NotErrorIs(t, got, ErrForeignKeyViolation)
}
