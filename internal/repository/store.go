package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/stwalsh4118/pomar/internal/database"
)

// Store groups the repositories that share one connection or transaction.
type Store interface {
	Plots() PlotRepository
	Seasons() SeasonRepository
	SeasonPlots() SeasonPlotRepository
	HarvestWeeks() HarvestWeekRepository
	Loads() LoadRepository
	Drivers() DriverRepository
	Forecasts() ForecastRepository

	// WithTx runs fn with a Store bound to a single transaction. Calling
	// WithTx on a transactional Store reuses the open transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// NewID returns a fresh opaque row id.
func NewID() string {
	return uuid.NewString()
}

// pgStore is the PostgreSQL implementation of Store.
type pgStore struct {
	db *database.Database
	q  database.Querier
	tx bool
}

// NewStore creates a Store backed by the connection pool.
func NewStore(db *database.Database) Store {
	return &pgStore{db: db, q: db.Pool}
}

func (s *pgStore) Plots() PlotRepository               { return &plotRepository{q: s.q} }
func (s *pgStore) Seasons() SeasonRepository           { return &seasonRepository{q: s.q} }
func (s *pgStore) SeasonPlots() SeasonPlotRepository   { return &seasonPlotRepository{q: s.q} }
func (s *pgStore) HarvestWeeks() HarvestWeekRepository { return &harvestWeekRepository{q: s.q} }
func (s *pgStore) Loads() LoadRepository               { return &loadRepository{q: s.q} }
func (s *pgStore) Drivers() DriverRepository           { return &driverRepository{q: s.q} }
func (s *pgStore) Forecasts() ForecastRepository       { return &forecastRepository{q: s.q} }

func (s *pgStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.tx {
		return fn(s)
	}
	return s.db.WithTx(ctx, func(q database.Querier) error {
		return fn(&pgStore{db: s.db, q: q, tx: true})
	})
}
