// Package memstore is an in-memory repository.Store with transactional
// rollback, used by service and handler tests in place of PostgreSQL.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/repository"
)

type state struct {
	plots     map[string]models.Plot
	seasons   map[string]models.Season
	overlays  map[string]models.SeasonPlot
	weeks     map[string]models.HarvestWeek
	loads     map[string]models.Load
	drivers   map[string]models.Driver
	forecasts map[string]models.Forecast
	seq       int64
}

func newState() *state {
	return &state{
		plots:     map[string]models.Plot{},
		seasons:   map[string]models.Season{},
		overlays:  map[string]models.SeasonPlot{},
		weeks:     map[string]models.HarvestWeek{},
		loads:     map[string]models.Load{},
		drivers:   map[string]models.Driver{},
		forecasts: map[string]models.Forecast{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.plots {
		v.Agronomics = v.Agronomics.Clone()
		c.plots[k] = v
	}
	for k, v := range s.seasons {
		c.seasons[k] = v
	}
	for k, v := range s.overlays {
		v.Agronomics = v.Agronomics.Clone()
		c.overlays[k] = v
	}
	for k, v := range s.weeks {
		c.weeks[k] = v
	}
	for k, v := range s.loads {
		c.loads[k] = v
	}
	for k, v := range s.drivers {
		c.drivers[k] = v
	}
	for k, v := range s.forecasts {
		c.forecasts[k] = v
	}
	c.seq = s.seq
	return c
}

// Store is a repository.Store kept in memory.
type Store struct {
	mu    *sync.Mutex
	txMu  *sync.Mutex
	data  **state
	fails map[string]error
	now   func() time.Time
	inTx  bool
}

var _ repository.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	st := newState()
	return &Store{
		mu:    &sync.Mutex{},
		txMu:  &sync.Mutex{},
		data:  &st,
		fails: map[string]error{},
		now:   monotonicClock(),
	}
}

// monotonicClock returns strictly increasing timestamps so that rows created
// back to back still order by created_at. Callers hold mu.
func monotonicClock() func() time.Time {
	var last time.Time
	return func() time.Time {
		t := time.Now().UTC()
		if !t.After(last) {
			t = last.Add(time.Microsecond)
		}
		last = t
		return t
	}
}

// FailOn makes the named operation (for example "loads.create") return err
// until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fails, op)
		return
	}
	s.fails[op] = err
}

// lock acquires the data mutex and returns the live state, or the error
// injected for op.
func (s *Store) lock(op string) (*state, error) {
	s.mu.Lock()
	if err := s.fails[op]; err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return *s.data, nil
}

func (s *Store) unlock() { s.mu.Unlock() }

func (s *Store) Plots() repository.PlotRepository               { return plots{s} }
func (s *Store) Seasons() repository.SeasonRepository           { return seasons{s} }
func (s *Store) SeasonPlots() repository.SeasonPlotRepository   { return overlays{s} }
func (s *Store) HarvestWeeks() repository.HarvestWeekRepository { return weeks{s} }
func (s *Store) Loads() repository.LoadRepository               { return loads{s} }
func (s *Store) Drivers() repository.DriverRepository           { return drivers{s} }
func (s *Store) Forecasts() repository.ForecastRepository       { return forecasts{s} }

// WithTx serializes transactions and restores the previous state when fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := (*s.data).clone()
	s.mu.Unlock()

	tx := *s
	tx.inTx = true
	if err := fn(&tx); err != nil {
		s.mu.Lock()
		*s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Counts reports the number of rows per table, for assertions in tests.
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := *s.data
	return map[string]int{
		"talhoes":          len(st.plots),
		"safras":           len(st.seasons),
		"talhao_safra":     len(st.overlays),
		"semanas_colheita": len(st.weeks),
		"carregamentos":    len(st.loads),
		"motoristas":       len(st.drivers),
		"previsoes":        len(st.forecasts),
	}
}

func sortedValues[T any](m map[string]T, less func(a, b T) bool) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
