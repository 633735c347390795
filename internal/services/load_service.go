package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/stwalsh4118/pomar/internal/harvest"
	"github.com/stwalsh4118/pomar/internal/logger"
	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/repository"
)

// LoadInput is the caller-supplied part of a load. Everything else on
// models.Load is derived.
type LoadInput struct {
	Motorista *string
	Placa     *string
	TalhaoID  string
	SafraID   string
	Data      models.Millis
	QteCaixa  float64
}

// LoadService defines the load register: the write path for harvest loads
// and the reads that go with it.
type LoadService interface {
	// Register records a new load. The plot snapshot, calendar week, harvest
	// week and running total are derived, missing ledger weeks are backfilled
	// and the driver is added to the directory.
	// Returns ErrInvalidLoad, ErrPlotNotFound or ErrSeasonNotFound.
	Register(ctx context.Context, in LoadInput) (*models.Load, error)

	// Edit replaces a load and derives its fields again.
	// Returns ErrLoadNotFound in addition to the Register errors.
	Edit(ctx context.Context, id string, in LoadInput) (*models.Load, error)

	// Delete removes a load. Returns ErrLoadNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	Get(ctx context.Context, id string) (*models.Load, error)
	List(ctx context.Context, filter repository.LoadFilter) ([]models.Load, error)

	// ListWeeks returns the season's harvest-week ledger ordered by calendar week.
	ListWeeks(ctx context.Context, seasonID string) ([]models.HarvestWeek, error)
}

type loadService struct {
	store repository.Store
	cal   harvest.Calendar
	log   *logger.Logger
}

// NewLoadService creates a LoadService. cal decides which civil day a load
// timestamp falls on.
func NewLoadService(store repository.Store, cal harvest.Calendar, log *logger.Logger) LoadService {
	return &loadService{store: store, cal: cal, log: log}
}

func validateLoad(in LoadInput) error {
	if strings.TrimSpace(in.TalhaoID) == "" {
		return fmt.Errorf("%w: talhao_id is required", ErrInvalidLoad)
	}
	if strings.TrimSpace(in.SafraID) == "" {
		return fmt.Errorf("%w: safra_id is required", ErrInvalidLoad)
	}
	if !in.Data.InRange() {
		return fmt.Errorf("%w: data must fall between 1900 and 2200", ErrInvalidLoad)
	}
	if math.IsNaN(in.QteCaixa) || math.IsInf(in.QteCaixa, 0) {
		return fmt.Errorf("%w: qte_caixa must be a number", ErrInvalidLoad)
	}
	if in.QteCaixa < 0 {
		return fmt.Errorf("%w: qte_caixa must be greater than or equal to 0, got %v", ErrInvalidLoad, in.QteCaixa)
	}
	return nil
}

func (s *loadService) Register(ctx context.Context, in LoadInput) (*models.Load, error) {
	if err := validateLoad(in); err != nil {
		s.log.Warn("Rejected load", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	var created *models.Load
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		season, err := lockSeason(ctx, tx, in.SafraID)
		if err != nil {
			return err
		}

		load := &models.Load{}
		if err := s.derive(ctx, tx, season, in, load); err != nil {
			return err
		}
		if err := tx.Loads().Create(ctx, load); err != nil {
			return fmt.Errorf("failed to insert load: %w", err)
		}

		totals, err := recomputeTotals(ctx, tx, season.ID)
		if err != nil {
			return err
		}
		load.TotalAcumulado = totals[load.ID]
		created = load
		return nil
	})
	if err != nil {
		s.logFailure("Failed to register load", err, map[string]interface{}{
			"talhao_id": in.TalhaoID,
			"safra_id":  in.SafraID,
		})
		return nil, err
	}

	s.log.Info("Load registered", map[string]interface{}{
		"load_id":         created.ID,
		"safra_id":        created.SafraID,
		"talhao_id":       created.TalhaoID,
		"qte_caixa":       created.QteCaixa,
		"semana":          created.Semana,
		"total_acumulado": created.TotalAcumulado,
	})
	return created, nil
}

func (s *loadService) Edit(ctx context.Context, id string, in LoadInput) (*models.Load, error) {
	if err := validateLoad(in); err != nil {
		s.log.Warn("Rejected load edit", map[string]interface{}{"load_id": id, "error": err.Error()})
		return nil, err
	}

	var updated *models.Load
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Loads().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to query load: %w", err)
		}
		if existing == nil {
			return fmt.Errorf("%w: %s", ErrLoadNotFound, id)
		}

		// Lock in id order so two edits moving loads between the same pair
		// of seasons cannot deadlock.
		seasonIDs := []string{existing.SafraID}
		if in.SafraID != existing.SafraID {
			seasonIDs = append(seasonIDs, in.SafraID)
			sort.Strings(seasonIDs)
		}
		var target *models.Season
		for _, sid := range seasonIDs {
			season, err := lockSeason(ctx, tx, sid)
			if err != nil {
				return err
			}
			if sid == in.SafraID {
				target = season
			}
		}

		load := *existing
		if err := s.derive(ctx, tx, target, in, &load); err != nil {
			return err
		}
		saved, err := tx.Loads().Update(ctx, &load)
		if err != nil {
			return fmt.Errorf("failed to update load: %w", err)
		}
		if saved == nil {
			return fmt.Errorf("%w: %s", ErrLoadNotFound, id)
		}

		for _, sid := range seasonIDs {
			totals, err := recomputeTotals(ctx, tx, sid)
			if err != nil {
				return err
			}
			if sid == saved.SafraID {
				saved.TotalAcumulado = totals[saved.ID]
			}
		}
		updated = saved
		return nil
	})
	if err != nil {
		s.logFailure("Failed to edit load", err, map[string]interface{}{"load_id": id})
		return nil, err
	}

	s.log.Info("Load updated", map[string]interface{}{
		"load_id":         updated.ID,
		"safra_id":        updated.SafraID,
		"qte_caixa":       updated.QteCaixa,
		"total_acumulado": updated.TotalAcumulado,
	})
	return updated, nil
}

func (s *loadService) Delete(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Loads().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to query load: %w", err)
		}
		if existing == nil {
			return fmt.Errorf("%w: %s", ErrLoadNotFound, id)
		}
		if _, err := lockSeason(ctx, tx, existing.SafraID); err != nil {
			return err
		}

		deleted, err := tx.Loads().Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete load: %w", err)
		}
		if !deleted {
			return fmt.Errorf("%w: %s", ErrLoadNotFound, id)
		}

		_, err = recomputeTotals(ctx, tx, existing.SafraID)
		return err
	})
	if err != nil {
		s.logFailure("Failed to delete load", err, map[string]interface{}{"load_id": id})
		return err
	}

	s.log.Info("Load deleted", map[string]interface{}{"load_id": id})
	return nil
}

func (s *loadService) Get(ctx context.Context, id string) (*models.Load, error) {
	load, err := s.store.Loads().FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query load", err, map[string]interface{}{"load_id": id})
		return nil, fmt.Errorf("failed to query load: %w", err)
	}
	if load == nil {
		return nil, fmt.Errorf("%w: %s", ErrLoadNotFound, id)
	}
	return load, nil
}

func (s *loadService) List(ctx context.Context, filter repository.LoadFilter) ([]models.Load, error) {
	loads, err := s.store.Loads().List(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list loads", err, map[string]interface{}{
			"safra_id":  filter.SafraID,
			"talhao_id": filter.TalhaoID,
		})
		return nil, fmt.Errorf("failed to list loads: %w", err)
	}
	return loads, nil
}

func (s *loadService) ListWeeks(ctx context.Context, seasonID string) ([]models.HarvestWeek, error) {
	if _, err := findSeason(ctx, s.store, seasonID); err != nil {
		return nil, err
	}

	weeks, err := s.store.HarvestWeeks().ListBySeason(ctx, seasonID)
	if err != nil {
		s.log.Error("Failed to list harvest weeks", err, map[string]interface{}{"safra_id": seasonID})
		return nil, fmt.Errorf("failed to list harvest weeks: %w", err)
	}
	return weeks, nil
}

// derive fills every field of load from in, the plot and the season and
// backfills the ledger. Nothing is written before the plot has been found.
func (s *loadService) derive(ctx context.Context, tx repository.Store, season *models.Season, in LoadInput, load *models.Load) error {
	plot, err := tx.Plots().FindByID(ctx, in.TalhaoID)
	if err != nil {
		return fmt.Errorf("failed to query plot: %w", err)
	}
	if plot == nil {
		return fmt.Errorf("%w: %s", ErrPlotNotFound, in.TalhaoID)
	}

	agronomics, err := effectiveAgronomics(ctx, tx, plot, season.ID)
	if err != nil {
		return err
	}

	placement := s.cal.Place(in.Data, season.DataInicialColheita)
	for _, mark := range placement.Backfill {
		week := &models.HarvestWeek{
			SafraID:        season.ID,
			SemanaAno:      mark.WeekOfYear,
			SemanaColheita: mark.HarvestWeek,
		}
		inserted, err := tx.HarvestWeeks().InsertIfAbsent(ctx, week)
		if err != nil {
			return fmt.Errorf("failed to backfill harvest week %d: %w", mark.WeekOfYear, err)
		}
		if inserted {
			s.log.Debug("Harvest week added to ledger", map[string]interface{}{
				"safra_id":        season.ID,
				"semana_ano":      mark.WeekOfYear,
				"semana_colheita": mark.HarvestWeek,
			})
		}
	}

	driver := normalizeDriver(in.Motorista)
	if driver != nil {
		if _, err := tx.Drivers().InsertIfAbsent(ctx, &models.Driver{Nome: *driver}); err != nil {
			return fmt.Errorf("failed to record driver: %w", err)
		}
	}

	load.Data = in.Data
	load.TalhaoID = plot.ID
	load.SafraID = season.ID
	load.LoadSnapshot = models.SnapshotOf(agronomics)
	load.Motorista = driver
	load.Placa = trimmed(in.Placa)
	load.QteCaixa = in.QteCaixa
	load.Semana = placement.WeekOfYear
	load.SemanaColheita = placement.HarvestWeek
	return nil
}

func (s *loadService) logFailure(msg string, err error, fields map[string]interface{}) {
	logFailure(s.log, msg, err, fields)
}

// lockSeason takes the season's row lock for the rest of the transaction.
func lockSeason(ctx context.Context, tx repository.Store, id string) (*models.Season, error) {
	season, err := tx.Seasons().LockByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock season: %w", err)
	}
	if season == nil {
		return nil, fmt.Errorf("%w: %s", ErrSeasonNotFound, id)
	}
	return season, nil
}

// recomputeTotals rewrites total_acumulado on every load of the season whose
// stored value no longer matches its chronological position.
func recomputeTotals(ctx context.Context, tx repository.Store, seasonID string) (map[string]float64, error) {
	loads, err := tx.Loads().List(ctx, repository.LoadFilter{SafraID: seasonID})
	if err != nil {
		return nil, fmt.Errorf("failed to list season loads: %w", err)
	}

	totals := harvest.RunningTotals(loads)
	for _, l := range loads {
		if l.TotalAcumulado == totals[l.ID] {
			continue
		}
		if err := tx.Loads().SetRunningTotal(ctx, l.ID, totals[l.ID]); err != nil {
			return nil, fmt.Errorf("failed to update running total of load %s: %w", l.ID, err)
		}
	}
	return totals, nil
}

// effectiveAgronomics resolves the plot's attributes for the season: the
// overlay's where one exists, the base plot's otherwise.
func effectiveAgronomics(ctx context.Context, q repository.Store, plot *models.Plot, seasonID string) (models.Agronomics, error) {
	overlay, err := q.SeasonPlots().FindByPlotAndSeason(ctx, plot.ID, seasonID)
	if err != nil {
		return models.Agronomics{}, fmt.Errorf("failed to query season plot: %w", err)
	}
	return models.SeasonPlotView{Plot: *plot, Overlay: overlay}.Effective(), nil
}

// normalizeDriver upper-cases and trims a driver name. Blank names become nil.
func normalizeDriver(name *string) *string {
	if name == nil {
		return nil
	}
	n := strings.ToUpper(strings.TrimSpace(*name))
	if n == "" {
		return nil
	}
	return &n
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
