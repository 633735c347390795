package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/stwalsh4118/pomar/internal/logger"
	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/repository"
)

// SeasonPlotEntry is one plot as seen from a season: the base record, the
// season overlay when there is one and the attributes that apply.
type SeasonPlotEntry struct {
	Talhao      models.Plot        `json:"talhao"`
	TalhaoSafra *models.SeasonPlot `json:"talhao_safra"`
	Efetivo     models.Agronomics  `json:"efetivo"`
}

// SeasonPlotService manages the season overlays of plots (talhão_safra).
type SeasonPlotService interface {
	// ListForSeason returns every plot with its overlay for the season, if any.
	ListForSeason(ctx context.Context, seasonID string) ([]SeasonPlotEntry, error)

	// InitializeSeason copies every active plot into a new overlay of the
	// season and returns how many were created.
	// Returns ErrSeasonAlreadyInitialized if the season has any overlay.
	InitializeSeason(ctx context.Context, seasonID string) (int, error)

	// CloneFromSeason copies the active overlays of source that target lacks.
	// Defects are reset to zero and age optionally incremented. Existing
	// target overlays are left untouched.
	CloneFromSeason(ctx context.Context, targetID, sourceID string, incrementAge bool) (int, error)

	// Attach creates the overlay of one plot. A nil attrs copies the plot's
	// base attributes. Returns ErrDuplicateSeasonPlot if it already exists.
	Attach(ctx context.Context, plotID, seasonID string, attrs *models.Agronomics) (*models.SeasonPlot, error)

	Get(ctx context.Context, id string) (*models.SeasonPlot, error)
	Update(ctx context.Context, id string, attrs models.Agronomics) (*models.SeasonPlot, error)

	// SyncWithBase overwrites the overlay's attributes with the plot's current ones.
	SyncWithBase(ctx context.Context, id string) (*models.SeasonPlot, error)

	Delete(ctx context.Context, id string) error
}

type seasonPlotService struct {
	store repository.Store
	log   *logger.Logger
}

// NewSeasonPlotService creates a SeasonPlotService.
func NewSeasonPlotService(store repository.Store, log *logger.Logger) SeasonPlotService {
	return &seasonPlotService{store: store, log: log}
}

func (s *seasonPlotService) ListForSeason(ctx context.Context, seasonID string) ([]SeasonPlotEntry, error) {
	if _, err := findSeason(ctx, s.store, seasonID); err != nil {
		return nil, err
	}

	views, err := s.store.SeasonPlots().ListViews(ctx, seasonID)
	if err != nil {
		s.log.Error("Failed to list season plots", err, map[string]interface{}{"safra_id": seasonID})
		return nil, fmt.Errorf("failed to list season plots: %w", err)
	}

	entries := make([]SeasonPlotEntry, 0, len(views))
	for _, v := range views {
		entries = append(entries, SeasonPlotEntry{
			Talhao:      v.Plot,
			TalhaoSafra: v.Overlay,
			Efetivo:     v.Effective(),
		})
	}
	return entries, nil
}

func (s *seasonPlotService) InitializeSeason(ctx context.Context, seasonID string) (int, error) {
	created := 0
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := lockSeason(ctx, tx, seasonID); err != nil {
			return err
		}

		count, err := tx.SeasonPlots().CountBySeason(ctx, seasonID)
		if err != nil {
			return fmt.Errorf("failed to count season plots: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: season %s has %d plots", ErrSeasonAlreadyInitialized, seasonID, count)
		}

		plots, err := tx.Plots().List(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to list active plots: %w", err)
		}
		for _, p := range plots {
			overlay := &models.SeasonPlot{
				TalhaoID:   p.ID,
				SafraID:    seasonID,
				Agronomics: p.Agronomics.Clone(),
			}
			if err := tx.SeasonPlots().Create(ctx, overlay); err != nil {
				if errors.Is(err, repository.ErrUniqueViolation) {
					return fmt.Errorf("%w: %s", ErrSeasonAlreadyInitialized, seasonID)
				}
				return fmt.Errorf("failed to create season plot for %s: %w", p.ID, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to initialize season", err, map[string]interface{}{"safra_id": seasonID})
		return 0, err
	}

	s.log.Info("Season initialized", map[string]interface{}{"safra_id": seasonID, "criados": created})
	return created, nil
}

func (s *seasonPlotService) CloneFromSeason(ctx context.Context, targetID, sourceID string, incrementAge bool) (int, error) {
	created := 0
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := lockSeason(ctx, tx, targetID); err != nil {
			return err
		}
		if _, err := findSeason(ctx, tx, sourceID); err != nil {
			return err
		}

		source, err := tx.SeasonPlots().ListBySeason(ctx, sourceID, true)
		if err != nil {
			return fmt.Errorf("failed to list source season plots: %w", err)
		}
		existing, err := tx.SeasonPlots().ListBySeason(ctx, targetID, false)
		if err != nil {
			return fmt.Errorf("failed to list target season plots: %w", err)
		}
		present := make(map[string]bool, len(existing))
		for _, o := range existing {
			present[o.TalhaoID] = true
		}

		for _, o := range source {
			if present[o.TalhaoID] {
				continue
			}
			attrs := o.Agronomics.Clone()
			if incrementAge && attrs.Idade != nil {
				*attrs.Idade++
			}
			noDefects := 0
			attrs.Falhas = &noDefects

			overlay := &models.SeasonPlot{TalhaoID: o.TalhaoID, SafraID: targetID, Agronomics: attrs}
			if err := tx.SeasonPlots().Create(ctx, overlay); err != nil {
				return fmt.Errorf("failed to clone season plot for %s: %w", o.TalhaoID, err)
			}
			present[o.TalhaoID] = true
			created++
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to clone season plots", err, map[string]interface{}{
			"safra_id":        targetID,
			"safra_origem_id": sourceID,
		})
		return 0, err
	}

	s.log.Info("Season plots cloned", map[string]interface{}{
		"safra_id":          targetID,
		"safra_origem_id":   sourceID,
		"incrementar_idade": incrementAge,
		"criados":           created,
	})
	return created, nil
}

func (s *seasonPlotService) Attach(ctx context.Context, plotID, seasonID string, attrs *models.Agronomics) (*models.SeasonPlot, error) {
	plot, err := findPlot(ctx, s.store, plotID)
	if err != nil {
		return nil, err
	}
	if _, err := findSeason(ctx, s.store, seasonID); err != nil {
		return nil, err
	}

	overlay := &models.SeasonPlot{TalhaoID: plotID, SafraID: seasonID}
	if attrs != nil {
		overlay.Agronomics = attrs.Clone()
	} else {
		overlay.Agronomics = plot.Agronomics.Clone()
	}

	if err := s.store.SeasonPlots().Create(ctx, overlay); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, fmt.Errorf("%w: plot %s in season %s", ErrDuplicateSeasonPlot, plotID, seasonID)
		}
		s.log.Error("Failed to attach plot to season", err, map[string]interface{}{
			"talhao_id": plotID,
			"safra_id":  seasonID,
		})
		return nil, fmt.Errorf("failed to create season plot: %w", err)
	}

	s.log.Info("Plot attached to season", map[string]interface{}{
		"talhao_safra_id": overlay.ID,
		"talhao_id":       plotID,
		"safra_id":        seasonID,
	})
	return overlay, nil
}

func (s *seasonPlotService) Get(ctx context.Context, id string) (*models.SeasonPlot, error) {
	overlay, err := s.store.SeasonPlots().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query season plot: %w", err)
	}
	if overlay == nil {
		return nil, fmt.Errorf("%w: %s", ErrSeasonPlotNotFound, id)
	}
	return overlay, nil
}

func (s *seasonPlotService) Update(ctx context.Context, id string, attrs models.Agronomics) (*models.SeasonPlot, error) {
	updated, err := s.store.SeasonPlots().Update(ctx, &models.SeasonPlot{ID: id, Agronomics: attrs.Clone()})
	if err != nil {
		s.log.Error("Failed to update season plot", err, map[string]interface{}{"talhao_safra_id": id})
		return nil, fmt.Errorf("failed to update season plot: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", ErrSeasonPlotNotFound, id)
	}

	s.log.Info("Season plot updated", map[string]interface{}{"talhao_safra_id": id})
	return updated, nil
}

func (s *seasonPlotService) SyncWithBase(ctx context.Context, id string) (*models.SeasonPlot, error) {
	var synced *models.SeasonPlot
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		overlay, err := tx.SeasonPlots().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to query season plot: %w", err)
		}
		if overlay == nil {
			return fmt.Errorf("%w: %s", ErrSeasonPlotNotFound, id)
		}
		plot, err := findPlot(ctx, tx, overlay.TalhaoID)
		if err != nil {
			return err
		}

		overlay.Agronomics = plot.Agronomics.Clone()
		synced, err = tx.SeasonPlots().Update(ctx, overlay)
		if err != nil {
			return fmt.Errorf("failed to update season plot: %w", err)
		}
		if synced == nil {
			return fmt.Errorf("%w: %s", ErrSeasonPlotNotFound, id)
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to sync season plot", err, map[string]interface{}{"talhao_safra_id": id})
		return nil, err
	}

	s.log.Info("Season plot synced with base plot", map[string]interface{}{
		"talhao_safra_id": id,
		"talhao_id":       synced.TalhaoID,
	})
	return synced, nil
}

func (s *seasonPlotService) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.SeasonPlots().Delete(ctx, id)
	if err != nil {
		s.log.Error("Failed to delete season plot", err, map[string]interface{}{"talhao_safra_id": id})
		return fmt.Errorf("failed to delete season plot: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrSeasonPlotNotFound, id)
	}

	s.log.Info("Season plot deleted", map[string]interface{}{"talhao_safra_id": id})
	return nil
}

func (s *seasonPlotService) logFailure(msg string, err error, fields map[string]interface{}) {
	logFailure(s.log, msg, err, fields)
}

func findPlot(ctx context.Context, store repository.Store, id string) (*models.Plot, error) {
	plot, err := store.Plots().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query plot: %w", err)
	}
	if plot == nil {
		return nil, fmt.Errorf("%w: %s", ErrPlotNotFound, id)
	}
	return plot, nil
}

func findSeason(ctx context.Context, store repository.Store, id string) (*models.Season, error) {
	season, err := store.Seasons().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query season: %w", err)
	}
	if season == nil {
		return nil, fmt.Errorf("%w: %s", ErrSeasonNotFound, id)
	}
	return season, nil
}
