package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/pomar/internal/logger"
	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/repository"
)

// SeasonService defines CRUD on harvest seasons (safras).
type SeasonService interface {
	List(ctx context.Context) ([]models.Season, error)
	Get(ctx context.Context, id string) (*models.Season, error)

	// Active returns the most recently created season flagged active. The
	// flag is advisory, several seasons may carry it.
	Active(ctx context.Context) (*models.Season, error)

	Create(ctx context.Context, season *models.Season) error

	// Update replaces the season. Changing the anchor date affects loads
	// written afterwards; existing ledger rows are kept.
	Update(ctx context.Context, season *models.Season) (*models.Season, error)

	// Delete returns ErrInUse while loads or overlays reference the season.
	// Its ledger rows go with it.
	Delete(ctx context.Context, id string) error
}

type seasonService struct {
	store repository.Store
	log   *logger.Logger
}

// NewSeasonService creates a SeasonService.
func NewSeasonService(store repository.Store, log *logger.Logger) SeasonService {
	return &seasonService{store: store, log: log}
}

func normalizeSeason(season *models.Season) error {
	season.Nome = strings.TrimSpace(season.Nome)
	if season.Nome == "" {
		return fmt.Errorf("%w: nome is required", ErrInvalidSeason)
	}
	if a := season.DataInicialColheita; a != nil && !a.InRange() {
		return fmt.Errorf("%w: data_inicial_colheita must fall between 1900 and 2200", ErrInvalidSeason)
	}
	return nil
}

func (s *seasonService) List(ctx context.Context) ([]models.Season, error) {
	seasons, err := s.store.Seasons().List(ctx)
	if err != nil {
		s.log.Error("Failed to list seasons", err, nil)
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	return seasons, nil
}

func (s *seasonService) Get(ctx context.Context, id string) (*models.Season, error) {
	return findSeason(ctx, s.store, id)
}

func (s *seasonService) Active(ctx context.Context) (*models.Season, error) {
	season, err := s.store.Seasons().FindActive(ctx)
	if err != nil {
		s.log.Error("Failed to query active season", err, nil)
		return nil, fmt.Errorf("failed to query active season: %w", err)
	}
	if season == nil {
		return nil, fmt.Errorf("%w: no active season", ErrSeasonNotFound)
	}
	return season, nil
}

func (s *seasonService) Create(ctx context.Context, season *models.Season) error {
	if err := normalizeSeason(season); err != nil {
		return err
	}
	if err := s.store.Seasons().Create(ctx, season); err != nil {
		s.log.Error("Failed to create season", err, map[string]interface{}{"nome": season.Nome})
		return fmt.Errorf("failed to create season: %w", err)
	}

	s.log.Info("Season created", map[string]interface{}{"safra_id": season.ID, "nome": season.Nome})
	return nil
}

func (s *seasonService) Update(ctx context.Context, season *models.Season) (*models.Season, error) {
	if err := normalizeSeason(season); err != nil {
		return nil, err
	}
	updated, err := s.store.Seasons().Update(ctx, season)
	if err != nil {
		s.log.Error("Failed to update season", err, map[string]interface{}{"safra_id": season.ID})
		return nil, fmt.Errorf("failed to update season: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", ErrSeasonNotFound, season.ID)
	}

	s.log.Info("Season updated", map[string]interface{}{"safra_id": season.ID})
	return updated, nil
}

func (s *seasonService) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.Seasons().Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return fmt.Errorf("%w: season %s has loads or season plots", ErrInUse, id)
		}
		s.log.Error("Failed to delete season", err, map[string]interface{}{"safra_id": id})
		return fmt.Errorf("failed to delete season: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrSeasonNotFound, id)
	}

	s.log.Info("Season deleted", map[string]interface{}{"safra_id": id})
	return nil
}
