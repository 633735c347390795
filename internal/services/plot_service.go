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

// PlotService defines CRUD on base plots (talhões).
type PlotService interface {
	List(ctx context.Context, activeOnly bool) ([]models.Plot, error)
	Get(ctx context.Context, id string) (*models.Plot, error)

	// Create stores a new plot. Returns ErrInvalidPlot without a name and
	// ErrDuplicatePlotCode when codigo is taken.
	Create(ctx context.Context, p *models.Plot) error

	Update(ctx context.Context, p *models.Plot) (*models.Plot, error)

	// Delete removes a plot for good. Deactivating it (ativo=false) is the
	// usual path; Delete returns ErrInUse while loads or overlays reference it.
	Delete(ctx context.Context, id string) error
}

type plotService struct {
	store repository.Store
	log   *logger.Logger
}

// NewPlotService creates a PlotService.
func NewPlotService(store repository.Store, log *logger.Logger) PlotService {
	return &plotService{store: store, log: log}
}

func normalizePlot(p *models.Plot) error {
	p.Nome = strings.TrimSpace(p.Nome)
	if p.Nome == "" {
		return fmt.Errorf("%w: nome is required", ErrInvalidPlot)
	}
	p.Codigo = trimmed(p.Codigo)
	return nil
}

func (s *plotService) List(ctx context.Context, activeOnly bool) ([]models.Plot, error) {
	plots, err := s.store.Plots().List(ctx, activeOnly)
	if err != nil {
		s.log.Error("Failed to list plots", err, nil)
		return nil, fmt.Errorf("failed to list plots: %w", err)
	}
	return plots, nil
}

func (s *plotService) Get(ctx context.Context, id string) (*models.Plot, error) {
	return findPlot(ctx, s.store, id)
}

func (s *plotService) Create(ctx context.Context, p *models.Plot) error {
	if err := normalizePlot(p); err != nil {
		return err
	}
	if err := s.store.Plots().Create(ctx, p); err != nil {
		return s.writeError("create", p, err)
	}

	s.log.Info("Plot created", map[string]interface{}{"talhao_id": p.ID, "nome": p.Nome})
	return nil
}

func (s *plotService) Update(ctx context.Context, p *models.Plot) (*models.Plot, error) {
	if err := normalizePlot(p); err != nil {
		return nil, err
	}
	updated, err := s.store.Plots().Update(ctx, p)
	if err != nil {
		return nil, s.writeError("update", p, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", ErrPlotNotFound, p.ID)
	}

	s.log.Info("Plot updated", map[string]interface{}{"talhao_id": p.ID})
	return updated, nil
}

func (s *plotService) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.Plots().Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return fmt.Errorf("%w: plot %s has loads or season plots", ErrInUse, id)
		}
		s.log.Error("Failed to delete plot", err, map[string]interface{}{"talhao_id": id})
		return fmt.Errorf("failed to delete plot: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrPlotNotFound, id)
	}

	s.log.Info("Plot deleted", map[string]interface{}{"talhao_id": id})
	return nil
}

func (s *plotService) writeError(op string, p *models.Plot, err error) error {
	if errors.Is(err, repository.ErrUniqueViolation) {
		code := ""
		if p.Codigo != nil {
			code = *p.Codigo
		}
		return fmt.Errorf("%w: %q", ErrDuplicatePlotCode, code)
	}
	s.log.Error("Failed to "+op+" plot", err, map[string]interface{}{"talhao_id": p.ID})
	return fmt.Errorf("failed to %s plot: %w", op, err)
}
