package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/pomar/internal/logger"
	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/repository"
)

// DriverService reads the driver directory. Entries are added by the load
// register.
type DriverService interface {
	List(ctx context.Context) ([]models.Driver, error)
}

type driverService struct {
	repo repository.DriverRepository
	log  *logger.Logger
}

// NewDriverService creates a DriverService.
func NewDriverService(repo repository.DriverRepository, log *logger.Logger) DriverService {
	return &driverService{repo: repo, log: log}
}

func (s *driverService) List(ctx context.Context) ([]models.Driver, error) {
	drivers, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("Failed to list drivers", err, nil)
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	return drivers, nil
}
