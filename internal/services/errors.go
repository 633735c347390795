package services

import (
	"errors"

	"github.com/stwalsh4118/pomar/internal/logger"
)

// Service-level errors. Handlers match them with errors.Is.
var (
	ErrPlotNotFound             = errors.New("plot not found")
	ErrSeasonNotFound           = errors.New("season not found")
	ErrLoadNotFound             = errors.New("load not found")
	ErrSeasonPlotNotFound       = errors.New("season plot not found")
	ErrSeasonAlreadyInitialized = errors.New("season already initialized")
	ErrDuplicatePlotCode        = errors.New("plot code already in use")
	ErrDuplicateSeasonPlot      = errors.New("plot already attached to season")
	ErrInvalidLoad              = errors.New("invalid load")
	ErrInvalidPlot              = errors.New("invalid plot")
	ErrInvalidSeason            = errors.New("invalid season")
	ErrInvalidForecast          = errors.New("invalid forecast")
	ErrInUse                    = errors.New("record is still referenced")
)

var clientErrors = []error{
	ErrPlotNotFound,
	ErrSeasonNotFound,
	ErrLoadNotFound,
	ErrSeasonPlotNotFound,
	ErrSeasonAlreadyInitialized,
	ErrDuplicatePlotCode,
	ErrDuplicateSeasonPlot,
	ErrInvalidLoad,
	ErrInvalidPlot,
	ErrInvalidSeason,
	ErrInvalidForecast,
	ErrInUse,
}

// isClientError reports whether err is caused by the request rather than by
// the store.
func isClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// logFailure logs client errors at warn level and store failures at error level.
func logFailure(log *logger.Logger, msg string, err error, fields map[string]interface{}) {
	if isClientError(err) {
		fields["error"] = err.Error()
		log.Warn(msg, fields)
		return
	}
	log.Error(msg, err, fields)
}
