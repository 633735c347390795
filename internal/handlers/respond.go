package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/pomar/internal/errors"
	"github.com/stwalsh4118/pomar/internal/services"
)

// respondError maps a service error onto the HTTP error envelope. Errors the
// services do not name become a 500 with fallback as the message.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrInvalidLoad),
		errors.Is(err, services.ErrInvalidPlot),
		errors.Is(err, services.ErrInvalidSeason),
		errors.Is(err, services.ErrInvalidForecast):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrPlotNotFound),
		errors.Is(err, services.ErrSeasonNotFound),
		errors.Is(err, services.ErrLoadNotFound),
		errors.Is(err, services.ErrSeasonPlotNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrSeasonAlreadyInitialized),
		errors.Is(err, services.ErrDuplicatePlotCode),
		errors.Is(err, services.ErrDuplicateSeasonPlot),
		errors.Is(err, services.ErrInUse):
		apierrors.Conflict(c, err.Error(), nil)
	default:
		apierrors.InternalServerError(c, fallback, err)
	}
}
