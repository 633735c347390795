package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/pomar/internal/errors"
	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/services"
)

// ForecastHandler handles forecast (previsão) and driver directory requests.
type ForecastHandler struct {
	forecasts services.ForecastService
	drivers   services.DriverService
}

// NewForecastHandler creates a new ForecastHandler instance.
func NewForecastHandler(forecasts services.ForecastService, drivers services.DriverService) *ForecastHandler {
	return &ForecastHandler{forecasts: forecasts, drivers: drivers}
}

// ForecastsResponse lists a season's forecasts against realized boxes.
type ForecastsResponse struct {
	Previsoes []services.ForecastReport `json:"previsoes"`
}

// DriversResponse lists the driver directory.
type DriversResponse struct {
	Motoristas []models.Driver `json:"motoristas"`
}

// Save handles PUT /previsoes.
func (h *ForecastHandler) Save(c *gin.Context) {
	var req ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	forecast, err := h.forecasts.Save(c.Request.Context(), req.TalhaoID, req.SafraID, *req.CaixasPorPlanta)
	if err != nil {
		respondError(c, err, "Failed to save forecast")
		return
	}
	c.JSON(http.StatusOK, forecast)
}

// Report handles GET /safras/:id/previsoes.
func (h *ForecastHandler) Report(c *gin.Context) {
	reports, err := h.forecasts.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to build forecast report")
		return
	}
	c.JSON(http.StatusOK, ForecastsResponse{Previsoes: reports})
}

// Drivers handles GET /motoristas.
func (h *ForecastHandler) Drivers(c *gin.Context) {
	drivers, err := h.drivers.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list drivers")
		return
	}
	c.JSON(http.StatusOK, DriversResponse{Motoristas: drivers})
}
