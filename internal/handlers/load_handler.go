package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/pomar/internal/errors"
	"github.com/stwalsh4118/pomar/internal/middleware"
	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/repository"
	"github.com/stwalsh4118/pomar/internal/services"
)

// LoadHandler handles harvest load (carregamento) requests.
type LoadHandler struct {
	service services.LoadService
	loc     *time.Location
}

// NewLoadHandler creates a new LoadHandler instance. Bare dates in request
// bodies are midnight in loc.
func NewLoadHandler(service services.LoadService, loc *time.Location) *LoadHandler {
	return &LoadHandler{service: service, loc: loc}
}

// LoadCreatedResponse is returned by POST /carregamentos.
type LoadCreatedResponse struct {
	Carregamento *models.Load `json:"carregamento"`
	ID           string       `json:"id"`
}

// LoadsResponse wraps a list of loads.
type LoadsResponse struct {
	Carregamentos []models.Load `json:"carregamentos"`
	Count         int           `json:"count"`
}

// HarvestWeeksResponse wraps a season's harvest-week ledger.
type HarvestWeeksResponse struct {
	Semanas []models.HarvestWeek `json:"semanas"`
}

func (r LoadRequest) toInput(loc *time.Location) services.LoadInput {
	return services.LoadInput{
		Data:      r.Data.In(loc),
		TalhaoID:  r.TalhaoID,
		SafraID:   r.SafraID,
		Motorista: r.Motorista,
		Placa:     r.Placa,
		QteCaixa:  *r.QteCaixa,
	}
}

// List handles GET /carregamentos?safra_id=&talhao_id=.
func (h *LoadHandler) List(c *gin.Context) {
	var q LoadQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	loads, err := h.service.List(c.Request.Context(), repository.LoadFilter{SafraID: q.SafraID, TalhaoID: q.TalhaoID})
	if err != nil {
		respondError(c, err, "Failed to list loads")
		return
	}
	c.JSON(http.StatusOK, LoadsResponse{Carregamentos: loads, Count: len(loads)})
}

// Get handles GET /carregamentos/:id.
func (h *LoadHandler) Get(c *gin.Context) {
	load, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to query load")
		return
	}
	c.JSON(http.StatusOK, load)
}

// Create handles POST /carregamentos.
func (h *LoadHandler) Create(c *gin.Context) {
	var req LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Registering load", map[string]interface{}{
			"talhao_id": req.TalhaoID,
			"safra_id":  req.SafraID,
			"data":      int64(req.Data.In(h.loc)),
		})
	}

	load, err := h.service.Register(c.Request.Context(), req.toInput(h.loc))
	if err != nil {
		respondError(c, err, "Failed to register load")
		return
	}
	c.JSON(http.StatusCreated, LoadCreatedResponse{ID: load.ID, Carregamento: load})
}

// Update handles PUT /carregamentos/:id.
func (h *LoadHandler) Update(c *gin.Context) {
	var req LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	load, err := h.service.Edit(c.Request.Context(), c.Param("id"), req.toInput(h.loc))
	if err != nil {
		respondError(c, err, "Failed to update load")
		return
	}
	c.JSON(http.StatusOK, load)
}

// Delete handles DELETE /carregamentos/:id.
func (h *LoadHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete load")
		return
	}
	c.Status(http.StatusNoContent)
}

// Weeks handles GET /safras/:id/semanas.
func (h *LoadHandler) Weeks(c *gin.Context) {
	weeks, err := h.service.ListWeeks(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list harvest weeks")
		return
	}
	c.JSON(http.StatusOK, HarvestWeeksResponse{Semanas: weeks})
}
