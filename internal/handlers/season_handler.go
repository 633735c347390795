package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/pomar/internal/errors"
	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/services"
)

// SeasonHandler handles harvest season (safra) requests.
type SeasonHandler struct {
	service services.SeasonService
	loc     *time.Location
}

// NewSeasonHandler creates a new SeasonHandler instance. A bare anchor date
// is midnight in loc.
func NewSeasonHandler(service services.SeasonService, loc *time.Location) *SeasonHandler {
	return &SeasonHandler{service: service, loc: loc}
}

// SeasonsResponse wraps a list of seasons.
type SeasonsResponse struct {
	Safras []models.Season `json:"safras"`
}

// List handles GET /safras.
func (h *SeasonHandler) List(c *gin.Context) {
	seasons, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list seasons")
		return
	}
	c.JSON(http.StatusOK, SeasonsResponse{Safras: seasons})
}

// Get handles GET /safras/:id.
func (h *SeasonHandler) Get(c *gin.Context) {
	season, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to query season")
		return
	}
	c.JSON(http.StatusOK, season)
}

// Active handles GET /safras/ativa.
func (h *SeasonHandler) Active(c *gin.Context) {
	season, err := h.service.Active(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to query active season")
		return
	}
	c.JSON(http.StatusOK, season)
}

// Create handles POST /safras.
func (h *SeasonHandler) Create(c *gin.Context) {
	var req SeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	season := req.toModel("", h.loc)
	if err := h.service.Create(c.Request.Context(), season); err != nil {
		respondError(c, err, "Failed to create season")
		return
	}
	c.JSON(http.StatusCreated, season)
}

// Update handles PUT /safras/:id.
func (h *SeasonHandler) Update(c *gin.Context) {
	var req SeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	season, err := h.service.Update(c.Request.Context(), req.toModel(c.Param("id"), h.loc))
	if err != nil {
		respondError(c, err, "Failed to update season")
		return
	}
	c.JSON(http.StatusOK, season)
}

// Delete handles DELETE /safras/:id.
func (h *SeasonHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete season")
		return
	}
	c.Status(http.StatusNoContent)
}
