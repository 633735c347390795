package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/pomar/internal/errors"
	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/services"
)

// PlotHandler handles base plot (talhão) requests.
type PlotHandler struct {
	service services.PlotService
}

// NewPlotHandler creates a new PlotHandler instance.
func NewPlotHandler(service services.PlotService) *PlotHandler {
	return &PlotHandler{service: service}
}

// PlotsResponse wraps a list of plots.
type PlotsResponse struct {
	Talhoes []models.Plot `json:"talhoes"`
	Count   int           `json:"count"`
}

// List handles GET /talhoes. ?ativo=true restricts to active plots.
func (h *PlotHandler) List(c *gin.Context) {
	activeOnly := false
	if v := c.Query("ativo"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			apierrors.BadRequest(c, "ativo must be true or false", map[string]interface{}{"ativo": v})
			return
		}
		activeOnly = parsed
	}

	plots, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err, "Failed to list plots")
		return
	}
	c.JSON(http.StatusOK, PlotsResponse{Talhoes: plots, Count: len(plots)})
}

// Get handles GET /talhoes/:id.
func (h *PlotHandler) Get(c *gin.Context) {
	plot, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to query plot")
		return
	}
	c.JSON(http.StatusOK, plot)
}

// Create handles POST /talhoes.
func (h *PlotHandler) Create(c *gin.Context) {
	var req PlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	plot := req.toModel("")
	if err := h.service.Create(c.Request.Context(), plot); err != nil {
		respondError(c, err, "Failed to create plot")
		return
	}
	c.JSON(http.StatusCreated, plot)
}

// Update handles PUT /talhoes/:id.
func (h *PlotHandler) Update(c *gin.Context) {
	var req PlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	plot, err := h.service.Update(c.Request.Context(), req.toModel(c.Param("id")))
	if err != nil {
		respondError(c, err, "Failed to update plot")
		return
	}
	c.JSON(http.StatusOK, plot)
}

// Delete handles DELETE /talhoes/:id.
func (h *PlotHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete plot")
		return
	}
	c.Status(http.StatusNoContent)
}
