package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/pomar/internal/errors"
	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/services"
)

// SeasonPlotHandler handles season overlay (talhão_safra) requests.
type SeasonPlotHandler struct {
	service services.SeasonPlotService
}

// NewSeasonPlotHandler creates a new SeasonPlotHandler instance.
func NewSeasonPlotHandler(service services.SeasonPlotService) *SeasonPlotHandler {
	return &SeasonPlotHandler{service: service}
}

// SeasonPlotsResponse lists the plots of a season.
type SeasonPlotsResponse struct {
	Talhoes []services.SeasonPlotEntry `json:"talhoes"`
}

// CreatedCountResponse reports how many overlays a bulk operation created.
type CreatedCountResponse struct {
	Criados int `json:"criados"`
}

// List handles GET /safras/:id/talhoes.
func (h *SeasonPlotHandler) List(c *gin.Context) {
	entries, err := h.service.ListForSeason(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list season plots")
		return
	}
	c.JSON(http.StatusOK, SeasonPlotsResponse{Talhoes: entries})
}

// Initialize handles POST /inicializar-safra.
func (h *SeasonPlotHandler) Initialize(c *gin.Context) {
	var req InitializeSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	created, err := h.service.InitializeSeason(c.Request.Context(), req.SafraID)
	if err != nil {
		respondError(c, err, "Failed to initialize season")
		return
	}
	c.JSON(http.StatusCreated, CreatedCountResponse{Criados: created})
}

// Clone handles POST /safras/:id/clonar-de/:origem_id. The body is optional.
func (h *SeasonPlotHandler) Clone(c *gin.Context) {
	var req CloneSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apierrors.BindError(c, err)
		return
	}

	created, err := h.service.CloneFromSeason(c.Request.Context(), c.Param("id"), c.Param("origem_id"), req.IncrementarIdade)
	if err != nil {
		respondError(c, err, "Failed to clone season plots")
		return
	}
	c.JSON(http.StatusOK, CreatedCountResponse{Criados: created})
}

// Attach handles POST /talhao-safra.
func (h *SeasonPlotHandler) Attach(c *gin.Context) {
	var req AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	var attrs *models.Agronomics
	if !req.AgronomicsRequest.empty() {
		a := req.AgronomicsRequest.toModel()
		attrs = &a
	}

	overlay, err := h.service.Attach(c.Request.Context(), req.TalhaoID, req.SafraID, attrs)
	if err != nil {
		respondError(c, err, "Failed to attach plot to season")
		return
	}
	c.JSON(http.StatusCreated, overlay)
}

// Update handles PUT /talhao-safra/:id. The body replaces every attribute.
func (h *SeasonPlotHandler) Update(c *gin.Context) {
	var req AgronomicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	overlay, err := h.service.Update(c.Request.Context(), c.Param("id"), req.toModel())
	if err != nil {
		respondError(c, err, "Failed to update season plot")
		return
	}
	c.JSON(http.StatusOK, overlay)
}

// Sync handles POST /talhao-safra/:id/sincronizar.
func (h *SeasonPlotHandler) Sync(c *gin.Context) {
	overlay, err := h.service.SyncWithBase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to sync season plot")
		return
	}
	c.JSON(http.StatusOK, overlay)
}

// Delete handles DELETE /talhao-safra/:id.
func (h *SeasonPlotHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete season plot")
		return
	}
	c.Status(http.StatusNoContent)
}

// Get handles GET /talhao-safra/:id.
func (h *SeasonPlotHandler) Get(c *gin.Context) {
	overlay, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to query season plot")
		return
	}
	c.JSON(http.StatusOK, overlay)
}
