package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/pomar/internal/repository"
	"github.com/stwalsh4118/pomar/internal/report"
	"github.com/stwalsh4118/pomar/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves spreadsheet downloads.
type ExportHandler struct {
	seasons services.SeasonService
	loads   services.LoadService
	plots   services.PlotService
	loc     *time.Location
}

// NewExportHandler creates a new ExportHandler instance. Dates in the sheet
// are rendered in loc.
func NewExportHandler(seasons services.SeasonService, loads services.LoadService, plots services.PlotService, loc *time.Location) *ExportHandler {
	return &ExportHandler{seasons: seasons, loads: loads, plots: plots, loc: loc}
}

// SeasonLoads handles GET /safras/:id/carregamentos.xlsx.
func (h *ExportHandler) SeasonLoads(c *gin.Context) {
	ctx := c.Request.Context()

	season, err := h.seasons.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to query season")
		return
	}

	loads, err := h.loads.List(ctx, repository.LoadFilter{SafraID: season.ID})
	if err != nil {
		respondError(c, err, "Failed to list loads")
		return
	}

	plots, err := h.plots.List(ctx, false)
	if err != nil {
		respondError(c, err, "Failed to list plots")
		return
	}
	names := make(map[string]string, len(plots))
	for _, p := range plots {
		names[p.ID] = p.Nome
	}

	// Render fully before writing headers so a failure still gets the JSON envelope.
	var buf bytes.Buffer
	if err := report.WriteLoads(&buf, *season, loads, names, h.loc); err != nil {
		respondError(c, err, "Failed to render spreadsheet")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.FileName(*season)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
