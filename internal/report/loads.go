// Package report renders harvest data as spreadsheets.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet that holds the load rows.
const SheetName = "Carregamentos"

var loadHeaders = []string{
	"Data",
	"Semana",
	"Semana Colheita",
	"Talhão",
	"Variedade",
	"Qtde Plantas",
	"Motorista",
	"Placa",
	"Qte Caixa",
	"Total Acumulado",
}

// WriteLoads writes one row per load, in the given order, to w as an XLSX
// workbook. plotNames maps talhao_id to a display name; unknown ids fall back
// to the id. Dates are rendered as calendar days in loc.
func WriteLoads(w io.Writer, season models.Season, loads []models.Load, plotNames map[string]string, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := f.SetCellValue(SheetName, "A1", season.Nome); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}

	header := make([]interface{}, len(loadHeaders))
	for i, h := range loadHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A2", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, l := range loads {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		row := []interface{}{
			l.Data.Time(loc).Format("2006-01-02"),
			l.Semana,
			optional(l.SemanaColheita),
			plotName(plotNames, l.TalhaoID),
			optional(l.Variedade),
			optional(l.QtdePlantas),
			optional(l.Motorista),
			optional(l.Placa),
			l.QteCaixa,
			l.TotalAcumulado,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write load %s: %w", l.ID, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "J", 16); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// FileName is the attachment name used for a season export.
func FileName(season models.Season) string {
	return fmt.Sprintf("carregamentos-%s.xlsx", season.ID)
}

func plotName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

// optional turns a nil pointer into an empty cell.
func optional[T any](p *T) interface{} {
	if p == nil {
		return ""
	}
	return *p
}
