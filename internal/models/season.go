package models

import "time"

// Season is a harvest campaign (safra). DataInicialColheita anchors the
// harvest-week count; without it loads get no harvest week.
type Season struct {
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	DataInicialColheita *Millis   `json:"data_inicial_colheita"`
	ID                  string    `json:"id"`
	Nome                string    `json:"nome"`
	IsActive            bool      `json:"is_active"`
}

// HarvestWeek is one ledger row (semanas_colheita) mapping a calendar week
// of the season to its harvest week number.
type HarvestWeek struct {
	ID             string `json:"id"`
	SafraID        string `json:"safra_id"`
	SemanaAno      int    `json:"semana_ano"`
	SemanaColheita int    `json:"semana_colheita"`
}
