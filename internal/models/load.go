package models

import "time"

// LoadSnapshot is the plot state copied onto a load when it is written.
// It is historical data and is never refreshed from the plot afterwards.
type LoadSnapshot struct {
	QtdePlantas *int    `json:"qtde_plantas"`
	Variedade   *string `json:"variedade"`
}

// SnapshotOf captures the snapshot fields from resolved plot attributes.
func SnapshotOf(a Agronomics) LoadSnapshot {
	return LoadSnapshot{
		QtdePlantas: clonePtr(a.QtdePlantas),
		Variedade:   clonePtr(a.Variedade),
	}
}

// Load is one harvest pickup (carregamento).
type Load struct {
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Motorista      *string   `json:"motorista"`
	Placa          *string   `json:"placa"`
	SemanaColheita *int      `json:"semana_colheita"`
	ID             string    `json:"id"`
	TalhaoID       string    `json:"talhao_id"`
	SafraID        string    `json:"safra_id"`
	LoadSnapshot
	// Seq records insertion order and breaks ties between loads on the same date.
	Seq            int64   `json:"-"`
	Data           Millis  `json:"data"`
	QteCaixa       float64 `json:"qte_caixa"`
	TotalAcumulado float64 `json:"total_acumulado"`
	Semana         int     `json:"semana"`
}

// Driver is an entry in the driver directory (motoristas).
type Driver struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

// Forecast is the predicted yield for a plot in a season (previsão).
// Plot attributes are copied at save time.
type Forecast struct {
	UpdatedAt       time.Time `json:"updated_at"`
	Variedade       *string   `json:"variedade"`
	DataPlantio     *string   `json:"data_plantio"`
	Idade           *int      `json:"idade"`
	QtdePlantas     *int      `json:"qtde_plantas"`
	ID              string    `json:"id"`
	TalhaoID        string    `json:"talhao_id"`
	SafraID         string    `json:"safra_id"`
	TalhaoNome      string    `json:"talhao_nome"`
	CaixasPorPlanta float64   `json:"caixas_por_planta"`
}
