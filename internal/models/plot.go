package models

import "time"

// Agronomics holds the plot attributes that can vary from one season to the
// next. Plot carries the base values and SeasonPlot the season overrides.
// Nullable fields use pointers to distinguish between zero values and NULL.
type Agronomics struct {
	Area         *float64 `json:"area"`
	Variedade    *string  `json:"variedade"`
	QtdePlantas  *int     `json:"qtde_plantas"`
	PortaEnxerto *string  `json:"porta_enxerto"`
	DataPlantio  *string  `json:"data_plantio"`
	Idade        *int     `json:"idade"`
	Falhas       *int     `json:"falhas"`
	Espacamento  *string  `json:"espacamento"`
	Observacoes  *string  `json:"observacoes"`
	Ativo        bool     `json:"ativo"`
}

// Plot is a base orchard plot (talhão): physical and ownership data that
// rarely changes between seasons.
type Plot struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Codigo    *string   `json:"codigo"`
	Tipo      *string   `json:"tipo"`
	Cor       *string   `json:"cor"`
	KmlID     *string   `json:"kml_id"`
	ID        string    `json:"id"`
	Nome      string    `json:"nome"`
	Agronomics
}

// SeasonPlot is the season-specific overlay of a plot (talhão_safra).
type SeasonPlot struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	TalhaoID  string    `json:"talhao_id"`
	SafraID   string    `json:"safra_id"`
	Agronomics
}

// SeasonPlotView pairs a plot with its overlay for one season, if any.
type SeasonPlotView struct {
	Plot    Plot
	Overlay *SeasonPlot
}

// Effective resolves the attributes that apply to the plot in the season.
func (v SeasonPlotView) Effective() Agronomics {
	if v.Overlay == nil {
		return v.Plot.Agronomics
	}
	return v.Overlay.Agronomics.Over(v.Plot.Agronomics)
}

// Over returns a copy of a where every NULL field is filled from base.
// Ativo is never inherited: an overlay row always decides it for its season.
func (a Agronomics) Over(base Agronomics) Agronomics {
	out := a
	if out.Area == nil {
		out.Area = base.Area
	}
	if out.Variedade == nil {
		out.Variedade = base.Variedade
	}
	if out.QtdePlantas == nil {
		out.QtdePlantas = base.QtdePlantas
	}
	if out.PortaEnxerto == nil {
		out.PortaEnxerto = base.PortaEnxerto
	}
	if out.DataPlantio == nil {
		out.DataPlantio = base.DataPlantio
	}
	if out.Idade == nil {
		out.Idade = base.Idade
	}
	if out.Falhas == nil {
		out.Falhas = base.Falhas
	}
	if out.Espacamento == nil {
		out.Espacamento = base.Espacamento
	}
	if out.Observacoes == nil {
		out.Observacoes = base.Observacoes
	}
	return out
}

// Clone returns a deep copy so callers can mutate pointers freely.
func (a Agronomics) Clone() Agronomics {
	return Agronomics{
		Area:         clonePtr(a.Area),
		Variedade:    clonePtr(a.Variedade),
		QtdePlantas:  clonePtr(a.QtdePlantas),
		PortaEnxerto: clonePtr(a.PortaEnxerto),
		DataPlantio:  clonePtr(a.DataPlantio),
		Idade:        clonePtr(a.Idade),
		Falhas:       clonePtr(a.Falhas),
		Espacamento:  clonePtr(a.Espacamento),
		Observacoes:  clonePtr(a.Observacoes),
		Ativo:        a.Ativo,
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
