package handlers

import (
	"time"

	"github.com/stwalsh4118/pomar/internal/models"
)

// AgronomicsRequest is the season-variable part of a plot or overlay body.
// An omitted ativo means true.
type AgronomicsRequest struct {
	Area         *float64 `json:"area" binding:"omitempty,gte=0"`
	Variedade    *string  `json:"variedade" binding:"omitempty,max=100"`
	QtdePlantas  *int     `json:"qtde_plantas" binding:"omitempty,gte=0"`
	PortaEnxerto *string  `json:"porta_enxerto" binding:"omitempty,max=100"`
	DataPlantio  *string  `json:"data_plantio" binding:"omitempty,max=30"`
	Idade        *int     `json:"idade" binding:"omitempty,gte=0"`
	Falhas       *int     `json:"falhas" binding:"omitempty,gte=0"`
	Espacamento  *string  `json:"espacamento" binding:"omitempty,max=50"`
	Observacoes  *string  `json:"observacoes"`
	Ativo        *bool    `json:"ativo"`
}

func (r AgronomicsRequest) toModel() models.Agronomics {
	a := models.Agronomics{
		Area:         r.Area,
		Variedade:    r.Variedade,
		QtdePlantas:  r.QtdePlantas,
		PortaEnxerto: r.PortaEnxerto,
		DataPlantio:  r.DataPlantio,
		Idade:        r.Idade,
		Falhas:       r.Falhas,
		Espacamento:  r.Espacamento,
		Observacoes:  r.Observacoes,
		Ativo:        true,
	}
	if r.Ativo != nil {
		a.Ativo = *r.Ativo
	}
	return a
}

// empty reports whether no attribute was sent.
func (r AgronomicsRequest) empty() bool {
	return r.Area == nil && r.Variedade == nil && r.QtdePlantas == nil &&
		r.PortaEnxerto == nil && r.DataPlantio == nil && r.Idade == nil &&
		r.Falhas == nil && r.Espacamento == nil && r.Observacoes == nil && r.Ativo == nil
}

// PlotRequest is the body of POST /talhoes and PUT /talhoes/:id.
type PlotRequest struct {
	Codigo *string `json:"codigo" binding:"omitempty,max=50"`
	Tipo   *string `json:"tipo" binding:"omitempty,max=50"`
	Cor    *string `json:"cor" binding:"omitempty,max=20"`
	KmlID  *string `json:"kml_id"`
	Nome   string  `json:"nome" binding:"required,max=200"`
	AgronomicsRequest
}

func (r PlotRequest) toModel(id string) *models.Plot {
	return &models.Plot{
		ID:         id,
		Codigo:     r.Codigo,
		Nome:       r.Nome,
		Tipo:       r.Tipo,
		Cor:        r.Cor,
		KmlID:      r.KmlID,
		Agronomics: r.AgronomicsRequest.toModel(),
	}
}

// SeasonRequest is the body of POST /safras and PUT /safras/:id.
type SeasonRequest struct {
	DataInicialColheita *models.DateInput `json:"data_inicial_colheita"`
	Nome                string            `json:"nome" binding:"required,max=100"`
	IsActive            bool              `json:"is_active"`
}

// toModel resolves a bare anchor date to midnight in loc.
func (r SeasonRequest) toModel(id string, loc *time.Location) *models.Season {
	s := &models.Season{
		ID:       id,
		Nome:     r.Nome,
		IsActive: r.IsActive,
	}
	if r.DataInicialColheita != nil {
		anchor := r.DataInicialColheita.In(loc)
		s.DataInicialColheita = &anchor
	}
	return s
}

// LoadRequest is the body of POST /carregamentos and PUT /carregamentos/:id.
// data accepts epoch milliseconds, RFC 3339 or a YYYY-MM-DD date.
type LoadRequest struct {
	Data      *models.DateInput `json:"data" binding:"required"`
	QteCaixa  *float64          `json:"qte_caixa" binding:"required,gte=0"`
	Motorista *string           `json:"motorista" binding:"omitempty,max=100"`
	Placa     *string           `json:"placa" binding:"omitempty,max=20"`
	TalhaoID  string            `json:"talhao_id" binding:"required"`
	SafraID   string            `json:"safra_id" binding:"required"`
}

// LoadQuery filters GET /carregamentos.
type LoadQuery struct {
	SafraID  string `form:"safra_id"`
	TalhaoID string `form:"talhao_id"`
}

// InitializeSeasonRequest is the body of POST /inicializar-safra.
type InitializeSeasonRequest struct {
	SafraID string `json:"safra_id" binding:"required"`
}

// CloneSeasonRequest is the optional body of POST /safras/:id/clonar-de/:origem_id.
type CloneSeasonRequest struct {
	IncrementarIdade bool `json:"incrementar_idade"`
}

// AttachRequest is the body of POST /talhao-safra. Without attributes the
// plot's base values are copied.
type AttachRequest struct {
	TalhaoID string `json:"talhao_id" binding:"required"`
	SafraID  string `json:"safra_id" binding:"required"`
	AgronomicsRequest
}

// ForecastRequest is the body of PUT /previsoes.
type ForecastRequest struct {
	CaixasPorPlanta *float64 `json:"caixas_por_planta" binding:"required,gte=0"`
	TalhaoID        string   `json:"talhao_id" binding:"required"`
	SafraID         string   `json:"safra_id" binding:"required"`
}
