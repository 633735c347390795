package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/pomar/internal/harvest"
	"github.com/stwalsh4118/pomar/internal/logger"
	"github.com/stwalsh4118/pomar/internal/models"
	"github.com/stwalsh4118/pomar/internal/repository/memstore"
	"github.com/stwalsh4118/pomar/internal/services"
	"github.com/xuri/excelize/v2"
)

// newAPI wires the real services over an in-memory store.
func newAPI(t *testing.T) (*gin.Engine, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	log := logger.Nop()

	plots := services.NewPlotService(store, log)
	seasons := services.NewSeasonService(store, log)
	loads := services.NewLoadService(store, harvest.NewCalendar(time.UTC), log)

	router := gin.New()
	RegisterRoutes(router, Handlers{
		Health:      NewHealthHandler(nil, "test", time.UTC),
		Plots:       NewPlotHandler(plots),
		Seasons:     NewSeasonHandler(seasons, time.UTC),
		SeasonPlots: NewSeasonPlotHandler(services.NewSeasonPlotService(store, log)),
		Loads:       NewLoadHandler(loads, time.UTC),
		Forecasts:   NewForecastHandler(services.NewForecastService(store, log), services.NewDriverService(store.Drivers(), log)),
		Export:      NewExportHandler(seasons, loads, plots, time.UTC),
	})
	return router, store
}

func decodeInto(t *testing.T, body []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body, v), "body: %s", string(body))
}

func createPlot(t *testing.T, router *gin.Engine, body string) models.Plot {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/talhoes", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p models.Plot
	decodeInto(t, w.Body.Bytes(), &p)
	return p
}

func createSeason(t *testing.T, router *gin.Engine, body string) models.Season {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/safras", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var s models.Season
	decodeInto(t, w.Body.Bytes(), &s)
	return s
}

func createLoad(t *testing.T, router *gin.Engine, body string) models.Load {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/carregamentos", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp LoadCreatedResponse
	decodeInto(t, w.Body.Bytes(), &resp)
	require.NotNil(t, resp.Carregamento)
	return *resp.Carregamento
}

func TestAPI_HarvestScenario(t *testing.T) {
	router, _ := newAPI(t)

	plot := createPlot(t, router, `{"nome":"Talhão 1","codigo":"T1","variedade":"Pera","qtde_plantas":500}`)
	season := createSeason(t, router, `{"nome":"2025","is_active":true,"data_inicial_colheita":"2025-03-03"}`)

	body := func(date string, boxes int) string {
		return `{"data":"` + date + `","qte_caixa":` + jsonNumber(boxes) +
			`,"talhao_id":"` + plot.ID + `","safra_id":"` + season.ID + `","motorista":"  joão "}`
	}

	first := createLoad(t, router, body("2025-03-03", 100))
	assert.Equal(t, 10, first.Semana)
	require.NotNil(t, first.SemanaColheita)
	assert.Equal(t, 1, *first.SemanaColheita)
	assert.Equal(t, float64(100), first.TotalAcumulado)
	require.NotNil(t, first.QtdePlantas)
	assert.Equal(t, 500, *first.QtdePlantas)
	require.NotNil(t, first.Motorista)
	assert.Equal(t, "JOÃO", *first.Motorista)

	second := createLoad(t, router, body("2025-03-10", 50))
	assert.Equal(t, 11, second.Semana)
	require.NotNil(t, second.SemanaColheita)
	assert.Equal(t, 2, *second.SemanaColheita)
	assert.Equal(t, float64(150), second.TotalAcumulado)

	w := doJSON(router, http.MethodGet, "/safras/"+season.ID+"/semanas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var weeks HarvestWeeksResponse
	decodeInto(t, w.Body.Bytes(), &weeks)
	require.Len(t, weeks.Semanas, 2)
	assert.Equal(t, 10, weeks.Semanas[0].SemanaAno)
	assert.Equal(t, 1, weeks.Semanas[0].SemanaColheita)
	assert.Equal(t, 11, weeks.Semanas[1].SemanaAno)
	assert.Equal(t, 2, weeks.Semanas[1].SemanaColheita)

	w = doJSON(router, http.MethodGet, "/motoristas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var drivers DriversResponse
	decodeInto(t, w.Body.Bytes(), &drivers)
	require.Len(t, drivers.Motoristas, 1)
	assert.Equal(t, "JOÃO", drivers.Motoristas[0].Nome)

	// Deleting the first load rewrites the later running total.
	w = doJSON(router, http.MethodDelete, "/carregamentos/"+first.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodGet, "/carregamentos/"+second.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reloaded models.Load
	decodeInto(t, w.Body.Bytes(), &reloaded)
	assert.Equal(t, float64(50), reloaded.TotalAcumulado)
}

func TestAPI_LoadForUnknownSeasonWritesNothing(t *testing.T) {
	router, store := newAPI(t)
	plot := createPlot(t, router, `{"nome":"A"}`)

	w := doJSON(router, http.MethodPost, "/carregamentos",
		`{"data":"2025-03-03","qte_caixa":1,"talhao_id":"`+plot.ID+`","safra_id":"missing"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	counts := store.Counts()
	assert.Zero(t, counts["carregamentos"])
	assert.Zero(t, counts["semanas_colheita"])
	assert.Zero(t, counts["motoristas"])
}

func TestAPI_FarFutureDateIsRejected(t *testing.T) {
	router, store := newAPI(t)
	plot := createPlot(t, router, `{"nome":"A"}`)
	season := createSeason(t, router, `{"nome":"2025","data_inicial_colheita":0}`)

	w := doJSON(router, http.MethodPost, "/carregamentos",
		`{"data":9223372036854775807,"qte_caixa":1,"talhao_id":"`+plot.ID+`","safra_id":"`+season.ID+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/safras", `{"nome":"2300","data_inicial_colheita":"2300-03-01"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	counts := store.Counts()
	assert.Zero(t, counts["carregamentos"])
	assert.Zero(t, counts["semanas_colheita"])
}

func TestAPI_SeasonOverlays(t *testing.T) {
	router, _ := newAPI(t)

	active := createPlot(t, router, `{"nome":"A","idade":4,"falhas":3,"qtde_plantas":100}`)
	createPlot(t, router, `{"nome":"B","ativo":false}`)
	source := createSeason(t, router, `{"nome":"2024"}`)
	target := createSeason(t, router, `{"nome":"2025"}`)

	w := doJSON(router, http.MethodPost, "/inicializar-safra", `{"safra_id":"`+source.ID+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created CreatedCountResponse
	decodeInto(t, w.Body.Bytes(), &created)
	assert.Equal(t, 1, created.Criados)

	w = doJSON(router, http.MethodPost, "/inicializar-safra", `{"safra_id":"`+source.ID+`"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPost, "/safras/"+target.ID+"/clonar-de/"+source.ID, `{"incrementar_idade":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeInto(t, w.Body.Bytes(), &created)
	assert.Equal(t, 1, created.Criados)

	// Cloning again never overwrites; no body is fine.
	w = doJSON(router, http.MethodPost, "/safras/"+target.ID+"/clonar-de/"+source.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeInto(t, w.Body.Bytes(), &created)
	assert.Equal(t, 0, created.Criados)

	w = doJSON(router, http.MethodGet, "/safras/"+target.ID+"/talhoes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing SeasonPlotsResponse
	decodeInto(t, w.Body.Bytes(), &listing)
	require.Len(t, listing.Talhoes, 2)

	var entry services.SeasonPlotEntry
	for _, e := range listing.Talhoes {
		if e.Talhao.ID == active.ID {
			entry = e
		}
	}
	require.NotNil(t, entry.TalhaoSafra)
	require.NotNil(t, entry.Efetivo.Idade)
	assert.Equal(t, 5, *entry.Efetivo.Idade)
	require.NotNil(t, entry.Efetivo.Falhas)
	assert.Equal(t, 0, *entry.Efetivo.Falhas)

	// Edit the overlay then sync it back to the base plot.
	overlayPath := "/talhao-safra/" + entry.TalhaoSafra.ID
	w = doJSON(router, http.MethodPut, overlayPath, `{"qtde_plantas":90,"idade":5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var overlay models.SeasonPlot
	decodeInto(t, w.Body.Bytes(), &overlay)
	require.NotNil(t, overlay.QtdePlantas)
	assert.Equal(t, 90, *overlay.QtdePlantas)
	assert.True(t, overlay.Ativo)

	w = doJSON(router, http.MethodPost, overlayPath+"/sincronizar", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeInto(t, w.Body.Bytes(), &overlay)
	require.NotNil(t, overlay.QtdePlantas)
	assert.Equal(t, 100, *overlay.QtdePlantas)

	w = doJSON(router, http.MethodDelete, overlayPath, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(router, http.MethodGet, overlayPath, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_AttachPlot(t *testing.T) {
	router, _ := newAPI(t)
	plot := createPlot(t, router, `{"nome":"A","variedade":"Pera"}`)
	season := createSeason(t, router, `{"nome":"2025"}`)

	body := `{"talhao_id":"` + plot.ID + `","safra_id":"` + season.ID + `"}`
	w := doJSON(router, http.MethodPost, "/talhao-safra", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var overlay models.SeasonPlot
	decodeInto(t, w.Body.Bytes(), &overlay)
	require.NotNil(t, overlay.Variedade)
	assert.Equal(t, "Pera", *overlay.Variedade)

	w = doJSON(router, http.MethodPost, "/talhao-safra", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAPI_PlotAndSeasonCrud(t *testing.T) {
	router, _ := newAPI(t)

	plot := createPlot(t, router, `{"nome":" A ","codigo":"X1"}`)
	assert.Equal(t, "A", plot.Nome)

	w := doJSON(router, http.MethodPost, "/talhoes", `{"nome":"B","codigo":"X1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPost, "/talhoes", `{"codigo":"X2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, "nome")

	w = doJSON(router, http.MethodPut, "/talhoes/"+plot.ID, `{"nome":"A","ativo":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, http.MethodGet, "/talhoes?ativo=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var plots PlotsResponse
	decodeInto(t, w.Body.Bytes(), &plots)
	assert.Equal(t, 0, plots.Count)

	w = doJSON(router, http.MethodGet, "/talhoes?ativo=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	createSeason(t, router, `{"nome":"old","is_active":true}`)
	newest := createSeason(t, router, `{"nome":"new","is_active":true}`)
	w = doJSON(router, http.MethodGet, "/safras/ativa", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var active models.Season
	decodeInto(t, w.Body.Bytes(), &active)
	assert.Equal(t, newest.ID, active.ID)

	w = doJSON(router, http.MethodGet, "/safras/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodDelete, "/talhoes/"+plot.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAPI_DeleteInUseConflicts(t *testing.T) {
	router, _ := newAPI(t)
	plot := createPlot(t, router, `{"nome":"A"}`)
	season := createSeason(t, router, `{"nome":"2025"}`)
	createLoad(t, router, `{"data":"2025-03-03","qte_caixa":1,"talhao_id":"`+plot.ID+`","safra_id":"`+season.ID+`"}`)

	w := doJSON(router, http.MethodDelete, "/talhoes/"+plot.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = doJSON(router, http.MethodDelete, "/safras/"+season.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAPI_Forecasts(t *testing.T) {
	router, _ := newAPI(t)
	plot := createPlot(t, router, `{"nome":"A","qtde_plantas":100}`)
	season := createSeason(t, router, `{"nome":"2025"}`)
	createLoad(t, router, `{"data":"2025-03-03","qte_caixa":150,"talhao_id":"`+plot.ID+`","safra_id":"`+season.ID+`"}`)

	w := doJSON(router, http.MethodPut, "/previsoes",
		`{"talhao_id":"`+plot.ID+`","safra_id":"`+season.ID+`","caixas_por_planta":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, http.MethodGet, "/safras/"+season.ID+"/previsoes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp ForecastsResponse
	decodeInto(t, w.Body.Bytes(), &resp)
	require.Len(t, resp.Previsoes, 1)
	assert.Equal(t, float64(200), resp.Previsoes[0].Previsto)
	assert.Equal(t, float64(150), resp.Previsoes[0].Realizado)
	require.NotNil(t, resp.Previsoes[0].Razao)
	assert.InDelta(t, 0.75, *resp.Previsoes[0].Razao, 1e-9)

	w = doJSON(router, http.MethodPut, "/previsoes", `{"talhao_id":"x","safra_id":"y"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_ExportSpreadsheet(t *testing.T) {
	router, _ := newAPI(t)
	plot := createPlot(t, router, `{"nome":"Talhão A"}`)
	season := createSeason(t, router, `{"nome":"2025","data_inicial_colheita":"2025-03-03"}`)
	createLoad(t, router, `{"data":"2025-03-03","qte_caixa":10,"talhao_id":"`+plot.ID+`","safra_id":"`+season.ID+`"}`)

	w := doJSON(router, http.MethodGet, "/safras/"+season.ID+"/carregamentos.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "carregamentos-"+season.ID+".xlsx")

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue("Carregamentos", "D3")
	require.NoError(t, err)
	assert.Equal(t, "Talhão A", name)

	w = doJSON(router, http.MethodGet, "/safras/missing/carregamentos.xlsx", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_HealthRoutes(t *testing.T) {
	router, _ := newAPI(t)

	w := doJSON(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info InfoResponse
	decodeInto(t, w.Body.Bytes(), &info)
	assert.Equal(t, "UTC", info.Timezone)
}

func jsonNumber(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
