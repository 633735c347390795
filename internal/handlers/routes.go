package handlers

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Health      *HealthHandler
	Plots       *PlotHandler
	Seasons     *SeasonHandler
	SeasonPlots *SeasonPlotHandler
	Loads       *LoadHandler
	Forecasts   *ForecastHandler
	Export      *ExportHandler
}

// RegisterRoutes mounts the health checks and the API on router.
func RegisterRoutes(router *gin.Engine, h Handlers) {
	if h.Health != nil {
		router.GET("/health", h.Health.Health)
		router.GET("/health/ready", h.Health.Ready)
	}

	api := router.Group("/")
	if h.Health != nil {
		api.GET("/info", h.Health.Info)
	}

	talhoes := api.Group("/talhoes")
	{
		talhoes.GET("", h.Plots.List)
		talhoes.POST("", h.Plots.Create)
		talhoes.GET("/:id", h.Plots.Get)
		talhoes.PUT("/:id", h.Plots.Update)
		talhoes.DELETE("/:id", h.Plots.Delete)
	}

	safras := api.Group("/safras")
	{
		safras.GET("", h.Seasons.List)
		safras.POST("", h.Seasons.Create)
		safras.GET("/ativa", h.Seasons.Active)
		safras.GET("/:id", h.Seasons.Get)
		safras.PUT("/:id", h.Seasons.Update)
		safras.DELETE("/:id", h.Seasons.Delete)
		safras.GET("/:id/talhoes", h.SeasonPlots.List)
		safras.POST("/:id/clonar-de/:origem_id", h.SeasonPlots.Clone)
		safras.GET("/:id/semanas", h.Loads.Weeks)
		safras.GET("/:id/previsoes", h.Forecasts.Report)
		safras.GET("/:id/carregamentos.xlsx", h.Export.SeasonLoads)
	}

	api.POST("/inicializar-safra", h.SeasonPlots.Initialize)

	overlays := api.Group("/talhao-safra")
	{
		overlays.POST("", h.SeasonPlots.Attach)
		overlays.GET("/:id", h.SeasonPlots.Get)
		overlays.PUT("/:id", h.SeasonPlots.Update)
		overlays.DELETE("/:id", h.SeasonPlots.Delete)
		overlays.POST("/:id/sincronizar", h.SeasonPlots.Sync)
	}

	carregamentos := api.Group("/carregamentos")
	{
		carregamentos.GET("", h.Loads.List)
		carregamentos.POST("", h.Loads.Create)
		carregamentos.GET("/:id", h.Loads.Get)
		carregamentos.PUT("/:id", h.Loads.Update)
		carregamentos.DELETE("/:id", h.Loads.Delete)
	}

	api.GET("/motoristas", h.Forecasts.Drivers)
	api.PUT("/previsoes", h.Forecasts.Save)
}
