package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/pomar/internal/config"
	"github.com/stwalsh4118/pomar/internal/database"
	apierrors "github.com/stwalsh4118/pomar/internal/errors"
	"github.com/stwalsh4118/pomar/internal/handlers"
	"github.com/stwalsh4118/pomar/internal/harvest"
	"github.com/stwalsh4118/pomar/internal/logger"
	"github.com/stwalsh4118/pomar/internal/middleware"
	"github.com/stwalsh4118/pomar/internal/repository"
	"github.com/stwalsh4118/pomar/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithOptions(logger.Options{Env: cfg.Server.Env, Level: cfg.Server.LogLevel})
	log.Info("Starting Pomar API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"timezone":    cfg.Farm.Timezone,
	})

	apierrors.UseJSONFieldNames()

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if cfg.Database.Migrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatal("Failed to apply schema", err, nil)
		}
		log.Info("Schema applied", nil)
	}

	store := repository.NewStore(db)
	calendar := harvest.NewCalendar(cfg.Farm.Location)

	plotService := services.NewPlotService(store, log)
	seasonService := services.NewSeasonService(store, log)
	loadService := services.NewLoadService(store, calendar, log)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log, "/health", "/health/ready"))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	handlers.RegisterRoutes(router, handlers.Handlers{
		Health:      handlers.NewHealthHandler(db, cfg.Server.Env, cfg.Farm.Location),
		Plots:       handlers.NewPlotHandler(plotService),
		Seasons:     handlers.NewSeasonHandler(seasonService, cfg.Farm.Location),
		SeasonPlots: handlers.NewSeasonPlotHandler(services.NewSeasonPlotService(store, log)),
		Loads:       handlers.NewLoadHandler(loadService, cfg.Farm.Location),
		Forecasts: handlers.NewForecastHandler(
			services.NewForecastService(store, log),
			services.NewDriverService(store.Drivers(), log),
		),
		Export: handlers.NewExportHandler(seasonService, loadService, plotService, cfg.Farm.Location),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
