package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/hospitalops/estadia-api/internal/config"
	"github.com/hospitalops/estadia-api/internal/handler"
	gestionHandler "github.com/hospitalops/estadia-api/internal/handler/gestion"
	patientHandler "github.com/hospitalops/estadia-api/internal/handler/patient"
	uploadHandler "github.com/hospitalops/estadia-api/internal/handler/upload"
	"github.com/hospitalops/estadia-api/internal/ingest"
	"github.com/hospitalops/estadia-api/internal/middleware"
	"github.com/hospitalops/estadia-api/internal/risk"
	"github.com/hospitalops/estadia-api/internal/router"
	gestionService "github.com/hospitalops/estadia-api/internal/service/gestion"
	loaderService "github.com/hospitalops/estadia-api/internal/service/loader"
	patientService "github.com/hospitalops/estadia-api/internal/service/patient"
	"github.com/hospitalops/estadia-api/internal/store"
	"github.com/hospitalops/estadia-api/internal/upstream"
	"github.com/hospitalops/estadia-api/pkg/logger"
	"github.com/hospitalops/estadia-api/pkg/metrics"
)

func main() {
	// .env is only present on developer machines
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.Setup(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	appMetrics := metrics.New("estadia")

	classifier := risk.NewClassifier(risk.Thresholds{
		ProbabilityRed:       cfg.Risk.ProbabilityRed,
		ProbabilityYellow:    cfg.Risk.ProbabilityYellow,
		StayRedDays:          cfg.Risk.StayRedDays,
		StayYellowDays:       cfg.Risk.StayYellowDays,
		PendingDischargeDays: cfg.Risk.PendingDischargeDays,
	})

	st := store.New()
	mapper := ingest.NewMapper(classifier, appLogger)
	pipeline := ingest.NewPipeline(mapper, []rune(cfg.Data.Delimiter)[0], appLogger)

	patientSvc := patientService.NewService(st, classifier, appLogger)
	gestionSvc := gestionService.NewService(st, appLogger)

	respCache := middleware.NewResponseCache(
		time.Duration(cfg.API.CacheTTLSeconds)*time.Second,
		"/api/stats", "/api/services",
	)

	loaderSvc := loaderService.NewService(
		pipeline, st,
		cfg.Data.PatientsCSV, cfg.Data.GestionCSV,
		patientSvc, respCache, appMetrics, appLogger,
	)
	// The dashboard is useless without data: a failed first load is fatal.
	if err := loaderSvc.Reload(); err != nil {
		log.Fatal().Err(err).Msg("failed to load initial snapshot")
	}

	upstreamClient := upstream.NewClient(cfg.Upstream, appMetrics, appLogger)

	r := router.New(cfg, respCache,
		handler.NewHealthHandler(st),
		patientHandler.NewHandler(patientSvc, loaderSvc, st),
		gestionHandler.NewHandler(gestionSvc),
		uploadHandler.NewHandler(cfg.Data.UploadDir, upstreamClient, appLogger),
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
