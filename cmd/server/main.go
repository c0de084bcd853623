package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aosanya/liftkernel/internal/agents"
	"github.com/aosanya/liftkernel/internal/ai"
	"github.com/aosanya/liftkernel/internal/api"
	"github.com/aosanya/liftkernel/internal/config"
	"github.com/aosanya/liftkernel/internal/coordinator"
	"github.com/aosanya/liftkernel/internal/driver"
	"github.com/aosanya/liftkernel/internal/forecast"
	"github.com/aosanya/liftkernel/internal/health"
	"github.com/aosanya/liftkernel/internal/historical"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
	"github.com/aosanya/liftkernel/internal/runtime"
	"github.com/aosanya/liftkernel/internal/validator"
	"github.com/sirupsen/logrus"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("liftkernel %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger.WithFields(logrus.Fields{"version": version, "build_time": buildTime}).Info("starting liftkernel")

	model := pumpmodel.NewDefault()

	modelParams := forecast.DefaultModel()
	if cfg.Forecaster.ModelPath != "" {
		loaded, err := forecast.LoadModel(cfg.Forecaster.ModelPath)
		if err != nil {
			logger.WithError(err).Warn("failed to load forecaster artifact, using defaults")
		} else {
			modelParams = loaded
		}
	}
	forecaster := forecast.New(modelParams)

	dataset, err := buildDataset(cfg.Historical, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize historical dataset")
	}

	llmClient, err := ai.New(ai.Config{
		Provider:    ai.Provider(cfg.LLM.Provider),
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to construct LLM client")
	}

	ids := make([]string, 0, len(model.Specs()))
	for id := range model.Specs() {
		ids = append(ids, id)
	}
	tracker := runtime.NewTracker(ids, logger)

	registry := agents.NewRegistry(
		agents.NewInflowAgent(llmClient),
		agents.NewCostAgent(llmClient),
		agents.NewEfficiencyAgent(model, llmClient),
		agents.NewSafetyAgent(model, llmClient),
		agents.NewSmoothnessAgent(model, llmClient),
		agents.NewComplianceAgent(model, llmClient),
	)

	coord := coordinator.New(coordinator.Config{
		LLM:     llmClient,
		Model:   model,
		Logger:  logger,
		Timeout: cfg.CoordinatorDeadline(),
	})
	valid := validator.New(model)

	d := driver.New(driver.Config{
		Model:         model,
		Forecaster:    forecaster,
		Dataset:       dataset,
		Registry:      registry,
		Coordinator:   coord,
		Validator:     valid,
		Tracker:       tracker,
		AgentDeadline: cfg.AgentDeadline(),
		Logger:        logger,
	})

	reporter := health.NewReporter(
		health.NewForecasterCheck(forecaster),
		health.NewDatasetCheck(dataset),
	)

	server := api.NewServer(api.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		Environment:  "production",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, d, reporter, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("received shutdown signal")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Stop(shutdownCtx); err != nil {
			logger.WithError(err).Error("error during server shutdown")
		}
		cancel()
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("api server stopped with error")
	}

	<-ctx.Done()
	logger.Info("liftkernel stopped")
}

func buildDataset(cfg config.HistoricalConfig, logger *logrus.Logger) (historical.Dataset, error) {
	switch cfg.Backend {
	case "arangodb":
		return historical.NewArangoDataset(historical.ArangoConfig{
			Host:     cfg.ArangoDB.Host,
			Port:     cfg.ArangoDB.Port,
			Database: cfg.ArangoDB.Database,
			Username: cfg.ArangoDB.Username,
			Password: cfg.ArangoDB.Password,
		}, logger)
	default:
		return historical.NewMemoryDataset(nil), nil
	}
}
