package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/marekkolman/rates-engine/config"
	"github.com/marekkolman/rates-engine/internal/store"
	"github.com/marekkolman/rates-engine/internal/stream"
	"github.com/marekkolman/rates-engine/pkg/api"
	"github.com/marekkolman/rates-engine/pkg/metrics"
	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.GetLogger("api.main").Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.App.LogLevel, cfg.App.Environment)
	log := logger.GetLogger("api.main")
	log.Infof("Starting %s API service", cfg.App.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := metrics.NewRecorder()

	curveStore := store.NewCurveStore()
	volStore := store.NewVolStore()
	quoteStore := store.NewQuoteStore()

	hub := stream.NewHub(quoteStore, recorder)
	go hub.Run(ctx)

	apiServer := api.NewServer(
		api.Config{
			Host:         cfg.API.Host,
			Port:         cfg.API.Port,
			ReadTimeout:  cfg.API.ReadTimeout,
			WriteTimeout: cfg.API.WriteTimeout,
			RateLimit:    cfg.API.RateLimit,
			RateBurst:    cfg.API.RateBurst,
		},
		curveStore,
		volStore,
		quoteStore,
		hub,
		recorder,
	)

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Errorf("API server error: %v", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Infof("Received signal %v, initiating shutdown", sig)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Errorf("API server shutdown error: %v", err)
	}

	log.Info("Shutdown complete")
}
