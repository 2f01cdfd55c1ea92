package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marekkolman/rates-engine/config"
	"github.com/marekkolman/rates-engine/internal/ingest"
	"github.com/marekkolman/rates-engine/internal/store"
	"github.com/marekkolman/rates-engine/internal/stream"
	"github.com/marekkolman/rates-engine/pkg/metrics"
	"github.com/marekkolman/rates-engine/pkg/models"
	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

// Seed levels for the simulated feed, mid rates per tenor.
var simInstruments = map[string]map[string]float64{
	"EUR-OIS": {"1Y": 0.0215, "2Y": 0.0222, "5Y": 0.0241, "10Y": 0.0263},
	"USD-OIS": {"1Y": 0.0392, "2Y": 0.0381, "5Y": 0.0374, "10Y": 0.0382},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.GetLogger("feed.main").Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.App.LogLevel, cfg.App.Environment)
	log := logger.GetLogger("feed.main")
	log.Infof("Starting %s quote feed", cfg.App.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := metrics.NewRecorder()
	quoteStore := store.NewQuoteStore()

	hub := stream.NewHub(quoteStore, recorder)
	go hub.Run(ctx)

	feedCfg := ingest.Config{
		Brokers: cfg.Feed.Brokers,
		Topic:   cfg.Feed.Topic,
		GroupID: cfg.Feed.GroupID,
	}

	consumer, err := ingest.NewConsumer(feedCfg, quoteStore, recorder)
	if err != nil {
		log.Fatalf("Failed to create feed consumer: %v", err)
	}
	defer consumer.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Run(gctx)
	})

	if cfg.Feed.Simulate {
		publisher, perr := ingest.NewPublisher(feedCfg)
		if perr != nil {
			log.Fatalf("Failed to create feed publisher: %v", perr)
		}
		defer publisher.Close()

		g.Go(func() error {
			return simulate(gctx, publisher, cfg.Feed.Interval)
		})
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Infof("Received signal %v, initiating shutdown", sig)
		cancel()
	case <-gctx.Done():
	}

	if err := g.Wait(); err != nil {
		log.Errorf("Feed error: %v", err)
	}
	log.Info("Shutdown complete")
}

// simulate publishes random-walk quotes around the seed levels.
func simulate(ctx context.Context, publisher *ingest.Publisher, interval time.Duration) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	levels := make(map[string]map[string]float64, len(simInstruments))
	for instrument, tenors := range simInstruments {
		levels[instrument] = make(map[string]float64, len(tenors))
		for tenor, mid := range tenors {
			levels[instrument][tenor] = mid
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for instrument, tenors := range levels {
				for tenor := range tenors {
					levels[instrument][tenor] += (rng.Float64() - 0.5) * 2e-4
					err := publisher.Publish(ctx, models.Quote{
						Instrument: instrument,
						Tenor:      tenor,
						Value:      levels[instrument][tenor],
						Source:     "simulator",
						Timestamp:  time.Now().UTC(),
					})
					if err != nil {
						return err
					}
				}
			}
		}
	}
}
