package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"warehouse-rag/internal/config"
	"warehouse-rag/internal/logger"
	"warehouse-rag/internal/simulator"
	"warehouse-rag/internal/store"
)

func main() {
	var cfgPath string
	var interval time.Duration
	var seed int64
	var verbose bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/warehouse-rag/config.yaml if not provided)")
	flag.DurationVar(&interval, "interval", 10*time.Second, "Delay between event batches")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "Random seed (fixed seed gives a reproducible run)")
	flag.BoolVar(&verbose, "verbose", false, "Log each simulated event")
	flag.Parse()
	logger.SetVerbose(verbose)

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	sim := simulator.New(store.New(cfg.Dataset.Path), interval, seed)
	if err := sim.EnsureSeeded(); err != nil {
		log.Fatalf("seeding dataset failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("simulating warehouse events on %s every %s", cfg.Dataset.Path, interval)
	if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("simulator failed: %v", err)
	}
}
