package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/internal/infrastructure/seed"
	"go.uber.org/zap"
)

func main() {
	var (
		planPath string
		logLevel string
		dryRun   bool
	)
	flag.StringVar(&planPath, "file", "seeds/demo.yaml", "Seed plan (YAML)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate the plan and exit")
	flag.Parse()

	logCfg := logger.DefaultConfig()
	logCfg.Level = logLevel
	logCfg.TimeLayout = "2006-01-02 15:04:05"
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	plan, err := seed.LoadPlan(planPath)
	if err != nil {
		log.Fatal("Failed to load seed plan", zap.String("file", planPath), zap.Error(err))
	}
	if dryRun {
		log.Info("Seed plan is valid",
			zap.Int("accounts", len(plan.Accounts)),
			zap.Int("products", len(plan.Products)),
			zap.Int("fake_products_per_seller", plan.Fake.ProductsPerSeller),
		)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	seeder := seed.NewSeeder(
		persistence.NewGormAccountRepository(db.DB),
		persistence.NewGormProductRepository(db.DB),
		log,
	)
	if _, err := seeder.Run(ctx, plan); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
}
