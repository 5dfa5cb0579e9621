// Command seed loads the sample catalog and accounts, or with -d removes
// all data.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/nicofzzn/ecommerce/internal/config"
	"github.com/nicofzzn/ecommerce/internal/seed"
	"github.com/nicofzzn/ecommerce/migrations"
	"github.com/nicofzzn/ecommerce/pkg/database"
	"github.com/nicofzzn/ecommerce/pkg/logger"
)

func main() {
	destroy := flag.Bool("d", false, "delete all orders, products and users without importing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("proshop-seed", cfg.LogLevel)

	if err := run(cfg, log, *destroy); err != nil {
		log.Error("seed failed", logger.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, destroy bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return err
	}

	s := seed.New(pool, log)
	if destroy {
		return s.Destroy(ctx)
	}
	return s.Import(ctx)
}
