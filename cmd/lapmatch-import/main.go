// Command lapmatch-import copies a laptop catalog between a CSV or Parquet
// file and Redis.
//
//	lapmatch-import -file data/laptops.csv
//	lapmatch-import -export -file snapshot.parquet
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lapmatch/internal/config"
	dbRedis "github.com/kailas-cloud/lapmatch/internal/db/redis"
	"github.com/kailas-cloud/lapmatch/internal/domain"
	logpkg "github.com/kailas-cloud/lapmatch/internal/logger"
	catalogrepo "github.com/kailas-cloud/lapmatch/internal/repository/catalog"
)

func main() {
	file := flag.String("file", "", "catalog file to import from (or export to with -export)")
	format := flag.String("format", "", "file format: csv or parquet (default: from extension)")
	export := flag.Bool("export", false, "write the Redis catalog to -file instead of importing")
	flag.Parse()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	path := *file
	if path == "" {
		path = cfg.Catalog.Path
	}
	if path == "" {
		logger.Fatal("No catalog file given; pass -file or set catalog.path")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logpkg.ContextWithLogger(ctx, logger)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	repo := catalogrepo.NewRedis(store, cfg.Storage.KeyPrefix).WithBatchSize(cfg.Storage.BatchSize)

	if *export {
		if err := exportCatalog(ctx, repo, path, *format, logger); err != nil {
			logger.Fatal("Export failed", zap.Error(err))
		}
		return
	}
	if err := importCatalog(ctx, repo, path, *format, logger); err != nil {
		logger.Fatal("Import failed", zap.Error(err))
	}
}

func importCatalog(ctx context.Context, repo *catalogrepo.Redis, path, format string, logger *zap.Logger) error {
	src, err := catalogrepo.NewFileSource(path, format)
	if err != nil {
		return err
	}
	start := time.Now()
	items, err := src.Load(ctx)
	if err != nil {
		return err
	}
	if err := repo.Replace(ctx, items, src.Name()); err != nil {
		return err
	}
	logger.Info("Catalog imported",
		zap.String("from", src.Name()),
		zap.String("to", repo.Name()),
		zap.Int("items", len(items)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func exportCatalog(ctx context.Context, repo *catalogrepo.Redis, path, format string, logger *zap.Logger) error {
	manifest, err := repo.Manifest(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		logger.Warn("Catalog has no manifest; exporting anyway")
	case err != nil:
		return err
	default:
		logger.Info("Exporting catalog",
			zap.String("imported_from", manifest.Source),
			zap.Time("imported_at", manifest.ImportedAt),
			zap.Int("items", manifest.Count),
		)
	}

	items, err := repo.Load(ctx)
	if err != nil {
		return err
	}
	if err := catalogrepo.WriteFile(path, format, items); err != nil {
		return err
	}
	logger.Info("Catalog exported", zap.String("path", path), zap.Int("items", len(items)))
	return nil
}
