package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lapmatch/internal/config"
	dbRedis "github.com/kailas-cloud/lapmatch/internal/db/redis"
	"github.com/kailas-cloud/lapmatch/internal/domain/cluster"
	"github.com/kailas-cloud/lapmatch/internal/domain/feature"
	"github.com/kailas-cloud/lapmatch/internal/domain/preference"
	logpkg "github.com/kailas-cloud/lapmatch/internal/logger"
	"github.com/kailas-cloud/lapmatch/internal/metrics"
	catalogrepo "github.com/kailas-cloud/lapmatch/internal/repository/catalog"
	"github.com/kailas-cloud/lapmatch/internal/repository/resultcache"
	chiTransport "github.com/kailas-cloud/lapmatch/internal/transport/chi"
	catalogc "github.com/kailas-cloud/lapmatch/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/lapmatch/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/lapmatch/internal/usecase/recommend"
	"github.com/kailas-cloud/lapmatch/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting lapmatch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_source", cfg.Catalog.Source),
	)

	metrics.RegisterRecommendMetrics()
	metrics.RegisterCatalogMetrics()

	ctx := context.Background()

	// Pass nil interface (not typed nil pointer!) when no database is configured.
	// Go gotcha: (*dbRedis.Store)(nil) wrapped in DBPinger != nil.
	var dbPinger healthuc.DBPinger
	var store *dbRedis.Store
	if cfg.UsesDatabase() {
		metrics.RegisterDBMetrics()
		store, err = dbRedis.NewStore(dbRedis.Config{
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
		logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))
		dbPinger = store
	}

	var source catalogc.Source
	switch cfg.Catalog.Source {
	case config.SourceRedis:
		source = catalogrepo.NewRedis(store, cfg.Storage.KeyPrefix).WithBatchSize(cfg.Storage.BatchSize)
	default:
		fs, err := catalogrepo.NewFileSource(cfg.Catalog.Path, cfg.Catalog.Format)
		if err != nil {
			logger.Fatal("Invalid catalog file", zap.Error(err))
		}
		source = fs
	}

	catalogSvc := catalogc.New(source, featureSpecs(cfg.Recommend), cluster.Options{
		K:             cfg.Recommend.Clusters,
		Seed:          cfg.Recommend.Seed,
		MaxIterations: cfg.Recommend.MaxIterations,
	})
	loadCtx := logpkg.ContextWithLogger(ctx, logger)
	if _, err := catalogSvc.Load(loadCtx); err != nil {
		logger.Fatal("Initial catalog load failed", zap.String("source", source.Name()), zap.Error(err))
	}

	recommendSvc := recommenduc.New(catalogSvc, recommendOptions(cfg.Recommend))
	if cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
		recommendSvc.WithCache(resultcache.New(store, cfg.Storage.KeyPrefix, ttl, metrics.RecommendCacheTotal, logger))
		logger.Info("Result cache enabled", zap.Duration("ttl", ttl))
	}
	healthSvc := healthuc.New(catalogSvc, dbPinger)

	server := chiTransport.NewServer(recommendSvc, catalogSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// featureSpecs maps configured features onto the domain list; an empty list
// selects the default feature set.
func featureSpecs(rc config.RecommendConfig) []feature.Spec {
	if len(rc.Features) == 0 {
		return feature.DefaultSpecs()
	}
	specs := make([]feature.Spec, len(rc.Features))
	for i, f := range rc.Features {
		specs[i] = feature.Spec{Name: f.Name, Weight: f.Weight}
	}
	return specs
}

func recommendOptions(rc config.RecommendConfig) recommenduc.Options {
	return recommenduc.Options{
		MinViableCandidates:    rc.MinViableCandidates,
		SmallCandidateCount:    rc.SmallCandidateCount,
		MaxResults:             rc.MaxResults,
		PriceRelaxFraction:     rc.PriceRelaxFraction,
		PerformanceRelaxMargin: rc.PerformanceRelaxMargin,
		PortabilityRelaxMargin: rc.PortabilityRelaxMargin,
		ScreenTolerance:        rc.ScreenTolerance,
		LargeScreenTolerance:   rc.LargeScreenTolerance,
		LargeScreenThreshold:   rc.LargeScreenThreshold,
		CrossClusterSimilarity: rc.CrossClusterSimilarity,
		Bounds: preference.Bounds{
			Price:       toRange(rc.Bounds.Price),
			Performance: toRange(rc.Bounds.Performance),
			Portability: toRange(rc.Bounds.Portability),
		},
	}
}

func toRange(r config.RangeConfig) preference.Range {
	return preference.Range{Min: r.Min, Max: r.Max}
}
