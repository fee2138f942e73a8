// Package catalog owns the published catalog snapshot: it loads items from a
// source, builds a clustered snapshot and swaps it in atomically.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lapmatch/internal/domain"
	domcat "github.com/kailas-cloud/lapmatch/internal/domain/catalog"
	"github.com/kailas-cloud/lapmatch/internal/domain/cluster"
	"github.com/kailas-cloud/lapmatch/internal/domain/feature"
	"github.com/kailas-cloud/lapmatch/internal/domain/snapshot"
	"github.com/kailas-cloud/lapmatch/internal/logger"
	"github.com/kailas-cloud/lapmatch/internal/metrics"
)

// Stats summarizes the published snapshot.
type Stats struct {
	Version      uint64    `json:"version"`
	Source       string    `json:"source"`
	LoadedAt     time.Time `json:"loaded_at"`
	Items        int       `json:"items"`
	Malformed    int       `json:"malformed"`
	Clusters     int       `json:"clusters"`
	ClusterSizes []int     `json:"cluster_sizes"`
	Iterations   int       `json:"iterations"`
	Converged    bool      `json:"converged"`
	Features     []string  `json:"features"`
}

// Service loads and serves catalog snapshots.
type Service struct {
	source  Source
	specs   []feature.Spec
	cluster cluster.Options

	current atomic.Pointer[snapshot.Snapshot]
	version atomic.Uint64
	// mu serializes loads; readers never take it.
	mu  sync.Mutex
	now func() time.Time
}

// New creates a catalog service. Nothing is loaded until Load is called.
func New(source Source, specs []feature.Spec, opts cluster.Options) *Service {
	return &Service{source: source, specs: specs, cluster: opts, now: time.Now}
}

// Load reads the source, builds a new snapshot and publishes it. On failure
// the previously published snapshot stays in place.
func (s *Service) Load(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = logger.WithFields(ctx, zap.String("source", s.source.Name()))
	log := logger.FromContext(ctx)
	start := s.now()

	snap, err := s.build(ctx)
	if err != nil {
		metrics.CatalogReloadsTotal.WithLabelValues("error").Inc()
		log.Error("Catalog load failed", zap.Error(err))
		return Stats{}, err
	}

	s.current.Store(snap)
	metrics.CatalogReloadsTotal.WithLabelValues("ok").Inc()
	metrics.ObserveSnapshot(snap.Len(), snap.Malformed(), snap.ClusterSizes())

	stats := statsOf(snap)
	log.Info("Catalog loaded",
		zap.Uint64("version", stats.Version),
		zap.Int("items", stats.Items),
		zap.Int("malformed", stats.Malformed),
		zap.Ints("cluster_sizes", stats.ClusterSizes),
		zap.Int("iterations", stats.Iterations),
		zap.Bool("converged", stats.Converged),
		zap.Duration("duration", s.now().Sub(start)),
	)
	return stats, nil
}

func (s *Service) build(ctx context.Context) (*snapshot.Snapshot, error) {
	items, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", s.source.Name(), err)
	}
	if len(items) == 0 {
		return nil, domain.ConfigError("catalog %s is empty", s.source.Name())
	}

	meta := snapshot.Meta{
		Version:  s.version.Load() + 1,
		Source:   s.source.Name(),
		LoadedAt: s.now().UTC(),
	}
	snap, err := snapshot.Build(items, s.specs, s.cluster, meta)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	s.version.Store(meta.Version)
	return snap, nil
}

// Current returns the published snapshot.
func (s *Service) Current() (*snapshot.Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, domain.ErrCatalogNotLoaded
	}
	return snap, nil
}

// Ready reports whether a snapshot has been published.
func (s *Service) Ready(_ context.Context) error {
	_, err := s.Current()
	return err
}

// Stats describes the published snapshot.
func (s *Service) Stats() (Stats, error) {
	snap, err := s.Current()
	if err != nil {
		return Stats{}, err
	}
	return statsOf(snap), nil
}

// Item looks up a catalog item by id in the published snapshot.
func (s *Service) Item(id string) (domcat.Item, error) {
	snap, err := s.Current()
	if err != nil {
		return domcat.Item{}, err
	}
	return snap.Item(id)
}

func statsOf(snap *snapshot.Snapshot) Stats {
	meta := snap.Meta()
	specs := snap.Features()
	names := make([]string, len(specs))
	for i, f := range specs {
		names[i] = f.Name
	}
	return Stats{
		Version:      meta.Version,
		Source:       meta.Source,
		LoadedAt:     meta.LoadedAt,
		Items:        snap.Len(),
		Malformed:    snap.Malformed(),
		Clusters:     snap.K(),
		ClusterSizes: snap.ClusterSizes(),
		Iterations:   snap.Iterations(),
		Converged:    snap.Converged(),
		Features:     names,
	}
}
