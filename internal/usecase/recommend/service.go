package recommend

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lapmatch/internal/domain/preference"
	"github.com/kailas-cloud/lapmatch/internal/domain/recommendation"
	"github.com/kailas-cloud/lapmatch/internal/domain/snapshot"
	"github.com/kailas-cloud/lapmatch/internal/logger"
	"github.com/kailas-cloud/lapmatch/internal/metrics"
)

// Service runs the recommendation pipeline against the current snapshot.
type Service struct {
	catalog SnapshotProvider
	opts    Options
	cache   ResultCache
}

// New creates a recommendation service.
func New(catalog SnapshotProvider, opts Options) *Service {
	return &Service{catalog: catalog, opts: opts}
}

// WithCache serves repeated queries from c until the catalog version changes.
func (s *Service) WithCache(c ResultCache) *Service {
	s.cache = c
	return s
}

// Recommend validates p, filters the catalog, relaxes once when too few
// candidates survive, and returns the best match with similar items.
// A rejected preference returns the error-status result together with a
// *domain.ValidationError. An empty candidate set is not an error.
func (s *Service) Recommend(ctx context.Context, p *preference.Preference) (recommendation.Result, error) {
	return s.run(ctx, p, false)
}

// RecommendRelaxed skips the strict pass and runs only the relaxed one.
func (s *Service) RecommendRelaxed(ctx context.Context, p *preference.Preference) (recommendation.Result, error) {
	return s.run(ctx, p, true)
}

func (s *Service) run(ctx context.Context, p *preference.Preference, relaxedOnly bool) (recommendation.Result, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	if err := preference.Validate(p, s.opts.Bounds); err != nil {
		metrics.RecommendQueriesTotal.WithLabelValues("invalid").Inc()
		return recommendation.Invalid(err.Error()), fmt.Errorf("validate preference: %w", err)
	}

	snap, err := s.catalog.Current()
	if err != nil {
		return recommendation.Result{}, fmt.Errorf("current catalog: %w", err)
	}
	version := snap.Meta().Version

	if s.cache != nil {
		if res, ok := s.cache.Get(ctx, version, relaxedOnly, p); ok {
			metrics.RecommendQueriesTotal.WithLabelValues(queryStatus(res)).Inc()
			log.Info("recommendation",
				zap.String("status", queryStatus(res)),
				zap.Int("results", resultCount(res)),
				zap.Bool("relaxed", res.Relaxed),
				zap.Bool("cached", true),
				zap.Uint64("catalog_version", version),
				zap.Duration("duration", time.Since(start)),
			)
			return res, nil
		}
	}

	items := snap.Items()

	var pass filterResult
	relaxed := relaxedOnly
	if !relaxedOnly {
		pass = s.opts.filter(items, p, true)
		log.Debug("Strict filter pass",
			zap.Array("trace", pass.trace),
			zap.Bool("deferred", pass.deferred),
		)
		relaxed = pass.deferred || len(pass.candidates) < s.opts.MinViableCandidates
	}
	if relaxed {
		pass = s.opts.filter(items, s.opts.relax(p), false)
		log.Debug("Relaxed filter pass", zap.Array("trace", pass.trace))
		metrics.RecommendRelaxationsTotal.Inc()
	}

	metrics.RecommendCandidates.Observe(float64(len(pass.candidates)))

	res := s.assemble(snap, pass.candidates, relaxed)

	duration := time.Since(start)
	metrics.RecommendDuration.Observe(duration.Seconds())
	status := queryStatus(res)
	metrics.RecommendQueriesTotal.WithLabelValues(status).Inc()

	log.Info("recommendation",
		zap.String("status", status),
		zap.Int("candidates", len(pass.candidates)),
		zap.Int("results", resultCount(res)),
		zap.Bool("relaxed", relaxed),
		zap.Uint64("catalog_version", version),
		zap.Duration("duration", duration),
	)

	if s.cache != nil {
		s.cache.Put(ctx, version, relaxedOnly, p, res)
	}
	return res, nil
}

func (s *Service) assemble(snap *snapshot.Snapshot, candidates []int, relaxed bool) recommendation.Result {
	if len(candidates) == 0 {
		return recommendation.Empty(relaxed)
	}
	items := snap.Items()
	best := selectBest(items, candidates)
	similar := s.opts.neighbors(snap, candidates, best, s.opts.MaxResults-1)
	entries := format(items, best, similar, s.opts.MaxResults)

	return recommendation.Result{
		Status:                 recommendation.StatusSuccess,
		BestMatch:              &entries[0],
		SimilarRecommendations: entries[1:],
		TotalMatches:           len(candidates),
		Relaxed:                relaxed,
	}
}

func queryStatus(r recommendation.Result) string {
	if r.Status != recommendation.StatusSuccess {
		return "empty"
	}
	return "success"
}

func resultCount(r recommendation.Result) int {
	if r.BestMatch == nil {
		return 0
	}
	return 1 + len(r.SimilarRecommendations)
}
