// Package snapshot holds the immutable, cluster-annotated catalog that
// queries read from.
package snapshot

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/lapmatch/internal/domain"
	"github.com/kailas-cloud/lapmatch/internal/domain/catalog"
	"github.com/kailas-cloud/lapmatch/internal/domain/cluster"
	"github.com/kailas-cloud/lapmatch/internal/domain/feature"
)

// Meta describes where a snapshot came from.
type Meta struct {
	Version  uint64
	Source   string
	LoadedAt time.Time
}

// Snapshot is a fully built catalog: items in scan order with cluster ids,
// their feature vectors and an id index. Never mutated after Build.
type Snapshot struct {
	meta       Meta
	items      []catalog.Item
	vectors    [][]float64
	index      map[string]int
	specs      []feature.Spec
	k          int
	sizes      []int
	malformed  int
	iterations int
	converged  bool
}

// Build normalizes items, clusters them and returns the resulting snapshot.
// Duplicate ids and invalid feature sets are configuration errors.
func Build(items []catalog.Item, specs []feature.Spec, opts cluster.Options, meta Meta) (*Snapshot, error) {
	index := make(map[string]int, len(items))
	for i := range items {
		id := items[i].ID()
		if _, dup := index[id]; dup {
			return nil, domain.ConfigError("duplicate catalog id %q", id)
		}
		index[id] = i
	}

	vectors, err := feature.Normalize(items, specs)
	if err != nil {
		return nil, fmt.Errorf("normalize features: %w", err)
	}

	res, err := cluster.Build(vectors, opts)
	if err != nil {
		return nil, domain.ConfigError("build clusters: %v", err)
	}

	annotated := make([]catalog.Item, len(items))
	malformed := 0
	for i := range items {
		annotated[i] = items[i].WithCluster(res.Assignments[i])
		if items[i].Malformed() {
			malformed++
		}
	}

	return &Snapshot{
		meta:       meta,
		items:      annotated,
		vectors:    vectors,
		index:      index,
		specs:      append([]feature.Spec(nil), specs...),
		k:          res.K,
		sizes:      cluster.Sizes(res.Assignments, res.K),
		malformed:  malformed,
		iterations: res.Iterations,
		converged:  res.Converged,
	}, nil
}

// Meta returns the snapshot provenance.
func (s *Snapshot) Meta() Meta { return s.meta }

// Items returns the catalog in scan order. The slice is shared and must be
// treated as read-only.
func (s *Snapshot) Items() []catalog.Item { return s.items }

// Len returns the number of catalog items.
func (s *Snapshot) Len() int { return len(s.items) }

// Position returns the scan position of an item id.
func (s *Snapshot) Position(id string) (int, bool) {
	p, ok := s.index[id]
	return p, ok
}

// Item looks up an item by id.
func (s *Snapshot) Item(id string) (catalog.Item, error) {
	p, ok := s.index[id]
	if !ok {
		return catalog.Item{}, fmt.Errorf("item %q: %w", id, domain.ErrNotFound)
	}
	return s.items[p], nil
}

// Vector returns the feature vector of the item at scan position p.
func (s *Snapshot) Vector(p int) []float64 { return s.vectors[p] }

// Features returns the feature set the vectors were built with.
func (s *Snapshot) Features() []feature.Spec { return s.specs }

// K returns the configured cluster count.
func (s *Snapshot) K() int { return s.k }

// ClusterSizes returns the member count per cluster id.
func (s *Snapshot) ClusterSizes() []int { return append([]int(nil), s.sizes...) }

// Malformed returns how many items failed coercion at ingestion.
func (s *Snapshot) Malformed() int { return s.malformed }

// Iterations returns how many k-means iterations ran.
func (s *Snapshot) Iterations() int { return s.iterations }

// Converged reports whether k-means stopped because assignments settled.
func (s *Snapshot) Converged() bool { return s.converged }
