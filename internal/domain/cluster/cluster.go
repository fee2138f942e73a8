// Package cluster partitions feature vectors into a fixed number of
// similarity clusters with Lloyd's k-means.
package cluster

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/kailas-cloud/lapmatch/internal/domain/feature"
)

// Defaults for Options.
const (
	DefaultK             = 5
	DefaultSeed          = 42
	DefaultMaxIterations = 100
)

// Options configures a clustering run.
type Options struct {
	K             int
	Seed          uint64
	MaxIterations int
}

// Result is the outcome of a clustering run.
type Result struct {
	// Assignments holds one cluster id per vector, index-aligned with the input.
	Assignments []int
	K           int
	Iterations  int
	Converged   bool
}

// Build partitions vectors into exactly opts.K clusters. Centroid seeding is
// driven by opts.Seed, so the same input and seed always produce the same
// assignments. Empty clusters are a legal outcome.
func Build(vectors [][]float64, opts Options) (Result, error) {
	if opts.K <= 0 {
		return Result{}, fmt.Errorf("k must be positive, got %d", opts.K)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}

	res := Result{Assignments: make([]int, len(vectors)), K: opts.K}
	if len(vectors) == 0 {
		res.Converged = true
		return res, nil
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return Result{}, fmt.Errorf("vector %d has %d dimensions, want %d", i, len(v), dim)
		}
		res.Assignments[i] = -1
	}

	centroids := seedCentroids(vectors, opts.K, opts.Seed)

	for iter := 1; iter <= opts.MaxIterations; iter++ {
		res.Iterations = iter
		changed := assign(vectors, centroids, res.Assignments)
		if !changed {
			res.Converged = true
			break
		}
		recompute(vectors, res.Assignments, centroids)
	}
	return res, nil
}

// seedCentroids picks the first centroid with a PCG generator and each
// following one by farthest-first traversal over the remaining vectors
// (ties go to the lower index). With fewer vectors than k the surplus
// centroids repeat earlier ones; ties in assignment resolve to the lower
// cluster id, so the repeats stay empty.
func seedCentroids(vectors [][]float64, k int, seed uint64) [][]float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	n := min(k, len(vectors))
	chosen := make([]int, 0, n)
	picked := make([]bool, len(vectors))

	first := rng.IntN(len(vectors))
	chosen = append(chosen, first)
	picked[first] = true

	// nearest[i] is the distance from vector i to its closest chosen centroid.
	nearest := make([]float64, len(vectors))
	for i, v := range vectors {
		nearest[i] = feature.Distance(v, vectors[first])
	}

	for len(chosen) < n {
		next := -1
		for i := range vectors {
			if picked[i] {
				continue
			}
			if next < 0 || nearest[i] > nearest[next] {
				next = i
			}
		}
		chosen = append(chosen, next)
		picked[next] = true
		for i, v := range vectors {
			nearest[i] = math.Min(nearest[i], feature.Distance(v, vectors[next]))
		}
	}

	centroids := make([][]float64, k)
	for c := 0; c < k; c++ {
		centroids[c] = append([]float64(nil), vectors[chosen[c%n]]...)
	}
	return centroids
}

// assign moves every vector to its nearest centroid and reports whether any
// assignment changed.
func assign(vectors, centroids [][]float64, assignments []int) bool {
	changed := false
	for i, v := range vectors {
		best := 0
		bestDist := feature.Distance(v, centroids[0])
		for c := 1; c < len(centroids); c++ {
			if d := feature.Distance(v, centroids[c]); d < bestDist {
				best, bestDist = c, d
			}
		}
		if assignments[i] != best {
			assignments[i] = best
			changed = true
		}
	}
	return changed
}

// recompute sets each centroid to the mean of its members. A cluster with
// no members keeps its previous centroid.
func recompute(vectors [][]float64, assignments []int, centroids [][]float64) {
	for c := range centroids {
		members := 0
		sum := make([]float64, len(centroids[c]))
		for i, a := range assignments {
			if a != c {
				continue
			}
			members++
			for d, x := range vectors[i] {
				sum[d] += x
			}
		}
		if members == 0 {
			continue
		}
		for d := range sum {
			sum[d] /= float64(members)
		}
		centroids[c] = sum
	}
}

// Centroid returns the mean vector of the members of cluster c, or nil when
// the cluster is empty.
func Centroid(vectors [][]float64, assignments []int, c int) []float64 {
	var sum []float64
	members := 0
	for i, a := range assignments {
		if a != c {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(vectors[i]))
		}
		members++
		for d, x := range vectors[i] {
			sum[d] += x
		}
	}
	for d := range sum {
		sum[d] /= float64(members)
	}
	return sum
}

// Sizes returns the member count of every cluster id in [0, k).
func Sizes(assignments []int, k int) []int {
	sizes := make([]int, k)
	for _, a := range assignments {
		if a >= 0 && a < k {
			sizes[a]++
		}
	}
	return sizes
}
