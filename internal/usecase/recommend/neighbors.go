package recommend

import (
	"math"
	"slices"

	"github.com/kailas-cloud/lapmatch/internal/domain/feature"
	"github.com/kailas-cloud/lapmatch/internal/domain/snapshot"
)

type neighbor struct {
	pos        int
	similarity float64
}

// neighbors returns up to limit candidates similar to best. Candidates in
// best's cluster come first, nearest first, scored 100·e^(−distance). The
// rest is filled from other clusters in scan order at CrossClusterSimilarity.
func (o Options) neighbors(snap *snapshot.Snapshot, candidates []int, best, limit int) []neighbor {
	if limit <= 0 {
		return nil
	}
	items := snap.Items()
	cluster := items[best].ClusterID()
	origin := snap.Vector(best)

	seen := map[string]bool{items[best].ID(): true}

	type ranked struct {
		pos  int
		dist float64
	}
	var local []ranked
	var foreign []int
	for _, pos := range candidates {
		if pos == best {
			continue
		}
		if items[pos].ClusterID() == cluster {
			local = append(local, ranked{pos: pos, dist: feature.Distance(origin, snap.Vector(pos))})
		} else {
			foreign = append(foreign, pos)
		}
	}
	slices.SortStableFunc(local, func(a, b ranked) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		}
		return 0
	})

	out := make([]neighbor, 0, limit)
	for _, r := range local {
		if len(out) == limit {
			return out
		}
		id := items[r.pos].ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, neighbor{pos: r.pos, similarity: 100 * math.Exp(-r.dist)})
	}
	for _, pos := range foreign {
		if len(out) == limit {
			break
		}
		id := items[pos].ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, neighbor{pos: pos, similarity: o.CrossClusterSimilarity})
	}
	return out
}
