package recommend

import (
	"context"

	"github.com/kailas-cloud/lapmatch/internal/domain/preference"
	"github.com/kailas-cloud/lapmatch/internal/domain/recommendation"
	"github.com/kailas-cloud/lapmatch/internal/domain/snapshot"
)

// SnapshotProvider returns the catalog snapshot currently being served.
type SnapshotProvider interface {
	Current() (*snapshot.Snapshot, error)
}

// ResultCache stores finished results per catalog version. Implementations
// swallow their own failures.
type ResultCache interface {
	Get(ctx context.Context, version uint64, relaxed bool, p *preference.Preference) (recommendation.Result, bool)
	Put(ctx context.Context, version uint64, relaxed bool, p *preference.Preference, res recommendation.Result)
}
