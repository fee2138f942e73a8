package recommend

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/kailas-cloud/lapmatch/internal/domain"
	"github.com/kailas-cloud/lapmatch/internal/domain/catalog"
	"github.com/kailas-cloud/lapmatch/internal/domain/cluster"
	"github.com/kailas-cloud/lapmatch/internal/domain/feature"
	"github.com/kailas-cloud/lapmatch/internal/domain/snapshot"
)

// --- Mocks ---

type stubCatalog struct {
	snap *snapshot.Snapshot
}

func (s *stubCatalog) Current() (*snapshot.Snapshot, error) {
	if s.snap == nil {
		return nil, domain.ErrCatalogNotLoaded
	}
	return s.snap, nil
}

// --- Fixtures ---

var tiers = []string{"i3", "i5", "i7", "i9"}

// laptop builds a catalog item with a processor name unique to id, so no two
// fixtures share a configuration signature unless a test wants them to.
func laptop(id string, a catalog.Attributes) catalog.Item {
	if a.Processor == "" {
		a.Processor = "Intel Core i5-" + id
	}
	if a.ScreenSize == 0 {
		a.ScreenSize = 15.6
	}
	return catalog.Reconstruct(id, a)
}

// midRange returns n laptops priced 60000..99000 with RAM 16, 512GB storage,
// performance 55..74 and portability 45..64.
func midRange(prefix string, n int) []catalog.Item {
	out := make([]catalog.Item, n)
	for i := range out {
		out[i] = laptop(fmt.Sprintf("%s-%d", prefix, i), catalog.Attributes{
			Name:        fmt.Sprintf("Laptop %s %d", prefix, i),
			Price:       float64(60000 + (i%40)*1000),
			RAMGB:       16,
			StorageGB:   512,
			Performance: float64(55 + i%20),
			Portability: float64(45 + i%20),
			Rating:      3.5 + float64(i%10)/10,
			WeightKg:    1.8,
		})
	}
	return out
}

// randomCatalog spreads n laptops across the whole attribute space.
func randomCatalog(seed uint64, n int) []catalog.Item {
	rng := rand.New(rand.NewPCG(seed, seed))
	ram := []float64{4, 8, 16, 32}
	storage := []float64{256, 512, 1024}
	out := make([]catalog.Item, n)
	for i := range out {
		id := fmt.Sprintf("r-%d", i)
		out[i] = laptop(id, catalog.Attributes{
			Name:         "Random " + id,
			Price:        15990 + rng.Float64()*286000,
			RAMGB:        ram[rng.IntN(len(ram))],
			StorageGB:    storage[rng.IntN(len(storage))],
			ScreenSize:   []float64{13.3, 14, 15.6, 17.3}[rng.IntN(4)],
			Processor:    fmt.Sprintf("Intel Core %s-%d", tiers[rng.IntN(len(tiers))], i),
			DedicatedGPU: rng.IntN(2) == 1,
			Performance:  rng.Float64() * 100,
			Portability:  rng.Float64() * 100,
			Rating:       float64(rng.IntN(50)) / 10,
		})
	}
	return out
}

func buildSnapshot(t *testing.T, items []catalog.Item) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.Build(items, feature.DefaultSpecs(), cluster.Options{K: 5, Seed: 42}, snapshot.Meta{Version: 1})
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	return snap
}

func newService(t *testing.T, items []catalog.Item) *Service {
	t.Helper()
	return New(&stubCatalog{snap: buildSnapshot(t, items)}, DefaultOptions())
}
