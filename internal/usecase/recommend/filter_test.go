package recommend

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/kailas-cloud/lapmatch/internal/domain/catalog"
	"github.com/kailas-cloud/lapmatch/internal/domain/preference"
)

func scenarioA() *preference.Preference {
	return &preference.Preference{
		Price:       &preference.Range{Min: 60000, Max: 100000},
		Performance: &preference.Range{Min: 50, Max: 85},
		Portability: &preference.Range{Min: 40, Max: 80},
		Specifications: preference.Specifications{
			RAMGB:     preference.Float(16),
			StorageGB: preference.Float(512),
		},
	}
}

func stageNames(tr Trace) []string {
	names := make([]string, len(tr))
	for i, s := range tr {
		names[i] = s.Name
	}
	return names
}

func TestFilter_ScenarioA(t *testing.T) {
	items := midRange("m", 30)
	target := catalog.Reconstruct("target", catalog.Attributes{
		Name: "Target", Price: 75000, RAMGB: 16, StorageGB: 512,
		Performance: 70, Portability: 60, Processor: "Intel Core i5-1135G7", ScreenSize: 15.6,
	})
	items = append(items, target)

	res := DefaultOptions().filter(items, scenarioA(), true)
	if res.deferred {
		t.Fatalf("unexpected deferral, trace %v", res.trace)
	}
	if !slices.Contains(res.candidates, len(items)-1) {
		t.Errorf("target missing from candidates %v", res.candidates)
	}
}

func TestFilter_StrictDefersAfterEssentials(t *testing.T) {
	items := midRange("m", 5)
	res := DefaultOptions().filter(items, scenarioA(), true)
	if !res.deferred {
		t.Fatal("expected deferral with 5 candidates")
	}
	want := []string{stagePrice, stageRAM, stageStorage, stageDefer}
	if got := stageNames(res.trace); !slices.Equal(got, want) {
		t.Errorf("trace = %v, want %v", got, want)
	}

	relaxed := DefaultOptions().filter(items, scenarioA(), false)
	if relaxed.deferred {
		t.Error("relaxed pass must never defer")
	}
}

func TestFilter_KeepsScanOrderAndUniqueness(t *testing.T) {
	items := randomCatalog(1, 300)
	p := &preference.Preference{Price: &preference.Range{Min: 15990, Max: 301990}}
	res := DefaultOptions().filter(items, p, false)
	if len(res.candidates) != len(items) {
		t.Fatalf("expected all %d items, got %d", len(items), len(res.candidates))
	}
	for i := 1; i < len(res.candidates); i++ {
		if res.candidates[i] <= res.candidates[i-1] {
			t.Fatalf("candidates out of scan order at %d", i)
		}
	}
}

func TestFilter_ScreenTolerance(t *testing.T) {
	var items []catalog.Item
	for _, size := range []float64{13.3, 15.6, 16.0, 16.2, 17.3, 18.0} {
		items = append(items, laptop(fmt.Sprintf("s%.1f", size), catalog.Attributes{Price: 50000, ScreenSize: size}))
	}
	opts := DefaultOptions()

	p := &preference.Preference{
		Price:          &preference.Range{Min: 20000, Max: 90000},
		Specifications: preference.Specifications{ScreenSize: preference.Float(15.6)},
	}
	res := opts.filter(items, p, false)
	if !slices.Equal(res.candidates, []int{1, 2}) {
		t.Errorf("15.6 window = %v, want [1 2]", res.candidates)
	}

	p.Specifications.ScreenSize = preference.Float(17.3)
	res = opts.filter(items, p, false)
	if !slices.Equal(res.candidates, []int{4, 5}) {
		t.Errorf("17.3 window = %v, want [4 5]", res.candidates)
	}
}

func TestFilter_ProcessorAndGPU(t *testing.T) {
	var items []catalog.Item
	for i := 0; i < 24; i++ {
		items = append(items, laptop(string(rune('a'+i)), catalog.Attributes{
			Price:        50000,
			Processor:    "Intel Core " + tiers[i%4] + "-x" + string(rune('a'+i)),
			DedicatedGPU: i%2 == 0,
		}))
	}
	p := &preference.Preference{
		Price: &preference.Range{Min: 20000, Max: 90000},
		Specifications: preference.Specifications{
			Processor:    catalog.TierI7,
			DedicatedGPU: preference.Bool(true),
		},
	}
	res := DefaultOptions().filter(items, p, true)
	// i7/i9 leaves 12; GPU is then applied and keeps even indexes: i%4 == 2.
	for _, pos := range res.candidates {
		it := &items[pos]
		if !it.Tier().Satisfies(catalog.TierI7) || !it.DedicatedGPU() {
			t.Errorf("candidate %s violates processor/gpu", it.ID())
		}
	}
	if len(res.candidates) != 6 {
		t.Errorf("got %d candidates, want 6", len(res.candidates))
	}
}

func TestFilter_SkipsProcessorAndGPUWhenSmall(t *testing.T) {
	var items []catalog.Item
	for i := 0; i < 8; i++ {
		items = append(items, laptop(string(rune('a'+i)), catalog.Attributes{
			Price:     50000,
			Processor: "Intel Core i3-x" + string(rune('a'+i)),
		}))
	}
	p := &preference.Preference{
		Price: &preference.Range{Min: 20000, Max: 90000},
		Specifications: preference.Specifications{
			Processor:    catalog.TierI9,
			DedicatedGPU: preference.Bool(true),
		},
	}
	res := DefaultOptions().filter(items, p, false)
	if len(res.candidates) != 8 {
		t.Fatalf("expected processor and gpu skipped, got %d candidates", len(res.candidates))
	}
	last := res.trace[len(res.trace)-2:]
	if !last[0].Skipped || !last[1].Skipped {
		t.Errorf("expected skipped stages, got %+v", last)
	}
}

func randomRange(rng *rand.Rand, lo, hi float64) preference.Range {
	a := lo + rng.Float64()*(hi-lo)
	b := lo + rng.Float64()*(hi-lo)
	return preference.Range{Min: min(a, b), Max: max(a, b)}
}

func TestFilter_Monotonic(t *testing.T) {
	items := randomCatalog(7, 400)
	opts := DefaultOptions()
	rng := rand.New(rand.NewPCG(11, 11))

	for i := 0; i < 200; i++ {
		narrow := &preference.Preference{
			Price:       ptr(randomRange(rng, 15990, 301990)),
			Performance: ptr(randomRange(rng, 0, 100)),
			Portability: ptr(randomRange(rng, 0, 100)),
		}
		wide := narrow.Clone()
		*wide.Price = wide.Price.Widen(rng.Float64()*50000, opts.Bounds.Price)
		*wide.Performance = wide.Performance.Widen(rng.Float64()*30, opts.Bounds.Performance)
		*wide.Portability = wide.Portability.Widen(rng.Float64()*30, opts.Bounds.Portability)

		n := len(opts.filter(items, narrow, false).candidates)
		w := len(opts.filter(items, wide, false).candidates)
		if n > w {
			t.Fatalf("case %d: narrow %d > wide %d", i, n, w)
		}
	}
}

func ptr[T any](v T) *T { return &v }
