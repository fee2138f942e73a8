package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/lapmatch/internal/domain"
	domcat "github.com/kailas-cloud/lapmatch/internal/domain/catalog"
	"github.com/kailas-cloud/lapmatch/internal/domain/cluster"
	"github.com/kailas-cloud/lapmatch/internal/domain/feature"
	"github.com/kailas-cloud/lapmatch/internal/metrics"
)

// --- Mocks ---

type mockSource struct {
	mu    sync.Mutex
	items []domcat.Item
	err   error
	calls int
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) Load(_ context.Context) ([]domcat.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.items, m.err
}

func laptops(n int) []domcat.Item {
	items := make([]domcat.Item, n)
	for i := range items {
		items[i] = domcat.Reconstruct(fmt.Sprintf("l%d", i), domcat.Attributes{
			Name:        fmt.Sprintf("Laptop %d", i),
			Price:       40000 + float64(i)*5000,
			RAMGB:       float64(int(8) << (i % 3)),
			StorageGB:   512,
			ScreenSize:  14 + float64(i%3),
			WeightKg:    1.2 + float64(i%5)*0.2,
			Performance: float64(30 + i*3),
			Portability: float64(90 - i*3),
			Rating:      4,
		})
	}
	return items
}

func newService(src Source) *Service {
	return New(src, feature.DefaultSpecs(), cluster.Options{K: 3, Seed: 42})
}

// --- Tests ---

func TestCurrent_NotLoaded(t *testing.T) {
	svc := newService(&mockSource{})
	if _, err := svc.Current(); !errors.Is(err, domain.ErrCatalogNotLoaded) {
		t.Errorf("expected ErrCatalogNotLoaded, got %v", err)
	}
	if err := svc.Ready(context.Background()); !errors.Is(err, domain.ErrCatalogNotLoaded) {
		t.Errorf("Ready: expected ErrCatalogNotLoaded, got %v", err)
	}
	if _, err := svc.Stats(); !errors.Is(err, domain.ErrCatalogNotLoaded) {
		t.Errorf("Stats: expected ErrCatalogNotLoaded, got %v", err)
	}
}

func TestLoad_PublishesSnapshot(t *testing.T) {
	svc := newService(&mockSource{items: laptops(20)})

	stats, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stats.Version != 1 || stats.Items != 20 || stats.Clusters != 3 || stats.Source != "mock" {
		t.Errorf("stats = %+v", stats)
	}
	total := 0
	for _, n := range stats.ClusterSizes {
		total += n
	}
	if total != 20 {
		t.Errorf("cluster sizes sum to %d, want 20", total)
	}
	if len(stats.Features) != len(feature.DefaultSpecs()) {
		t.Errorf("features = %v", stats.Features)
	}

	snap, err := svc.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	for i := range snap.Items() {
		c := snap.Items()[i].ClusterID()
		if c < 0 || c >= 3 {
			t.Errorf("item %d has cluster %d", i, c)
		}
	}
	if got := testutil.ToFloat64(metrics.CatalogItems); got != 20 {
		t.Errorf("catalog_items gauge = %v, want 20", got)
	}
}

func TestLoad_FailureKeepsPrevious(t *testing.T) {
	src := &mockSource{items: laptops(10)}
	svc := newService(src)
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	before, _ := svc.Current()
	failures := testutil.ToFloat64(metrics.CatalogReloadsTotal.WithLabelValues("error"))

	src.err = errors.New("file vanished")
	if _, err := svc.Load(context.Background()); err == nil {
		t.Fatal("expected reload error")
	}
	after, err := svc.Current()
	if err != nil {
		t.Fatalf("Current after failed reload: %v", err)
	}
	if after != before {
		t.Error("failed reload replaced the published snapshot")
	}
	if got := testutil.ToFloat64(metrics.CatalogReloadsTotal.WithLabelValues("error")) - failures; got != 1 {
		t.Errorf("error reloads = %v, want 1", got)
	}
}

func TestLoad_VersionIncrements(t *testing.T) {
	src := &mockSource{items: laptops(10)}
	svc := newService(src)
	for want := uint64(1); want <= 3; want++ {
		stats, err := svc.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if stats.Version != want {
			t.Errorf("version = %d, want %d", stats.Version, want)
		}
	}

	// A failed build does not consume a version.
	src.items = append(laptops(2), laptops(1)...)
	if _, err := svc.Load(context.Background()); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected duplicate id configuration error, got %v", err)
	}
	src.items = laptops(5)
	stats, _ := svc.Load(context.Background())
	if stats.Version != 4 {
		t.Errorf("version after failed load = %d, want 4", stats.Version)
	}
}

func TestLoad_EmptyCatalog(t *testing.T) {
	svc := newService(&mockSource{})
	if _, err := svc.Load(context.Background()); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestItem(t *testing.T) {
	svc := newService(&mockSource{items: laptops(5)})
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	it, err := svc.Item("l3")
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if it.Name() != "Laptop 3" {
		t.Errorf("name = %q", it.Name())
	}
	if _, err := svc.Item("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoad_ConcurrentReaders(t *testing.T) {
	src := &mockSource{items: laptops(30)}
	svc := newService(src)
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var wg sync.WaitGroup
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				snap, err := svc.Current()
				if err != nil || snap.Len() != 30 {
					t.Errorf("reader saw %v / %v", snap, err)
					return
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		if _, err := svc.Load(context.Background()); err != nil {
			t.Errorf("reload: %v", err)
		}
	}
	wg.Wait()
}
