package catalog

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/kailas-cloud/lapmatch/internal/db"
	domcat "github.com/kailas-cloud/lapmatch/internal/domain/catalog"
)

// mockStore is an in-memory implementation of the consumer interface.
type mockStore struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
	values map[string][]byte

	hsetCalls int
	scanErr   error
	hgetErr   error
}

func newMockStore() *mockStore {
	return &mockStore{hashes: map[string]map[string]string{}, values: map[string][]byte{}}
}

func (m *mockStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hsetCalls++
	for _, it := range items {
		h := make(map[string]string, len(it.Fields))
		for k, v := range it.Fields {
			h[k] = v
		}
		m.hashes[it.Key] = h
	}
	return nil
}

func (m *mockStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hgetErr != nil {
		return nil, m.hgetErr
	}
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		h := map[string]string{}
		for f, v := range m.hashes[k] {
			h[f] = v
		}
		out[i] = h
	}
	return out, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.hashes, k)
		delete(m.values, k)
	}
	return nil
}

// Scan returns matching keys in reverse order so callers cannot rely on it.
func (m *mockStore) Scan(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	var keys []string
	for k := range m.hashes {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

const sampleCSV = `Name,Price,RAM GB,Storage,Screen Size,Weight KG,Processor,GPU,Dedicated GPU,Battery Hours,Performance Score,Portability,Value Score,Rating
Aspire 7,"75,000",16,512GB,15.6,2.1,Intel Core i5-12450H,NVIDIA RTX 3050,1,6,70,55,80,4.3
ZenBook 14,92000,16,1TB,14,1.3,Intel Core i7-1360P,,0,10,72,88,75,4.6
IdeaPad Slim 3,41990,8,256GB,15.6,1.6,AMD Ryzen 5 7520U,,0,7,45,70,85,4.1
`

func sampleItems() []domcat.Item {
	return []domcat.Item{
		domcat.Reconstruct("a7", domcat.Attributes{
			Name: "Aspire 7", Price: 75000, RAMGB: 16, StorageGB: 512, ScreenSize: 15.6, WeightKg: 2.1,
			Processor: "Intel Core i5-12450H", GPU: "NVIDIA RTX 3050", DedicatedGPU: true,
			BatteryHours: 6, Performance: 70, Portability: 55, Value: 80, Rating: 4.3,
		}),
		domcat.Reconstruct("zb14", domcat.Attributes{
			Name: "ZenBook 14", Price: 92000, RAMGB: 16, StorageGB: 1024, ScreenSize: 14, WeightKg: 1.3,
			Processor: "Intel Core i7-1360P", BatteryHours: 10, Performance: 72, Portability: 88,
			Value: 75, Rating: 4.6,
		}),
		domcat.Reconstruct("slim3", domcat.Attributes{
			Name: "IdeaPad Slim 3", Price: 41990, RAMGB: 8, StorageGB: 256, ScreenSize: 15.6, WeightKg: 1.6,
			Processor: "AMD Ryzen 5 7520U", BatteryHours: 7, Performance: 45, Portability: 70,
			Value: 85, Rating: 4.1,
		}),
	}
}

func ids(items []domcat.Item) string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID()
	}
	return strings.Join(out, ",")
}
