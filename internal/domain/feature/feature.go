// Package feature projects catalog items onto weighted, range-normalized
// feature vectors used for distance computation.
package feature

import (
	"math"

	"github.com/kailas-cloud/lapmatch/internal/domain"
	"github.com/kailas-cloud/lapmatch/internal/domain/catalog"
)

// Feature names accepted in a Spec.
const (
	Price        = "price"
	RAM          = "ram"
	Storage      = "storage"
	ScreenSize   = "screen_size"
	Weight       = "weight"
	Battery      = "battery"
	Performance  = "performance"
	Portability  = "portability"
	Value        = "value"
	Rating       = "rating"
	DedicatedGPU = "dedicated_gpu"
)

type extractor func(it *catalog.Item) float64

var extractors = map[string]extractor{
	Price:       func(it *catalog.Item) float64 { return it.Price() },
	RAM:         func(it *catalog.Item) float64 { return it.RAMGB() },
	Storage:     func(it *catalog.Item) float64 { return it.StorageGB() },
	ScreenSize:  func(it *catalog.Item) float64 { return it.ScreenSize() },
	Weight:      func(it *catalog.Item) float64 { return it.WeightKg() },
	Battery:     func(it *catalog.Item) float64 { return it.BatteryHours() },
	Performance: func(it *catalog.Item) float64 { return it.Performance() },
	Portability: func(it *catalog.Item) float64 { return it.Portability() },
	Value:       func(it *catalog.Item) float64 { return it.Value() },
	Rating:      func(it *catalog.Item) float64 { return it.Rating() },
	DedicatedGPU: func(it *catalog.Item) float64 {
		if it.DedicatedGPU() {
			return 1
		}
		return 0
	},
}

// Spec is one feature in the vector with its importance weight.
type Spec struct {
	Name   string
	Weight float64
}

// DefaultSpecs is the feature set used when none is configured.
func DefaultSpecs() []Spec {
	return []Spec{
		{Name: Price, Weight: 1.0},
		{Name: Performance, Weight: 1.0},
		{Name: Portability, Weight: 0.8},
		{Name: RAM, Weight: 0.8},
		{Name: Storage, Weight: 0.6},
		{Name: ScreenSize, Weight: 0.5},
		{Name: Weight, Weight: 0.5},
		{Name: Battery, Weight: 0.4},
		{Name: DedicatedGPU, Weight: 0.6},
	}
}

// Validate checks that every feature is known and positively weighted.
func Validate(specs []Spec) error {
	if len(specs) == 0 {
		return domain.ConfigError("feature set is empty")
	}
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if _, ok := extractors[s.Name]; !ok {
			return domain.ConfigError("unknown feature %q", s.Name)
		}
		if seen[s.Name] {
			return domain.ConfigError("duplicate feature %q", s.Name)
		}
		if s.Weight <= 0 || math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) {
			return domain.ConfigError("feature %q weight must be positive, got %v", s.Name, s.Weight)
		}
		seen[s.Name] = true
	}
	return nil
}

// Normalize returns one vector per item, index-aligned with items.
// Each feature is rescaled to [0,1] by the min/max of the well-formed items
// and multiplied by its weight. A feature with zero variance maps to 0 for
// every item. Malformed items get an all-zero vector and do not contribute to
// the min/max.
func Normalize(items []catalog.Item, specs []Spec) ([][]float64, error) {
	if err := Validate(specs); err != nil {
		return nil, err
	}

	lo := make([]float64, len(specs))
	hi := make([]float64, len(specs))
	for f := range specs {
		lo[f] = math.Inf(1)
		hi[f] = math.Inf(-1)
	}

	raw := make([][]float64, len(items))
	for i := range items {
		row := make([]float64, len(specs))
		raw[i] = row
		if items[i].Malformed() {
			continue
		}
		for f, s := range specs {
			v := extractors[s.Name](&items[i])
			row[f] = v
			lo[f] = math.Min(lo[f], v)
			hi[f] = math.Max(hi[f], v)
		}
	}

	for i, row := range raw {
		if items[i].Malformed() {
			continue
		}
		for f, s := range specs {
			span := hi[f] - lo[f]
			if span == 0 {
				row[f] = 0
				continue
			}
			row[f] = (row[f] - lo[f]) / span * s.Weight
		}
	}
	return raw, nil
}

// Distance is the Euclidean distance between two vectors of equal length.
func Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
