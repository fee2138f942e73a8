// Package preference models the structured query a recommendation is made for.
package preference

import (
	"github.com/kailas-cloud/lapmatch/internal/domain/catalog"
)

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `json:"min" validate:"gte=0"`
	Max float64 `json:"max" validate:"gtefield=Min"`
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Width returns Max - Min.
func (r Range) Width() float64 {
	return r.Max - r.Min
}

// Widen grows the range by margin on each side and clamps it to bounds.
func (r Range) Widen(margin float64, bounds Range) Range {
	return Range{
		Min: max(r.Min-margin, bounds.Min),
		Max: min(r.Max+margin, bounds.Max),
	}
}

// Covers reports whether r includes every value of other.
func (r Range) Covers(other Range) bool {
	return r.Min <= other.Min && r.Max >= other.Max
}

// Specifications are the optional hardware requirements. A nil pointer or
// TierUnknown means the requirement is absent.
type Specifications struct {
	RAMGB        *float64     `json:"ram,omitempty" validate:"omitnil,gt=0"`
	StorageGB    *float64     `json:"storage,omitempty" validate:"omitnil,gt=0"`
	ScreenSize   *float64     `json:"screen_size,omitempty" validate:"omitnil,gt=0"`
	Processor    catalog.Tier `json:"processor,omitempty"`
	DedicatedGPU *bool        `json:"dedicated_gpu,omitempty"`
}

// Preference is a caller-owned query. The engine never mutates it; the
// relaxed pass works on a Clone.
type Preference struct {
	Price          *Range         `json:"price_range" validate:"required"`
	Performance    *Range         `json:"performance_range,omitempty" validate:"omitnil"`
	Portability    *Range         `json:"portability_range,omitempty" validate:"omitnil"`
	Specifications Specifications `json:"specifications"`
}

// Clone returns a deep copy.
func (p *Preference) Clone() *Preference {
	out := &Preference{
		Price:       cloneRange(p.Price),
		Performance: cloneRange(p.Performance),
		Portability: cloneRange(p.Portability),
		Specifications: Specifications{
			RAMGB:        cloneFloat(p.Specifications.RAMGB),
			StorageGB:    cloneFloat(p.Specifications.StorageGB),
			ScreenSize:   cloneFloat(p.Specifications.ScreenSize),
			Processor:    p.Specifications.Processor,
			DedicatedGPU: cloneBool(p.Specifications.DedicatedGPU),
		},
	}
	return out
}

// Float and Bool return pointers for building Specifications literals.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

func cloneRange(r *Range) *Range {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
