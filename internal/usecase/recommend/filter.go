package recommend

import (
	"math"

	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/lapmatch/internal/domain/catalog"
	"github.com/kailas-cloud/lapmatch/internal/domain/preference"
)

// Filter stage names as they appear in the trace.
const (
	stagePrice       = "price"
	stageRAM         = "ram"
	stageStorage     = "storage"
	stageDefer       = "defer"
	stagePerformance = "performance"
	stagePortability = "portability"
	stageScreen      = "screen_size"
	stageProcessor   = "processor"
	stageGPU         = "dedicated_gpu"
)

// Stage is one step of a filter pass.
type Stage struct {
	Name      string
	Remaining int
	Skipped   bool
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s Stage) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("stage", s.Name)
	enc.AddInt("remaining", s.Remaining)
	if s.Skipped {
		enc.AddBool("skipped", true)
	}
	return nil
}

// Trace records every stage of a filter pass in order.
type Trace []Stage

// MarshalLogArray implements zapcore.ArrayMarshaler.
func (t Trace) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, s := range t {
		if err := enc.AppendObject(s); err != nil {
			return err
		}
	}
	return nil
}

// filterResult holds the candidate positions in catalog scan order.
type filterResult struct {
	candidates []int
	deferred   bool
	trace      Trace
}

type predicate func(it *catalog.Item) bool

// filter intersects the predicates p asks for. In strict mode it stops after
// the price, RAM and storage stages when fewer than MinViableCandidates remain.
func (o Options) filter(items []catalog.Item, p *preference.Preference, strict bool) filterResult {
	res := filterResult{candidates: make([]int, 0, len(items))}
	for i := range items {
		res.candidates = append(res.candidates, i)
	}

	apply := func(name string, keep predicate) {
		out := res.candidates[:0]
		for _, pos := range res.candidates {
			if keep(&items[pos]) {
				out = append(out, pos)
			}
		}
		res.candidates = out
		res.trace = append(res.trace, Stage{Name: name, Remaining: len(out)})
	}
	skip := func(name string) {
		res.trace = append(res.trace, Stage{Name: name, Remaining: len(res.candidates), Skipped: true})
	}

	spec := p.Specifications

	if p.Price != nil {
		r := *p.Price
		apply(stagePrice, func(it *catalog.Item) bool { return r.Contains(it.Price()) })
	}
	if spec.RAMGB != nil {
		want := *spec.RAMGB
		apply(stageRAM, func(it *catalog.Item) bool { return it.RAMGB() >= want })
	}
	if spec.StorageGB != nil {
		want := *spec.StorageGB
		apply(stageStorage, func(it *catalog.Item) bool { return it.StorageGB() >= want })
	}

	if strict && len(res.candidates) < o.MinViableCandidates {
		res.deferred = true
		res.trace = append(res.trace, Stage{Name: stageDefer, Remaining: len(res.candidates)})
		return res
	}

	if p.Performance != nil {
		r := *p.Performance
		apply(stagePerformance, func(it *catalog.Item) bool { return r.Contains(it.Performance()) })
	}
	if p.Portability != nil {
		r := *p.Portability
		apply(stagePortability, func(it *catalog.Item) bool { return r.Contains(it.Portability()) })
	}
	if spec.ScreenSize != nil {
		target := *spec.ScreenSize
		tol := o.ScreenTolerance
		if target >= o.LargeScreenThreshold {
			tol = o.LargeScreenTolerance
		}
		apply(stageScreen, func(it *catalog.Item) bool {
			return math.Abs(it.ScreenSize()-target) <= tol
		})
	}

	if spec.Processor != catalog.TierUnknown {
		if len(res.candidates) <= o.SmallCandidateCount {
			skip(stageProcessor)
		} else {
			floor := spec.Processor
			apply(stageProcessor, func(it *catalog.Item) bool { return it.Tier().Satisfies(floor) })
		}
	}
	if spec.DedicatedGPU != nil {
		if len(res.candidates) <= o.SmallCandidateCount {
			skip(stageGPU)
		} else {
			want := *spec.DedicatedGPU
			apply(stageGPU, func(it *catalog.Item) bool { return it.DedicatedGPU() == want })
		}
	}
	return res
}
