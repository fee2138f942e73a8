package recommend

import (
	"github.com/kailas-cloud/lapmatch/internal/domain/catalog"
	"github.com/kailas-cloud/lapmatch/internal/domain/preference"
)

// relax returns a widened copy of p: price grows by PriceRelaxFraction of its
// width on each side, performance and portability by fixed margins, all
// clamped to the global bounds. The processor floor is dropped.
func (o Options) relax(p *preference.Preference) *preference.Preference {
	r := p.Clone()
	if r.Price != nil {
		margin := r.Price.Width() * o.PriceRelaxFraction
		*r.Price = r.Price.Widen(margin, o.Bounds.Price)
	}
	if r.Performance != nil {
		*r.Performance = r.Performance.Widen(o.PerformanceRelaxMargin, o.Bounds.Performance)
	}
	if r.Portability != nil {
		*r.Portability = r.Portability.Widen(o.PortabilityRelaxMargin, o.Bounds.Portability)
	}
	r.Specifications.Processor = catalog.TierUnknown
	return r
}
