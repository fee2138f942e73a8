package recommend

import "github.com/kailas-cloud/lapmatch/internal/domain/preference"

// Options are the pipeline heuristics. All of them come from configuration.
type Options struct {
	// MinViableCandidates is the strict-pass size below which the relaxed pass runs.
	MinViableCandidates int
	// SmallCandidateCount is the size at or below which processor and GPU
	// filters are skipped.
	SmallCandidateCount int
	// MaxResults caps the formatted result, best match included.
	MaxResults int

	PriceRelaxFraction     float64
	PerformanceRelaxMargin float64
	PortabilityRelaxMargin float64

	ScreenTolerance      float64
	LargeScreenTolerance float64
	LargeScreenThreshold float64

	CrossClusterSimilarity float64

	Bounds preference.Bounds
}

// DefaultOptions returns the stock heuristics.
func DefaultOptions() Options {
	return Options{
		MinViableCandidates:    20,
		SmallCandidateCount:    10,
		MaxResults:             10,
		PriceRelaxFraction:     0.2,
		PerformanceRelaxMargin: 10,
		PortabilityRelaxMargin: 20,
		ScreenTolerance:        0.5,
		LargeScreenTolerance:   1.0,
		LargeScreenThreshold:   17,
		CrossClusterSimilarity: 50,
		Bounds:                 preference.DefaultBounds(),
	}
}
