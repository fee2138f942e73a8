package recommend

import "github.com/kailas-cloud/lapmatch/internal/domain/catalog"

// selectBest returns the candidate with the highest rating, then the highest
// performance score. Candidates are in scan order, so the earliest wins any
// remaining tie. candidates must not be empty.
func selectBest(items []catalog.Item, candidates []int) int {
	best := candidates[0]
	for _, pos := range candidates[1:] {
		if better(&items[pos], &items[best]) {
			best = pos
		}
	}
	return best
}

func better(a, b *catalog.Item) bool {
	if a.Rating() != b.Rating() {
		return a.Rating() > b.Rating()
	}
	return a.Performance() > b.Performance()
}
