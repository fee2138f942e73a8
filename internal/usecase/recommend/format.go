package recommend

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kailas-cloud/lapmatch/internal/domain/catalog"
	"github.com/kailas-cloud/lapmatch/internal/domain/recommendation"
)

const unknown = "Unknown"

var pricePrinter = message.NewPrinter(language.English)

// format walks best followed by its neighbors and emits at most maxResults
// entries, dropping any whose configuration signature was already emitted.
func format(items []catalog.Item, best int, similar []neighbor, maxResults int) []recommendation.Entry {
	ranked := make([]neighbor, 0, len(similar)+1)
	ranked = append(ranked, neighbor{pos: best, similarity: 100})
	ranked = append(ranked, similar...)

	seen := make(map[catalog.Signature]bool, len(ranked))
	out := make([]recommendation.Entry, 0, min(len(ranked), maxResults))
	for _, n := range ranked {
		if len(out) == maxResults {
			break
		}
		it := &items[n.pos]
		sig := it.Signature()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, recommendation.Entry{
			Laptop:          Describe(it),
			SimilarityScore: math.Round(n.similarity*100) / 100,
			ClusterID:       it.ClusterID(),
		})
	}
	return out
}

// Describe renders the display form of an item. A malformed item is replaced by an
// all-zero placeholder that keeps only its id.
func Describe(it *catalog.Item) recommendation.Laptop {
	if it.Malformed() {
		return placeholder(it.ID())
	}
	gpu := it.GPU()
	if gpu == "" {
		gpu = "Integrated"
	}
	return recommendation.Laptop{
		ID:           it.ID(),
		Name:         it.Name(),
		Price:        FormatPrice(it.Price()),
		PriceValue:   it.Price(),
		RAM:          FormatRAM(it.RAMGB()),
		Storage:      catalog.FormatStorage(it.StorageGB()),
		ScreenSize:   FormatScreen(it.ScreenSize()),
		Weight:       FormatWeight(it.WeightKg()),
		Processor:    it.Processor(),
		GPU:          gpu,
		DedicatedGPU: it.DedicatedGPU(),
		Battery:      FormatBattery(it.BatteryHours()),
		Performance:  it.Performance(),
		Portability:  it.Portability(),
		Value:        it.Value(),
		Rating:       it.Rating(),
	}
}

func placeholder(id string) recommendation.Laptop {
	return recommendation.Laptop{
		ID:         id,
		Name:       unknown,
		Price:      FormatPrice(0),
		RAM:        FormatRAM(0),
		Storage:    catalog.FormatStorage(0),
		ScreenSize: FormatScreen(0),
		Weight:     FormatWeight(0),
		Processor:  unknown,
		GPU:        unknown,
		Battery:    FormatBattery(0),
	}
}

// FormatPrice renders a rupee amount with thousands separators: "₹75,000".
func FormatPrice(v float64) string {
	return pricePrinter.Sprintf("₹%d", int64(math.Round(v)))
}

// FormatRAM renders "16GB".
func FormatRAM(gb float64) string {
	return strconv.FormatFloat(gb, 'f', -1, 64) + "GB"
}

// FormatScreen renders "15.6 inch".
func FormatScreen(in float64) string {
	return fmt.Sprintf("%.1f inch", in)
}

// FormatWeight renders "2.10 kg".
func FormatWeight(kg float64) string {
	return fmt.Sprintf("%.2f kg", kg)
}

// FormatBattery renders "6.0 hrs".
func FormatBattery(h float64) string {
	return fmt.Sprintf("%.1f hrs", h)
}
