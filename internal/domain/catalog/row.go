package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/lapmatch/internal/domain"
)

// Catalog column names. Every source must provide all required columns.
const (
	ColumnID           = "id"
	ColumnName         = "name"
	ColumnPrice        = "price"
	ColumnRAM          = "ram_gb"
	ColumnStorage      = "storage"
	ColumnScreenSize   = "screen_size"
	ColumnWeight       = "weight_kg"
	ColumnProcessor    = "processor"
	ColumnGPU          = "gpu"
	ColumnDedicatedGPU = "dedicated_gpu"
	ColumnBattery      = "battery_hours"
	ColumnPerformance  = "performance_score"
	ColumnPortability  = "portability"
	ColumnValue        = "value_score"
	ColumnRating       = "rating"
)

// RequiredColumns lists the columns a catalog source must carry.
var RequiredColumns = []string{
	ColumnName, ColumnPrice, ColumnRAM, ColumnStorage, ColumnScreenSize,
	ColumnWeight, ColumnProcessor, ColumnGPU, ColumnDedicatedGPU, ColumnBattery,
	ColumnPerformance, ColumnPortability, ColumnValue, ColumnRating,
}

// Row is one raw catalog record keyed by column name.
type Row map[string]string

// CheckColumns returns a configuration error naming the first required
// column absent from the given header.
func CheckColumns(header []string) error {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[NormalizeColumn(h)] = struct{}{}
	}
	for _, c := range RequiredColumns {
		if _, ok := have[c]; !ok {
			return domain.ConfigError("catalog is missing column %q", c)
		}
	}
	return nil
}

// NormalizeColumn lower-cases a header and maps spaces and hyphens to underscores.
func NormalizeColumn(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

// FromRow hydrates an Item from a raw record. index is the zero-based scan
// position and names the item when the row has no id.
// Cells that fail coercion are zeroed and reported; the item is then flagged
// malformed rather than dropped.
func FromRow(r Row, index int) (Item, []error) {
	p := rowParser{row: r, index: index}

	id := strings.TrimSpace(r[ColumnID])
	if id == "" {
		id = fmt.Sprintf("laptop-%d", index+1)
	}

	a := Attributes{
		Name:         strings.TrimSpace(r[ColumnName]),
		Price:        p.float(ColumnPrice),
		RAMGB:        p.float(ColumnRAM),
		StorageGB:    p.storage(ColumnStorage),
		ScreenSize:   p.float(ColumnScreenSize),
		WeightKg:     p.float(ColumnWeight),
		Processor:    strings.TrimSpace(r[ColumnProcessor]),
		GPU:          strings.TrimSpace(r[ColumnGPU]),
		DedicatedGPU: p.bool(ColumnDedicatedGPU),
		BatteryHours: p.float(ColumnBattery),
		Performance:  p.float(ColumnPerformance),
		Portability:  p.float(ColumnPortability),
		Value:        p.float(ColumnValue),
		Rating:       p.float(ColumnRating),
	}

	item := Reconstruct(id, a)
	if len(p.errs) > 0 {
		item = item.WithMalformed()
	}
	return item, p.errs
}

type rowParser struct {
	row   Row
	index int
	errs  []error
}

func (p *rowParser) fail(col string) {
	p.errs = append(p.errs, &domain.MalformedRecordError{Row: p.index, Column: col, Value: p.row[col]})
}

func (p *rowParser) float(col string) float64 {
	s := strings.TrimSpace(p.row[col])
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.fail(col)
		return 0
	}
	return v
}

func (p *rowParser) storage(col string) float64 {
	v, err := ParseStorageGB(p.row[col])
	if err != nil {
		p.fail(col)
		return 0
	}
	return v
}

func (p *rowParser) bool(col string) bool {
	switch strings.ToLower(strings.TrimSpace(p.row[col])) {
	case "1", "true", "yes", "y", "1.0":
		return true
	case "0", "false", "no", "n", "0.0", "":
		return false
	default:
		p.fail(col)
		return false
	}
}

// ToRow renders an item back into a raw record that FromRow reads unchanged.
func ToRow(it *Item) Row {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return Row{
		ColumnID:           it.ID(),
		ColumnName:         it.Name(),
		ColumnPrice:        f(it.Price()),
		ColumnRAM:          f(it.RAMGB()),
		ColumnStorage:      FormatStorage(it.StorageGB()),
		ColumnScreenSize:   f(it.ScreenSize()),
		ColumnWeight:       f(it.WeightKg()),
		ColumnProcessor:    it.Processor(),
		ColumnGPU:          it.GPU(),
		ColumnDedicatedGPU: strconv.FormatBool(it.DedicatedGPU()),
		ColumnBattery:      f(it.BatteryHours()),
		ColumnPerformance:  f(it.Performance()),
		ColumnPortability:  f(it.Portability()),
		ColumnValue:        f(it.Value()),
		ColumnRating:       f(it.Rating()),
	}
}
