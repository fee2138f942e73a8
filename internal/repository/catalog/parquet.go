package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/parquet-go/parquet-go"

	domcat "github.com/kailas-cloud/lapmatch/internal/domain/catalog"
)

const parquetBatchRows = 1000

// readParquet reads every row group of a flat parquet catalog into raw rows.
// Columns are resolved by top-level name; nested columns are ignored.
func readParquet(path string) ([]domcat.Row, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	var header []string
	columns := make(map[int]string)
	for i, col := range pf.Schema().Columns() {
		if len(col) != 1 {
			continue
		}
		name := domcat.NormalizeColumn(col[0])
		header = append(header, name)
		columns[i] = name
	}
	if err := domcat.CheckColumns(header); err != nil {
		return nil, err
	}

	var rows []domcat.Row
	buf := make([]parquet.Row, parquetBatchRows)
	for _, rg := range pf.RowGroups() {
		reader := parquet.NewRowGroupReader(rg)
		for {
			n, readErr := reader.ReadRows(buf)
			for i := 0; i < n; i++ {
				rows = append(rows, parquetRow(buf[i], columns))
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				return nil, fmt.Errorf("read rows: %w", readErr)
			}
		}
	}
	return rows, nil
}

// parquetRow renders a generic parquet row as strings so that numeric and
// text columns share the same coercion path as CSV.
func parquetRow(row parquet.Row, columns map[int]string) domcat.Row {
	out := make(domcat.Row, len(columns))
	for _, v := range row {
		name, ok := columns[v.Column()]
		if !ok || v.IsNull() {
			continue
		}
		out[name] = parquetString(v)
	}
	return out
}

func parquetString(v parquet.Value) string {
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'f', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	default:
		return string(v.ByteArray())
	}
}

// parquetRecord is the flat on-disk layout written by writeParquet.
type parquetRecord struct {
	ID           string  `parquet:"id"`
	Name         string  `parquet:"name"`
	Price        float64 `parquet:"price"`
	RAMGB        float64 `parquet:"ram_gb"`
	Storage      string  `parquet:"storage"`
	ScreenSize   float64 `parquet:"screen_size"`
	WeightKg     float64 `parquet:"weight_kg"`
	Processor    string  `parquet:"processor"`
	GPU          string  `parquet:"gpu"`
	DedicatedGPU bool    `parquet:"dedicated_gpu"`
	BatteryHours float64 `parquet:"battery_hours"`
	Performance  float64 `parquet:"performance_score"`
	Portability  float64 `parquet:"portability"`
	Value        float64 `parquet:"value_score"`
	Rating       float64 `parquet:"rating"`
}

// writeParquet writes items as a single parquet file.
func writeParquet(path string, items []domcat.Item) error {
	records := make([]parquetRecord, len(items))
	for i := range items {
		it := &items[i]
		records[i] = parquetRecord{
			ID:           it.ID(),
			Name:         it.Name(),
			Price:        it.Price(),
			RAMGB:        it.RAMGB(),
			Storage:      domcat.FormatStorage(it.StorageGB()),
			ScreenSize:   it.ScreenSize(),
			WeightKg:     it.WeightKg(),
			Processor:    it.Processor(),
			GPU:          it.GPU(),
			DedicatedGPU: it.DedicatedGPU(),
			BatteryHours: it.BatteryHours(),
			Performance:  it.Performance(),
			Portability:  it.Portability(),
			Value:        it.Value(),
			Rating:       it.Rating(),
		}
	}
	if err := parquet.WriteFile(filepath.Clean(path), records); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}
