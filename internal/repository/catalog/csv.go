package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	domcat "github.com/kailas-cloud/lapmatch/internal/domain/catalog"
)

// readCSV reads a header-first CSV stream into raw rows keyed by normalized
// column name. Short rows are kept; their missing cells read as empty.
func readCSV(r io.Reader) ([]domcat.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := domcat.CheckColumns(header); err != nil {
		return nil, err
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = domcat.NormalizeColumn(h)
	}

	var rows []domcat.Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", len(rows)+1, err)
		}
		row := make(domcat.Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writeCSV renders items as CSV with the full column set.
func writeCSV(w io.Writer, items []domcat.Item) error {
	columns := append([]string{domcat.ColumnID}, domcat.RequiredColumns...)
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(columns))
	for i := range items {
		row := domcat.ToRow(&items[i])
		for j, col := range columns {
			record[j] = row[col]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
