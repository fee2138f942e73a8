// Package catalog reads and writes laptop catalogs: CSV and parquet files,
// and Redis hashes populated by the import tool.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lapmatch/internal/domain"
	domcat "github.com/kailas-cloud/lapmatch/internal/domain/catalog"
	"github.com/kailas-cloud/lapmatch/internal/logger"
)

// Supported file formats.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// DetectFormat returns the file format for path. An explicit format wins
// over the extension.
func DetectFormat(path, format string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case FormatCSV, FormatParquet:
		return format, nil
	default:
		return "", domain.ConfigError("unsupported catalog format %q for %s", format, path)
	}
}

// FileSource loads a catalog from a local file.
type FileSource struct {
	path   string
	format string
}

// NewFileSource creates a file source. format may be empty to infer it
// from the file extension.
func NewFileSource(path, format string) (*FileSource, error) {
	if path == "" {
		return nil, domain.ConfigError("catalog path is required")
	}
	f, err := DetectFormat(path, format)
	if err != nil {
		return nil, err
	}
	return &FileSource{path: path, format: f}, nil
}

// Name describes the source for logs and snapshot metadata.
func (s *FileSource) Name() string { return s.format + ":" + s.path }

// Load reads every row of the file in order.
func (s *FileSource) Load(ctx context.Context) ([]domcat.Item, error) {
	var (
		rows []domcat.Row
		err  error
	)
	switch s.format {
	case FormatParquet:
		rows, err = readParquet(s.path)
	default:
		rows, err = s.readCSV()
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}
	return toItems(ctx, rows), nil
}

func (s *FileSource) readCSV() ([]domcat.Row, error) {
	f, err := os.Open(filepath.Clean(s.path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()
	return readCSV(f)
}

// WriteFile exports items to path in the given format (or the one implied
// by the extension).
func WriteFile(path, format string, items []domcat.Item) error {
	f, err := DetectFormat(path, format)
	if err != nil {
		return err
	}
	if f == FormatParquet {
		return writeParquet(path, items)
	}

	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeCSV(out, items); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// toItems hydrates rows in order. Malformed cells are logged and the item
// is kept with its malformed flag set.
func toItems(ctx context.Context, rows []domcat.Row) []domcat.Item {
	log := logger.FromContext(ctx)
	items := make([]domcat.Item, len(rows))
	for i, row := range rows {
		item, errs := domcat.FromRow(row, i)
		for _, err := range errs {
			log.Warn("Malformed catalog cell",
				zap.String("id", item.ID()),
				zap.Error(err),
			)
		}
		items[i] = item
	}
	return items
}
