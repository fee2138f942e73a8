package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lapmatch/internal/db"
	"github.com/kailas-cloud/lapmatch/internal/domain"
	domcat "github.com/kailas-cloud/lapmatch/internal/domain/catalog"
	"github.com/kailas-cloud/lapmatch/internal/logger"
)

// fieldRow holds the scan position of a stored item. Redis SCAN order is
// arbitrary, so the original catalog order travels with each hash.
const fieldRow = "_row"

const defaultBatchSize = 500

// store is the consumer interface for catalog hashes (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Manifest records what the last import wrote.
type Manifest struct {
	Count      int       `json:"count"`
	Source     string    `json:"source"`
	ImportedAt time.Time `json:"imported_at"`
}

// Redis reads and writes a catalog stored as one hash per item under
// <prefix>catalog:item:<id>, plus a JSON manifest.
type Redis struct {
	store     store
	prefix    string
	batchSize int
}

// NewRedis creates a Redis-backed catalog repository.
func NewRedis(s store, keyPrefix string) *Redis {
	return &Redis{store: s, prefix: keyPrefix, batchSize: defaultBatchSize}
}

// WithBatchSize overrides the number of hashes per pipelined round-trip.
func (r *Redis) WithBatchSize(n int) *Redis {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// Name describes the source for logs and snapshot metadata.
func (r *Redis) Name() string { return "redis:" + r.prefix + "catalog" }

func (r *Redis) itemKey(id string) string { return r.prefix + "catalog:item:" + id }

func (r *Redis) manifestKey() string { return r.prefix + "catalog:manifest" }

// Load scans every item hash and returns the items in their imported order.
func (r *Redis) Load(ctx context.Context) ([]domcat.Item, error) {
	keys, err := r.store.Scan(ctx, r.itemKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}
	if len(keys) == 0 {
		return nil, domain.ConfigError("no catalog items under %s", r.itemKey("*"))
	}

	type stored struct {
		order int
		row   domcat.Row
	}
	hashes := make([]stored, 0, len(keys))
	for start := 0; start < len(keys); start += r.batchSize {
		end := min(start+r.batchSize, len(keys))
		batch, err := r.store.HGetAllMulti(ctx, keys[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetch catalog items: %w", err)
		}
		for i, h := range batch {
			if len(h) == 0 {
				continue // deleted between SCAN and HGETALL
			}
			if err := domcat.CheckColumns(hashFields(h)); err != nil {
				return nil, fmt.Errorf("item %s: %w", keys[start+i], err)
			}
			order, convErr := strconv.Atoi(h[fieldRow])
			if convErr != nil {
				order = -1
			}
			delete(h, fieldRow)
			hashes = append(hashes, stored{order: order, row: domcat.Row(h)})
		}
	}

	sort.SliceStable(hashes, func(i, j int) bool {
		if hashes[i].order != hashes[j].order {
			return hashes[i].order < hashes[j].order
		}
		return hashes[i].row[domcat.ColumnID] < hashes[j].row[domcat.ColumnID]
	})
	rows := make([]domcat.Row, len(hashes))
	for i := range hashes {
		rows[i] = hashes[i].row
	}

	r.checkManifest(ctx, len(rows))
	return toItems(ctx, rows), nil
}

func (r *Redis) checkManifest(ctx context.Context, loaded int) {
	m, err := r.Manifest(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.FromContext(ctx).Warn("Failed to read catalog manifest", zap.Error(err))
		}
		return
	}
	if m.Count != loaded {
		logger.FromContext(ctx).Warn("Catalog size differs from manifest",
			zap.Int("loaded", loaded),
			zap.Int("manifest", m.Count),
			zap.String("source", m.Source),
		)
	}
}

// Manifest returns the manifest of the last import.
func (r *Redis) Manifest(ctx context.Context) (Manifest, error) {
	data, err := r.store.Get(ctx, r.manifestKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return Manifest{}, fmt.Errorf("catalog manifest: %w", domain.ErrNotFound)
		}
		return Manifest{}, fmt.Errorf("get manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// Replace deletes the stored catalog and writes items in pipelined batches,
// followed by a manifest naming source.
func (r *Redis) Replace(ctx context.Context, items []domcat.Item, source string) error {
	stale, err := r.store.Scan(ctx, r.itemKey("*"))
	if err != nil {
		return fmt.Errorf("scan catalog: %w", err)
	}
	for start := 0; start < len(stale); start += r.batchSize {
		end := min(start+r.batchSize, len(stale))
		if err := r.store.Del(ctx, stale[start:end]...); err != nil {
			return fmt.Errorf("delete stale items: %w", err)
		}
	}

	batch := make([]db.HashSetItem, 0, r.batchSize)
	flush := func() error {
		if err := r.store.HSetMulti(ctx, batch); err != nil {
			return fmt.Errorf("write catalog items: %w", err)
		}
		batch = batch[:0]
		return nil
	}
	for i := range items {
		fields := map[string]string(domcat.ToRow(&items[i]))
		fields[fieldRow] = strconv.Itoa(i)
		batch = append(batch, db.HashSetItem{Key: r.itemKey(items[i].ID()), Fields: fields})
		if len(batch) == r.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return err
		}
	}

	data, err := json.Marshal(Manifest{Count: len(items), Source: source, ImportedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := r.store.Set(ctx, r.manifestKey(), data); err != nil {
		return fmt.Errorf("set manifest: %w", err)
	}

	logger.FromContext(ctx).Info("Catalog written",
		zap.Int("items", len(items)),
		zap.Int("replaced", len(stale)),
		zap.String("source", source),
	)
	return nil
}

func hashFields(h map[string]string) []string {
	out := make([]string, 0, len(h))
	for k := range h {
		out = append(out, k)
	}
	return out
}
