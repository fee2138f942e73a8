package catalog

import (
	"context"

	domcat "github.com/kailas-cloud/lapmatch/internal/domain/catalog"
)

// Source loads the raw catalog in scan order.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]domcat.Item, error)
}
