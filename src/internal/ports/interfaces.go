package ports

import (
	"context"

	"github.com/yaffw/watchstore/src/internal/domain"
)

// BlobStore is the durable medium the store mirrors its lists into.
// Values are whole serialized lists; there are no transactions across keys.
type BlobStore interface {
	// Get returns found=false (and no error) when the key has never been set.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string) error
}

// CatalogSupplier returns the full list of available videos.
type CatalogSupplier interface {
	FetchCatalog(ctx context.Context) ([]domain.Video, error)
}
