package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaffw/watchstore/src/internal/adapters/memory"
	"github.com/yaffw/watchstore/src/internal/adapters/remote"
	"github.com/yaffw/watchstore/src/internal/config"
	"github.com/yaffw/watchstore/src/internal/services"
)

func TestOpenBlobStore_Backends(t *testing.T) {
	mr := miniredis.RunT(t)

	for _, backend := range []string{
		config.BackendMemory,
		config.BackendFile,
		config.BackendSQLite,
		config.BackendBadger,
		config.BackendRedis,
	} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Backend = backend
			cfg.DataDir = t.TempDir()
			cfg.Redis.Addr = mr.Addr()

			ctx := context.Background()
			blobs, closer, err := openBlobStore(ctx, cfg)
			require.NoError(t, err)
			defer closer.Close()

			require.NoError(t, blobs.Set(ctx, "videoComments", "[]"))
			v, found, err := blobs.Get(ctx, "videoComments")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "[]", v)
		})
	}
}

func TestOpenBlobStore_Unknown(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "etcd"
	_, _, err := openBlobStore(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrUnknownBackend)
}

func TestBuildCatalog(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, &memory.FixedCatalog{}, buildCatalog(cfg, zerolog.Nop()))

	cfg.Catalog.Source = config.CatalogDir
	cfg.Catalog.Dir = t.TempDir()
	assert.IsType(t, &services.LibraryScanner{}, buildCatalog(cfg, zerolog.Nop()))

	cfg.Catalog.Source = config.CatalogHTTP
	cfg.Catalog.URL = "http://catalog.local/videos.json"
	assert.IsType(t, &remote.HTTPCatalog{}, buildCatalog(cfg, zerolog.Nop()))
}
