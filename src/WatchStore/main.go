package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/yaffw/watchstore/src/internal/adapters/badger"
	"github.com/yaffw/watchstore/src/internal/adapters/memory"
	"github.com/yaffw/watchstore/src/internal/adapters/postgres"
	"github.com/yaffw/watchstore/src/internal/adapters/redis"
	"github.com/yaffw/watchstore/src/internal/adapters/remote"
	"github.com/yaffw/watchstore/src/internal/adapters/sqlite"
	"github.com/yaffw/watchstore/src/internal/adapters/storage"
	"github.com/yaffw/watchstore/src/internal/config"
	"github.com/yaffw/watchstore/src/internal/httpapi"
	xlog "github.com/yaffw/watchstore/src/internal/log"
	"github.com/yaffw/watchstore/src/internal/ports"
	"github.com/yaffw/watchstore/src/internal/services"
	"github.com/yaffw/watchstore/src/internal/store"
)

func main() {
	configPath := flag.String("config", os.Getenv("WATCHSTORE_CONFIG"), "path to a YAML or JSON config file")
	flag.Parse()

	cfg, err := config.LoadStore(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	root := xlog.New(os.Stdout, cfg.LogLevel)
	logger := xlog.Component(root, "main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, root); err != nil {
		stop()
		logger.Fatal().Err(err).Msg("watchstore exited")
	}
}

func run(ctx context.Context, cfg config.StoreConfig, root zerolog.Logger) error {
	logger := xlog.Component(root, "main")
	logger.Info().Str("backend", cfg.Backend).Str("catalog", cfg.Catalog.Source).Msg("starting watchstore")

	blobs, closeBlobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	defer func() {
		if err := closeBlobs.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing backend")
		}
	}()

	st := store.New(blobs, buildCatalog(cfg, root),
		store.WithLogger(xlog.Component(root, "store")),
		store.WithDebounce(cfg.PersistDebounce.Std()),
	)
	st.LoadStoredData(ctx)
	go st.FetchVideos(ctx)

	if idle := cfg.WatchdogIdle.Std(); idle > 0 {
		go services.NewPlaybackWatchdog(st, idle, xlog.Component(root, "watchdog")).Run(ctx)
	}

	api := httpapi.New(st, httpapi.WithLogger(xlog.Component(root, "http")))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	return st.Close(shutdownCtx)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var noopCloser = closerFunc(func() error { return nil })

func openBlobStore(ctx context.Context, cfg config.StoreConfig) (ports.BlobStore, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewBlobStore(), noopCloser, nil

	case config.BackendFile:
		s, err := storage.NewFilesystemBlobStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, noopCloser, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
			return nil, nil, err
		}
		db, err := sqlite.Open(filepath.Join(cfg.DataDir, "watchstore.db"), sqlite.DefaultConfig())
		if err != nil {
			return nil, nil, err
		}
		s := sqlite.NewBlobStore(db)
		if err := s.InitSchema(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, db, nil

	case config.BackendBadger:
		s, err := badger.Open(filepath.Join(cfg.DataDir, "badger"))
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case config.BackendRedis:
		s, err := redis.Connect(ctx, redis.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: "watchstore:" + cfg.Profile + ":",
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case config.BackendPostgres:
		db, err := postgres.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		s := postgres.NewBlobStore(db, cfg.Profile)
		if err := s.InitSchema(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, db, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
}

func buildCatalog(cfg config.StoreConfig, root zerolog.Logger) ports.CatalogSupplier {
	switch cfg.Catalog.Source {
	case config.CatalogDir:
		return services.NewLibraryScanner(cfg.Catalog.Dir, cfg.Catalog.BaseURL, xlog.Component(root, "scanner"))
	case config.CatalogHTTP:
		return remote.NewHTTPCatalog(cfg.Catalog.URL, 10*time.Second)
	default:
		return memory.NewSampleCatalog(cfg.Catalog.Delay.Std())
	}
}

