// Package store is the single owner of the application's watch state: the
// catalog, watched marks, playback progress and comments. Mutations are
// applied to memory first and mirrored to a ports.BlobStore in the
// background; reads only ever look at memory.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yaffw/watchstore/src/internal/domain"
	"github.com/yaffw/watchstore/src/internal/metrics"
	"github.com/yaffw/watchstore/src/internal/ports"
)

// FetchFailedMessage is the catalog error shown to the user.
const FetchFailedMessage = "Failed to fetch videos"

var errNoCatalog = errors.New("no catalog supplier configured")

type Store struct {
	catalog ports.CatalogSupplier
	persist *persister
	logger  zerolog.Logger
	now     func() time.Time
	newID   func() string

	mu       sync.RWMutex
	videos   []domain.Video
	loading  bool
	fetchErr string
	watched  []domain.WatchedMark
	progress []domain.ProgressMark
	comments []domain.Comment // creation order
	latest   map[string]string // videoID -> ID of its newest comment
	playing  string
}

type options struct {
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
	debounce time.Duration
}

type Option func(*options)

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces time.Now for timestamps and the edit window check.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces the comment ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithDebounce delays each background write by d so bursts of mutations to
// the same list collapse into one write.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// New creates an empty store. Call LoadStoredData to warm it from blobs and
// FetchVideos to load the catalog.
func New(blobs ports.BlobStore, catalog ports.CatalogSupplier, opts ...Option) *Store {
	o := options{
		logger: zerolog.Nop(),
		now:    time.Now,
		newID:  newCommentID,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store{
		catalog:  catalog,
		persist:  newPersister(blobs, o.logger, o.debounce),
		logger:   o.logger,
		now:      o.now,
		newID:    o.newID,
		videos:   []domain.Video{},
		watched:  []domain.WatchedMark{},
		progress: []domain.ProgressMark{},
		comments: []domain.Comment{},
		latest:   make(map[string]string),
	}
}

// newCommentID returns a time-ordered UUIDv7, falling back to v4 if the
// random source fails.
func newCommentID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// FetchVideos replaces the catalog with a fresh copy from the supplier. On
// failure the previous catalog is kept and the view switches to PhaseError.
// There is one attempt per call and concurrent calls are not coalesced.
func (s *Store) FetchVideos(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.fetchErr = ""
	s.mu.Unlock()

	var (
		videos []domain.Video
		err    error
	)
	if s.catalog == nil {
		err = errNoCatalog
	} else {
		videos, err = s.catalog.FetchCatalog(ctx)
	}
	metrics.RecordCatalogFetch(err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch videos")
		s.fetchErr = FetchFailedMessage
		return
	}
	s.videos = slices.Clone(videos)
	if s.videos == nil {
		s.videos = []domain.Video{}
	}
	s.logger.Info().Int("videos", len(s.videos)).Msg("catalog loaded")
}

// Catalog returns the current catalog view.
func (s *Store) Catalog() CatalogView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.loading:
		return CatalogView{Phase: PhaseLoading}
	case s.fetchErr != "":
		return CatalogView{Phase: PhaseError, Message: s.fetchErr}
	case len(s.videos) == 0:
		return CatalogView{Phase: PhaseEmpty}
	default:
		return CatalogView{Phase: PhaseContent, Videos: slices.Clone(s.videos)}
	}
}

// SetCurrentlyPlayingID makes videoID the single live playback target.
// An empty videoID clears it.
func (s *Store) SetCurrentlyPlayingID(videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = videoID
}

// ClearCurrentlyPlaying clears the live marker only if videoID still holds it.
func (s *Store) ClearCurrentlyPlaying(videoID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing != videoID || videoID == "" {
		return false
	}
	s.playing = ""
	return true
}

// CurrentlyPlayingID returns the live video, or "" when nothing plays.
func (s *Store) CurrentlyPlayingID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playing
}

// Flush blocks until every write issued so far has landed or failed.
func (s *Store) Flush(ctx context.Context) error {
	return s.persist.flush(ctx)
}

// LastPersistError reports the outcome of the latest write for key.
func (s *Store) LastPersistError(key string) error {
	return s.persist.lastError(key)
}

// Close flushes outstanding writes and stops the background writers. The
// store remains readable; later mutations are kept in memory only.
func (s *Store) Close(ctx context.Context) error {
	return s.persist.close(ctx)
}
