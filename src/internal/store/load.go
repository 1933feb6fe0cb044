package store

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yaffw/watchstore/src/internal/domain"
	"github.com/yaffw/watchstore/src/internal/metrics"
)

// LoadStoredData seeds memory from the blob store. Each list is read
// independently; a missing, unreadable or corrupt list starts empty and the
// failure is only logged.
func (s *Store) LoadStoredData(ctx context.Context) {
	var (
		watched  []domain.WatchedMark
		progress []domain.ProgressMark
		comments []domain.Comment
	)

	var g errgroup.Group
	g.Go(func() error {
		watched = loadList[domain.WatchedMark](ctx, s, KeyWatched)
		return nil
	})
	g.Go(func() error {
		progress = loadList[domain.ProgressMark](ctx, s, KeyProgress)
		return nil
	})
	g.Go(func() error {
		comments = loadList[domain.Comment](ctx, s, KeyComments)
		return nil
	})
	_ = g.Wait()

	watched = dedupeWatched(watched)
	progress = dedupeProgress(progress)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.watched = watched
	s.progress = progress
	s.comments = comments
	s.latest = buildLatestIndex(comments)

	s.logger.Info().
		Int("watched", len(watched)).
		Int("progress", len(progress)).
		Int("comments", len(comments)).
		Msg("loaded stored data")
}

func loadList[T any](ctx context.Context, s *Store, key string) []T {
	out := []T{}

	raw, found, err := s.persist.blobs.Get(ctx, key)
	if err != nil {
		metrics.RecordLoad(key, "failed")
		s.logger.Error().Err(err).Str("key", key).Msg("failed to load stored data")
		return out
	}
	if !found || raw == "" {
		metrics.RecordLoad(key, "missing")
		return out
	}

	list, err := decodeList[T](raw)
	if err != nil {
		metrics.RecordLoad(key, "corrupt")
		s.logger.Error().Err(err).Str("key", key).Msg("discarding unparsable stored data")
		return out
	}
	metrics.RecordLoad(key, "loaded")
	return list
}

func decodeList[T any](raw string) ([]T, error) {
	var list []T
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

// dedupeWatched keeps the last mark per video, preserving order of the kept marks.
func dedupeWatched(in []domain.WatchedMark) []domain.WatchedMark {
	last := make(map[string]int, len(in))
	for i, w := range in {
		last[w.VideoID] = i
	}
	out := make([]domain.WatchedMark, 0, len(last))
	for i, w := range in {
		if last[w.VideoID] == i {
			out = append(out, w)
		}
	}
	return out
}

// dedupeProgress keeps the last mark per video and re-derives completion.
func dedupeProgress(in []domain.ProgressMark) []domain.ProgressMark {
	last := make(map[string]int, len(in))
	for i, p := range in {
		last[p.VideoID] = i
	}
	out := make([]domain.ProgressMark, 0, len(last))
	for i, p := range in {
		if last[p.VideoID] == i {
			out = append(out, p.Recompute())
		}
	}
	return out
}
