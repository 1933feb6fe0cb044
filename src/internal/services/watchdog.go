package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/yaffw/watchstore/src/internal/domain"
)

// LiveMarker is what the watchdog needs from the store.
type LiveMarker interface {
	CurrentlyPlayingID() string
	ClearCurrentlyPlaying(videoID string) bool
	GetProgress(videoID string) (domain.ProgressMark, bool)
}

// PlaybackWatchdog releases the currently-playing marker when the live video
// has not reported progress for longer than the idle window, e.g. because
// the player crashed before calling OnEnd.
type PlaybackWatchdog struct {
	store    LiveMarker
	idle     time.Duration
	interval time.Duration
	now      func() time.Time
	logger   zerolog.Logger

	// first time the current marker was seen, for videos with no progress yet
	seenID string
	seenAt time.Time
}

func NewPlaybackWatchdog(store LiveMarker, idle time.Duration, logger zerolog.Logger) *PlaybackWatchdog {
	interval := idle / 3
	if interval < time.Second {
		interval = time.Second
	}
	return &PlaybackWatchdog{
		store:    store,
		idle:     idle,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// Run checks the marker periodically until ctx is cancelled.
func (w *PlaybackWatchdog) Run(ctx context.Context) {
	w.logger.Info().Dur("idle", w.idle).Msg("playback watchdog started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check runs one pass and reports whether the marker was released.
func (w *PlaybackWatchdog) Check() bool {
	id := w.store.CurrentlyPlayingID()
	if id == "" {
		w.seenID = ""
		return false
	}

	now := w.now()
	if id != w.seenID {
		w.seenID = id
		w.seenAt = now
	}

	last := w.seenAt
	if p, ok := w.store.GetProgress(id); ok && p.LastWatched.After(last) {
		last = p.LastWatched
	}
	if now.Sub(last) <= w.idle {
		return false
	}

	if !w.store.ClearCurrentlyPlaying(id) {
		return false
	}
	w.seenID = ""
	w.logger.Warn().
		Str("video_id", id).
		Dur("idle_for", now.Sub(last)).
		Msg("released stale playback marker")
	return true
}
