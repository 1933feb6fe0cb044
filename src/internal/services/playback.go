package services

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/yaffw/watchstore/src/internal/domain"
)

// PlaybackStore is the part of the store a playback session drives.
type PlaybackStore interface {
	UpdateProgress(videoID string, currentTime, duration float64) domain.ProgressMark
	MarkAsWatched(videoID string, rating *int) domain.WatchedMark
	GetProgress(videoID string) (domain.ProgressMark, bool)
	SetCurrentlyPlayingID(videoID string)
	ClearCurrentlyPlaying(videoID string) bool
	CurrentlyPlayingID() string
}

// PlaybackSession turns player callbacks for one video into store updates.
// Only the session holding the store's currently-playing ID records
// progress; claiming playback in another session silently stops this one.
type PlaybackSession struct {
	store  PlaybackStore
	video  domain.Video
	logger zerolog.Logger

	mu       sync.Mutex
	duration float64
	playing  bool
	ended    bool
	marked   bool
}

func NewPlaybackSession(store PlaybackStore, video domain.Video, logger zerolog.Logger) *PlaybackSession {
	s := &PlaybackSession{
		store:  store,
		video:  video,
		logger: logger.With().Str("video_id", video.ID).Logger(),
	}
	if p, ok := store.GetProgress(video.ID); ok {
		s.ended = p.Duration > 0 && p.IsCompleted
		s.duration = p.Duration
	}
	if video.Duration != nil && s.duration == 0 {
		s.duration = *video.Duration
	}
	return s
}

// Play claims the live marker. It reports whether the player should seek
// back to the start because the video had already ended.
func (s *PlaybackSession) Play() (restart bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restart = s.ended
	s.ended = false
	s.marked = false
	s.playing = true
	s.store.SetCurrentlyPlayingID(s.video.ID)
	s.logger.Debug().Bool("restart", restart).Msg("playback started")
	return restart
}

// OnLoad records the media duration reported by the player.
func (s *PlaybackSession) OnLoad(duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if duration > 0 {
		s.duration = duration
	}
}

// OnProgress handles a playback tick. It returns false when the tick was
// ignored because this session is not live.
func (s *PlaybackSession) OnProgress(currentTime float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.liveLocked() {
		return false
	}

	mark := s.store.UpdateProgress(s.video.ID, currentTime, s.duration)
	if s.duration > 0 && mark.IsCompleted && !s.marked {
		s.store.MarkAsWatched(s.video.ID, nil)
		s.marked = true
		s.logger.Info().Int("percent", mark.Percent()).Msg("video watched")
	}
	return true
}

// OnEnd stops the session and releases the live marker if it still holds it.
func (s *PlaybackSession) OnEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ended = true
	s.playing = false
	s.store.ClearCurrentlyPlaying(s.video.ID)
}

// IsLive reports whether this session is playing and holds the live marker.
func (s *PlaybackSession) IsLive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked()
}

// Ended reports whether the last playback reached the end (or was already
// completed when the session was created).
func (s *PlaybackSession) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

func (s *PlaybackSession) liveLocked() bool {
	if !s.playing {
		return false
	}
	if s.store.CurrentlyPlayingID() != s.video.ID {
		s.playing = false
		return false
	}
	return true
}
