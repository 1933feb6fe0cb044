package store

import (
	"github.com/yaffw/watchstore/src/internal/domain"
)

// MarkAsWatched records videoID as watched now, replacing any earlier mark.
func (s *Store) MarkAsWatched(videoID string, rating *int) domain.WatchedMark {
	s.mu.Lock()
	defer s.mu.Unlock()

	mark := domain.WatchedMark{
		VideoID:   videoID,
		WatchedAt: s.now(),
		Rating:    rating,
	}
	next := make([]domain.WatchedMark, 0, len(s.watched)+1)
	for _, w := range s.watched {
		if w.VideoID != videoID {
			next = append(next, w)
		}
	}
	next = append(next, mark)

	s.watched = next
	s.persist.submit(KeyWatched, next)
	return mark
}

// UnmarkAsWatched removes the watched mark for videoID. It reports whether a
// mark existed; nothing is written when it did not.
func (s *Store) UnmarkAsWatched(videoID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.WatchedMark, 0, len(s.watched))
	for _, w := range s.watched {
		if w.VideoID != videoID {
			next = append(next, w)
		}
	}
	if len(next) == len(s.watched) {
		return false
	}

	s.watched = next
	s.persist.submit(KeyWatched, next)
	return true
}

// UpdateProgress records the playback position for videoID. It is called on
// every playback tick.
func (s *Store) UpdateProgress(videoID string, currentTime, duration float64) domain.ProgressMark {
	s.mu.Lock()
	defer s.mu.Unlock()

	mark := domain.NewProgressMark(videoID, currentTime, duration, s.now())
	next := make([]domain.ProgressMark, 0, len(s.progress)+1)
	for _, p := range s.progress {
		if p.VideoID != videoID {
			next = append(next, p)
		}
	}
	next = append(next, mark)

	s.progress = next
	s.persist.submit(KeyProgress, next)
	return mark
}
