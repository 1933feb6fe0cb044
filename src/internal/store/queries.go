package store

import (
	"slices"

	"github.com/yaffw/watchstore/src/internal/domain"
	"github.com/yaffw/watchstore/src/internal/policy"
)

// Videos returns the current catalog, whatever the fetch state.
func (s *Store) Videos() []domain.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.videos)
}

func (s *Store) WatchedVideos() []domain.WatchedMark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.watched)
}

func (s *Store) IsVideoWatched(videoID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isWatched(videoID)
}

// GetProgress returns the progress mark for videoID, if any.
func (s *Store) GetProgress(videoID string) (domain.ProgressMark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.progressFor(videoID)
	if p == nil {
		return domain.ProgressMark{}, false
	}
	return *p, true
}

// Filter returns the catalog videos matching f, in catalog order.
func (s *Store) Filter(f domain.Filter) []domain.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Video{}
	for _, v := range s.videos {
		if f.Matches(s.isWatched(v.ID), s.progressFor(v.ID)) {
			out = append(out, v)
		}
	}
	return out
}

// FilterCounts partitions the catalog; Watched+InProgress+Unwatched == All.
type FilterCounts struct {
	All        int `json:"all"`
	Watched    int `json:"watched"`
	InProgress int `json:"inProgress"`
	Unwatched  int `json:"unwatched"`
}

func (s *Store) Counts() FilterCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := FilterCounts{All: len(s.videos)}
	for _, v := range s.videos {
		switch domain.Classify(s.isWatched(v.ID), s.progressFor(v.ID)) {
		case domain.BucketWatched:
			counts.Watched++
		case domain.BucketInProgress:
			counts.InProgress++
		case domain.BucketUnwatched:
			counts.Unwatched++
		}
	}
	return counts
}

// ProfileStats is the aggregate shown on the profile screen.
type ProfileStats struct {
	TotalVideos     int `json:"totalVideos"`
	WatchedCount    int `json:"watchedCount"`
	InProgressCount int `json:"inProgressCount"`
	TotalComments   int `json:"totalComments"`
	CompletionRate  int `json:"completionRate"` // Percent
}

func (s *Store) Stats() ProfileStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inProgress := 0
	for _, p := range s.progress {
		if p.InProgress() {
			inProgress++
		}
	}
	return ProfileStats{
		TotalVideos:     len(s.videos),
		WatchedCount:    len(s.watched),
		InProgressCount: inProgress,
		TotalComments:   len(s.comments),
		CompletionRate:  policy.CompletionRate(len(s.watched), len(s.videos)),
	}
}

func (s *Store) isWatched(videoID string) bool {
	for _, w := range s.watched {
		if w.VideoID == videoID {
			return true
		}
	}
	return false
}

func (s *Store) progressFor(videoID string) *domain.ProgressMark {
	for i := range s.progress {
		if s.progress[i].VideoID == videoID {
			p := s.progress[i]
			return &p
		}
	}
	return nil
}
