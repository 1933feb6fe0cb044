package domain

import (
	"math"
	"time"
)

// CompletionThreshold is the fraction of a video's duration after which
// playback counts as completed.
const CompletionThreshold = 0.9

// Video is a catalog entry. The store only ever holds a read-only copy.
type Video struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Thumbnail   string   `json:"thumbnail"`
	VideoURL    string   `json:"videoUrl"`
	Duration    *float64 `json:"duration,omitempty"` // Seconds
	Genre       string   `json:"genre,omitempty"`
	ReleaseYear *int     `json:"releaseYear,omitempty"`
}

// WatchedMark records that a video was watched.
type WatchedMark struct {
	VideoID   string    `json:"videoId"`
	WatchedAt time.Time `json:"watchedAt"`
	Rating    *int      `json:"rating,omitempty"`
	Comment   string    `json:"comment,omitempty"`
}

// ProgressMark is the last known playback position of a video.
type ProgressMark struct {
	VideoID     string    `json:"videoId"`
	CurrentTime float64   `json:"currentTime"` // Seconds
	Duration    float64   `json:"duration"`    // Seconds, snapshot at update time
	LastWatched time.Time `json:"lastWatched"`
	IsCompleted bool      `json:"isCompleted"` // Derived, see NewProgressMark
}

// NewProgressMark builds a mark and derives IsCompleted from the times.
// Negative and non-finite times are stored as zero.
func NewProgressMark(videoID string, currentTime, duration float64, at time.Time) ProgressMark {
	currentTime = sanitizeSeconds(currentTime)
	duration = sanitizeSeconds(duration)
	return ProgressMark{
		VideoID:     videoID,
		CurrentTime: currentTime,
		Duration:    duration,
		LastWatched: at,
		IsCompleted: IsCompleted(currentTime, duration),
	}
}

func sanitizeSeconds(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(v, 0)
}

// IsCompleted reports whether currentTime has reached the completion threshold.
func IsCompleted(currentTime, duration float64) bool {
	return currentTime >= duration*CompletionThreshold
}

// Recompute re-derives IsCompleted, discarding whatever value was stored.
func (p ProgressMark) Recompute() ProgressMark {
	return NewProgressMark(p.VideoID, p.CurrentTime, p.Duration, p.LastWatched)
}

// InProgress reports whether playback has started but not completed.
func (p ProgressMark) InProgress() bool {
	return p.CurrentTime > 0 && !p.IsCompleted
}

// Percent returns the rounded completion percentage for display.
func (p ProgressMark) Percent() int {
	if p.Duration <= 0 {
		return 0
	}
	return int(math.Round(p.CurrentTime / p.Duration * 100))
}
