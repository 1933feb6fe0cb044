package domain

import "fmt"

type Filter string

const (
	FilterAll        Filter = "all"
	FilterWatched    Filter = "watched"
	FilterInProgress Filter = "in_progress"
	FilterUnwatched  Filter = "unwatched"
)

// ParseFilter accepts the wire names of the catalog filters. An empty
// string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterWatched, FilterInProgress, FilterUnwatched:
		return Filter(s), nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Bucket is the single partition a video falls into.
type Bucket string

const (
	BucketWatched    Bucket = "watched"
	BucketInProgress Bucket = "in_progress"
	BucketUnwatched  Bucket = "unwatched"
)

// Classify places a video in exactly one bucket. A watched mark wins over
// leftover progress so no video is counted twice.
func Classify(watched bool, progress *ProgressMark) Bucket {
	switch {
	case watched:
		return BucketWatched
	case progress != nil && progress.InProgress():
		return BucketInProgress
	default:
		return BucketUnwatched
	}
}

// Matches is the catalog filter predicate.
//
// in_progress holds for any video with unfinished progress, watched or not;
// unwatched excludes both watched and in-progress videos.
func (f Filter) Matches(watched bool, progress *ProgressMark) bool {
	inProgress := progress != nil && progress.InProgress()
	switch f {
	case FilterWatched:
		return watched
	case FilterInProgress:
		return inProgress
	case FilterUnwatched:
		return !watched && !inProgress
	default:
		return true
	}
}
