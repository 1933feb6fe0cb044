package store

// Blob store keys, one per independently serialized list.
const (
	KeyWatched  = "watchedVideos"
	KeyProgress = "videoProgress"
	KeyComments = "videoComments"
)

var allKeys = []string{KeyWatched, KeyProgress, KeyComments}
