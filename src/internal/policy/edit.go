// Package policy holds the pure rules the rendering layer applies on top of
// store state: who may edit which comment, comment validation, and the
// human-readable formatting of times and rates.
package policy

import (
	"errors"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yaffw/watchstore/src/internal/domain"
)

const (
	// EditWindow is how long after creation the local user may revise
	// their latest comment.
	EditWindow = time.Hour

	MaxCommentLength = 500
)

var (
	ErrEmptyComment   = errors.New("comment text is empty")
	ErrCommentTooLong = errors.New("comment text is too long")
)

// CanEditComment reports whether c may be edited at now. isLatest must be
// true only for position 0 of the video's newest-first thread.
func CanEditComment(c domain.Comment, isLatest bool, now time.Time) bool {
	if !c.IsLocal() || !isLatest {
		return false
	}
	return now.Sub(c.CreatedAt) <= EditWindow
}

// NewestFirst returns the display order of a thread given its comments in
// creation order.
func NewestFirst(comments []domain.Comment) []domain.Comment {
	out := slices.Clone(comments)
	slices.Reverse(out)
	return out
}

// NormalizeCommentText trims text and enforces the length bounds. The store
// does not validate, so callers run this before AddComment/UpdateComment.
func NormalizeCommentText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyComment
	}
	if utf8.RuneCountInString(trimmed) > MaxCommentLength {
		return "", ErrCommentTooLong
	}
	return trimmed, nil
}

// CompletionRate is the rounded share of watched videos, 0 for an empty catalog.
func CompletionRate(watched, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(watched) / float64(total) * 100))
}
