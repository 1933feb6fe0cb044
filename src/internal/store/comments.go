package store

import (
	"github.com/yaffw/watchstore/src/internal/domain"
	"github.com/yaffw/watchstore/src/internal/policy"
)

// AddComment appends a comment by author. Text is stored as given; callers
// validate it with policy.NormalizeCommentText first.
func (s *Store) AddComment(videoID, text, author string) domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := domain.Comment{
		ID:        s.newID(),
		VideoID:   videoID,
		Text:      text,
		Author:    author,
		CreatedAt: s.now(),
	}
	next := make([]domain.Comment, 0, len(s.comments)+1)
	next = append(next, s.comments...)
	next = append(next, c)

	s.comments = next
	s.latest[videoID] = c.ID
	s.persist.submit(KeyComments, next)
	return c
}

// UpdateComment replaces the text of commentID in place. It reports whether
// the comment exists.
func (s *Store) UpdateComment(commentID, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.commentIndex(commentID)
	if idx < 0 {
		return false
	}
	s.setCommentText(idx, text)
	return true
}

// EditComment is UpdateComment gated by the edit policy, checked and applied
// atomically. found is false for an unknown ID; allowed is false when the
// policy denies the edit, in which case nothing changes.
func (s *Store) EditComment(commentID, text string) (updated domain.Comment, found, allowed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.commentIndex(commentID)
	if idx < 0 {
		return domain.Comment{}, false, false
	}
	c := s.comments[idx]
	if !policy.CanEditComment(c, s.latest[c.VideoID] == c.ID, s.now()) {
		return c, true, false
	}
	s.setCommentText(idx, text)
	return s.comments[idx], true, true
}

// setCommentText swaps in a copy of the list with comment idx changed.
// Callers hold s.mu.
func (s *Store) setCommentText(idx int, text string) {
	next := make([]domain.Comment, len(s.comments))
	copy(next, s.comments)
	next[idx].Text = text

	s.comments = next
	s.persist.submit(KeyComments, next)
}

// DeleteComment removes commentID. It reports whether the comment existed.
func (s *Store) DeleteComment(commentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.commentIndex(commentID)
	if idx < 0 {
		return false
	}
	removed := s.comments[idx]
	next := make([]domain.Comment, 0, len(s.comments)-1)
	next = append(next, s.comments[:idx]...)
	next = append(next, s.comments[idx+1:]...)

	s.comments = next
	if s.latest[removed.VideoID] == removed.ID {
		s.reindexLatest(removed.VideoID)
	}
	s.persist.submit(KeyComments, next)
	return true
}

// GetCommentsForVideo returns the comments on videoID in creation order.
func (s *Store) GetCommentsForVideo(videoID string) []domain.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commentsFor(videoID)
}

// CommentThread returns the comments on videoID newest first, the order in
// which they are displayed.
func (s *Store) CommentThread(videoID string) []domain.Comment {
	return policy.NewestFirst(s.GetCommentsForVideo(videoID))
}

// ThreadEntry is a comment as displayed: with its edit permission and
// relative timestamp, both taken at the same instant.
type ThreadEntry struct {
	domain.Comment
	CanEdit        bool   `json:"canEdit"`
	CreatedAtLabel string `json:"createdAtLabel"`
}

// CommentThreadEntries returns the display form of the thread on videoID,
// newest first.
func (s *Store) CommentThreadEntries(videoID string) []ThreadEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	thread := policy.NewestFirst(s.commentsFor(videoID))
	out := make([]ThreadEntry, 0, len(thread))
	for _, c := range thread {
		out = append(out, ThreadEntry{
			Comment:        c,
			CanEdit:        policy.CanEditComment(c, s.latest[c.VideoID] == c.ID, now),
			CreatedAtLabel: policy.FormatCreatedAt(c.CreatedAt, now),
		})
	}
	return out
}

// Comment looks up a single comment by ID.
func (s *Store) Comment(commentID string) (domain.Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.commentIndex(commentID)
	if idx < 0 {
		return domain.Comment{}, false
	}
	return s.comments[idx], true
}

// CanEditComment applies the edit policy to commentID at the current time.
func (s *Store) CanEditComment(commentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.commentIndex(commentID)
	if idx < 0 {
		return false
	}
	c := s.comments[idx]
	return policy.CanEditComment(c, s.latest[c.VideoID] == c.ID, s.now())
}

func (s *Store) commentsFor(videoID string) []domain.Comment {
	out := []domain.Comment{}
	for _, c := range s.comments {
		if c.VideoID == videoID {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) commentIndex(commentID string) int {
	for i, c := range s.comments {
		if c.ID == commentID {
			return i
		}
	}
	return -1
}

// reindexLatest points the latest index for videoID at its newest remaining
// comment. Callers hold s.mu.
func (s *Store) reindexLatest(videoID string) {
	for i := len(s.comments) - 1; i >= 0; i-- {
		if s.comments[i].VideoID == videoID {
			s.latest[videoID] = s.comments[i].ID
			return
		}
	}
	delete(s.latest, videoID)
}

func buildLatestIndex(comments []domain.Comment) map[string]string {
	latest := make(map[string]string)
	for _, c := range comments {
		latest[c.VideoID] = c.ID
	}
	return latest
}
