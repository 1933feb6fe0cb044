package domain

import "time"

// Comment is a user remark on a video. Only Text is ever mutated after creation.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsLocal reports whether the comment was written by the local user.
func (c Comment) IsLocal() bool {
	return c.Author == LocalAuthor
}
