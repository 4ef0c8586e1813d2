package models

import (
	"slices"
	"time"
)

// Post is authored content. Author never changes after creation; Likes is a
// set of user ids and Comments keeps arrival order.
type Post struct {
	ID        string
	Author    string
	Text      string
	Img       string
	Likes     []string
	Comments  []Comment
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Comment struct {
	ID        string    `json:"_id"`
	Author    string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikedBy reports whether the user with the given id likes p.
func (p *Post) LikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}
