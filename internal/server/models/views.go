package models

import "time"

// PublicUser is the serialized form of a User.
type PublicUser struct {
	ID         string    `json:"_id"`
	Username   string    `json:"username"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Followers  []string  `json:"followers"`
	Following  []string  `json:"following"`
	LikedPosts []string  `json:"likedPosts"`
	ProfileImg string    `json:"profileImg"`
	CoverImg   string    `json:"coverImg"`
	Bio        string    `json:"bio"`
	Link       string    `json:"link"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UserRef is the populated reference to another user inside posts,
// comments and notifications.
type UserRef struct {
	ID         string `json:"_id"`
	Username   string `json:"username,omitempty"`
	FullName   string `json:"fullName,omitempty"`
	ProfileImg string `json:"profileImg,omitempty"`
}

func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username, FullName: u.FullName, ProfileImg: u.ProfileImg}
}

type CommentView struct {
	ID        string    `json:"_id"`
	User      UserRef   `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type PostView struct {
	ID        string        `json:"_id"`
	User      UserRef       `json:"user"`
	Text      string        `json:"text,omitempty"`
	Img       string        `json:"img,omitempty"`
	Likes     []string      `json:"likes"`
	Comments  []CommentView `json:"comments"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type NotificationView struct {
	ID        string           `json:"_id"`
	From      UserRef          `json:"from"`
	To        string           `json:"to"`
	Type      NotificationKind `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
