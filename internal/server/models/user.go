// Package models defines the server-side domain records shared by stores,
// services and the REST layer.
package models

import (
	"slices"
	"time"
)

// User is an account together with its side of the follow graph and the
// ids of posts it has liked. Followers/Following and LikedPosts are sets;
// stores only ever add to or remove from them atomically.
type User struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	Followers    []string
	Following    []string
	LikedPosts   []string
	ProfileImg   string
	CoverImg     string
	Bio          string
	Link         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsFollowing reports whether u follows the user with the given id.
func (u *User) IsFollowing(id string) bool {
	return slices.Contains(u.Following, id)
}

// Public strips credentials for serialization.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		Email:      u.Email,
		Followers:  nonNil(u.Followers),
		Following:  nonNil(u.Following),
		LikedPosts: nonNil(u.LikedPosts),
		ProfileImg: u.ProfileImg,
		CoverImg:   u.CoverImg,
		Bio:        u.Bio,
		Link:       u.Link,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
