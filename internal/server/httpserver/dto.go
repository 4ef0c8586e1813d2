package httpserver

import "github.com/abanwa/twitter/internal/server/models"

type signupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	FullName        string `json:"fullName"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	Bio             string `json:"bio" binding:"max=160"`
	Link            string `json:"link" binding:"omitempty,url"`
	ProfileImg      string `json:"profileImg"`
	CoverImg        string `json:"coverImg"`
}

type createPostRequest struct {
	Text string `json:"text"`
	Img  string `json:"img"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

func publicUsers(list []*models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(list))
	for _, u := range list {
		out = append(out, u.Public())
	}
	return out
}
