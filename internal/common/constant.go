package common

import "time"

// AuthCookieName is the cookie that carries the signed session token.
const AuthCookieName = "jwt"

// SessionLifetime is the default validity of an issued session token.
const SessionLifetime = 15 * 24 * time.Hour

// Suggestion sizing: how many users are sampled and how many are returned.
const (
	SuggestionSampleSize = 10
	SuggestionLimit      = 4
)

// MinPasswordLength is enforced on signup and password change.
const MinPasswordLength = 6
