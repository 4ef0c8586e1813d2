// Package auth issues and verifies session tokens, hashes passwords and
// keeps the denylist of tokens revoked by logout.
package auth

import (
	"errors"
	"time"

	"github.com/abanwa/twitter/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the registered claims plus the id of the signed-in user. The
// registered ID (jti) names the token in the revocation denylist.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Session is a freshly signed token and what it was signed for.
type Session struct {
	Token     string
	TokenID   string
	UserID    string
	ExpiresAt time.Time
}

var now = time.Now

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (*Session, error) {
	issued := now()
	s := &Session{
		TokenID:   uuid.NewString(),
		UserID:    userID,
		ExpiresAt: issued.Add(validityDuration),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.TokenID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(secretKey)
	if err != nil {
		return nil, err
	}
	s.Token = signed
	return s, nil
}

// ParseToken verifies signature and expiry. Expired tokens yield
// common.ErrTokenExpired, anything else unusable common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
