package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abanwa/twitter/internal/common"
	"github.com/abanwa/twitter/internal/logging"
	"github.com/abanwa/twitter/internal/server/auth"
	"github.com/abanwa/twitter/internal/server/config"
	"github.com/abanwa/twitter/internal/server/media"
	"github.com/abanwa/twitter/internal/server/models"
	"github.com/abanwa/twitter/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type SignupInput struct {
	FullName string
	Username string
	Email    string
	Password string
}

// UpdateInput carries a profile change. Empty fields are left as they
// are; images are upload payloads, not URLs.
type UpdateInput struct {
	FullName        string
	Username        string
	Email           string
	CurrentPassword string
	NewPassword     string
	Bio             string
	Link            string
	ProfileImg      string
	CoverImg        string
}

// UserService covers accounts and sessions: signup, login, logout, the
// access gate check, profiles and suggestions.
type UserService struct {
	repomanager      repomanager.RepositoryManager
	media            media.Host
	revoker          auth.Revoker
	jwtSecret        []byte
	validityDuration time.Duration
	log              logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, host media.Host, revoker auth.Revoker, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		repomanager:      m,
		media:            host,
		revoker:          revoker,
		jwtSecret:        []byte(cfg.SecretKey),
		validityDuration: cfg.TokenValidityDuration,
		log:              log.With("module", "users"),
	}
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, *auth.Session, error) {
	if in.FullName == "" || in.Username == "" {
		return nil, nil, fmt.Errorf("%w: full name and username are required", common.ErrorValidation)
	}
	if err := validate.Var(in.Email, "required,email"); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid email format", common.ErrorValidation)
	}
	if len(in.Password) < common.MinPasswordLength {
		return nil, nil, fmt.Errorf("%w: password must be at least %d characters long", common.ErrorValidation, common.MinPasswordLength)
	}

	repo := s.repomanager.Users()
	if err := s.checkFree(ctx, "", in.Username, in.Email); err != nil {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w: %v", common.ErrorInternal, err)
	}

	user, err := repo.Create(ctx, &models.User{
		FullName:     in.FullName,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, nil, fmt.Errorf("%w: username or email is already taken", common.ErrorAlreadyExists)
		}
		return nil, nil, storeErr("create user", err)
	}

	session, err := s.issue(user.ID)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info(ctx, "user signed up", "user", user.ID)
	return user, session, nil
}

// Login gives the same answer for an unknown username and a wrong
// password.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, *auth.Session, error) {
	user, err := s.repomanager.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorInvalidCredentials
		}
		return nil, nil, storeErr("get user", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("check password: %w: %v", common.ErrorInternal, err)
	}

	session, err := s.issue(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Logout revokes the token until it would have expired. Unusable tokens
// are ignored; the cookie is cleared either way.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w: %v", common.ErrorInternal, err)
	}
	return nil
}

// Authenticate resolves a session token to its user. Any problem with the
// token, including a user that no longer exists, is ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: no token provided", common.ErrorUnauthorized)
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w: %v", common.ErrorInternal, err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenRevoked)
	}

	user, err := s.repomanager.Users().GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: user not found", common.ErrorUnauthorized)
		}
		return nil, storeErr("get user", err)
	}
	return user, nil
}

func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repomanager.Users().GetByUsername(ctx, username)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	return user, nil
}

// Suggested draws a random sample of other users and returns up to
// SuggestionLimit of them that the caller does not follow yet.
func (s *UserService) Suggested(ctx context.Context, callerID string) ([]*models.User, error) {
	repo := s.repomanager.Users()

	caller, err := repo.GetByID(ctx, callerID)
	if err != nil {
		return nil, lookupErr("user", err)
	}

	sample, err := repo.Sample(ctx, callerID, common.SuggestionSampleSize)
	if err != nil {
		return nil, storeErr("sample users", err)
	}

	out := make([]*models.User, 0, common.SuggestionLimit)
	for _, u := range sample {
		if u.ID == callerID || caller.IsFollowing(u.ID) {
			continue
		}
		out = append(out, u)
		if len(out) == common.SuggestionLimit {
			break
		}
	}
	return out, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateInput) (*models.User, error) {
	repo := s.repomanager.Users()

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupErr("user", err)
	}

	if (in.CurrentPassword == "") != (in.NewPassword == "") {
		return nil, fmt.Errorf("%w: please provide both current password and new password", common.ErrorValidation)
	}
	if in.NewPassword != "" {
		if err := auth.CheckPassword(user.PasswordHash, in.CurrentPassword); err != nil {
			return nil, fmt.Errorf("%w: current password is incorrect", common.ErrorValidation)
		}
		if len(in.NewPassword) < common.MinPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters long", common.ErrorValidation, common.MinPasswordLength)
		}
		hash, err := auth.HashPassword(in.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w: %v", common.ErrorInternal, err)
		}
		user.PasswordHash = hash
	}

	if in.Email != "" && in.Email != user.Email {
		if err := validate.Var(in.Email, "email"); err != nil {
			return nil, fmt.Errorf("%w: invalid email format", common.ErrorValidation)
		}
	}
	if err := s.checkFree(ctx, user.ID, in.Username, in.Email); err != nil {
		return nil, err
	}

	if in.ProfileImg != "" {
		if user.ProfileImg, err = s.replaceImage(ctx, user.ProfileImg, in.ProfileImg); err != nil {
			return nil, err
		}
	}
	if in.CoverImg != "" {
		if user.CoverImg, err = s.replaceImage(ctx, user.CoverImg, in.CoverImg); err != nil {
			return nil, err
		}
	}

	user.FullName = orKeep(in.FullName, user.FullName)
	user.Username = orKeep(in.Username, user.Username)
	user.Email = orKeep(in.Email, user.Email)
	user.Bio = orKeep(in.Bio, user.Bio)
	user.Link = orKeep(in.Link, user.Link)

	if err := repo.Update(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("%w: username or email is already taken", common.ErrorAlreadyExists)
		}
		return nil, storeErr("update user", err)
	}

	return s.Me(ctx, userID)
}

// replaceImage uploads the new payload and then drops the previous asset.
func (s *UserService) replaceImage(ctx context.Context, oldURL, payload string) (string, error) {
	url, err := s.media.Upload(ctx, payload)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return "", err
		}
		return "", fmt.Errorf("upload image: %w: %v", common.ErrorInternal, err)
	}
	if oldURL != "" {
		if err := s.media.Delete(ctx, oldURL); err != nil {
			s.log.Warn(ctx, "previous image not deleted", "url", oldURL, "error", err)
		}
	}
	return url, nil
}

// checkFree rejects a username or email held by another user.
func (s *UserService) checkFree(ctx context.Context, selfID, username, email string) error {
	repo := s.repomanager.Users()

	if username != "" {
		u, err := repo.GetByUsername(ctx, username)
		switch {
		case err == nil && u.ID != selfID:
			return fmt.Errorf("%w: username is already taken", common.ErrorAlreadyExists)
		case err != nil && !errors.Is(err, common.ErrorNotFound):
			return storeErr("get user", err)
		}
	}
	if email != "" {
		u, err := repo.GetByEmail(ctx, email)
		switch {
		case err == nil && u.ID != selfID:
			return fmt.Errorf("%w: email is already taken", common.ErrorAlreadyExists)
		case err != nil && !errors.Is(err, common.ErrorNotFound):
			return storeErr("get user", err)
		}
	}
	return nil
}

func (s *UserService) issue(userID string) (*auth.Session, error) {
	session, err := auth.GenerateToken(userID, s.jwtSecret, s.validityDuration)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w: %v", common.ErrorInternal, err)
	}
	return session, nil
}

func orKeep(v, cur string) string {
	if v == "" {
		return cur
	}
	return v
}
