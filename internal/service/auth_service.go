package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"equipviz/internal/models"
	"equipviz/internal/password"
	"equipviz/internal/repository"
)

var (
	// ErrUsernameTaken is returned when attempting to register a duplicate username.
	ErrUsernameTaken = errors.New("auth: username already registered")
	// ErrInvalidCredentials represents login failure.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrWrongPassword rejects a password change with a bad current password.
	ErrWrongPassword = errors.New("auth: old password is incorrect")
	// ErrTokenRevoked rejects refresh tokens invalidated by logout.
	ErrTokenRevoked = errors.New("auth: token revoked")
)

// UserRepository defines the storage contract used by the service.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateEmail(ctx context.Context, id int64, email string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// Blacklist abstracts refresh token revocation storage.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthService contains registration, login and account management logic.
type AuthService struct {
	repo      UserRepository
	hasher    password.Hasher
	tokens    *TokenService
	blacklist Blacklist
	logger    *zap.Logger
}

// NewAuthService builds AuthService.
func NewAuthService(repo UserRepository, hasher password.Hasher, tokens *TokenService, blacklist Blacklist, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Register creates a new account and issues its first token pair.
func (s *AuthService) Register(ctx context.Context, username, email, plain string) (*models.User, TokenPair, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" {
		return nil, TokenPair{}, errors.New("auth: username required")
	}
	if err := password.Validate(plain); err != nil {
		return nil, TokenPair{}, err
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, TokenPair{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, TokenPair{}, err
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, TokenPair{}, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, pair, nil
}

// Login authenticates a user and produces a token pair.
func (s *AuthService) Login(ctx context.Context, username, plain string) (*models.User, TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || plain == "" {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}

	if err := s.hasher.Compare(user.PasswordHash, plain); err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, pair, nil
}

// Logout revokes the presented refresh token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Validate(refreshToken, TokenTypeRefresh)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}

	s.logger.Info("user logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

// Refresh exchanges a valid, non-revoked refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Validate(refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrTokenRevoked
	}

	return s.tokens.GenerateAccess(claims.UserID)
}

// Profile returns the account for the given user id.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateEmail stores a new contact email on the account.
func (s *AuthService) UpdateEmail(ctx context.Context, userID int64, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("auth: email required")
	}
	if err := s.repo.UpdateEmail(ctx, userID, email); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

// ChangePassword verifies the current password and stores a new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPlain, newPlain string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.PasswordHash, oldPlain); err != nil {
		return ErrWrongPassword
	}
	if err := password.Validate(newPlain); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPlain)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.Int64("user_id", userID))
	return nil
}
