// Package service implements credential hashing, token handling and the
// registration/login flows of the user service.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GunarsK-portfolio/user-service/internal/models"
	"github.com/GunarsK-portfolio/user-service/internal/repository"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrEmailTaken         = errors.New("email exists already")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrRevocationDisabled = errors.New("token revocation is not enabled")
)

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
}

// AuthService handles registration, login and bearer token checks.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*Claims, error)
}

type authService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenService
	denylist repository.TokenDenylist

	// dummyHash is verified against when there is no stored hash, so those
	// logins cost the same as a wrong password.
	dummyHash string
}

// NewAuthService creates an AuthService. denylist may be nil, in which case
// tokens cannot be revoked and stay valid until they expire. It pays for one
// bcrypt hash up front.
func NewAuthService(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenService, denylist repository.TokenDenylist) AuthService {
	dummyHash, _ := hasher.Hash(context.Background(), "user-enumeration-dummy")
	return &authService{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		denylist:  denylist,
		dummyHash: dummyHash,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	// Cheap rejection before paying for a hash. Create re-checks under lock.
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		// Spend the same bcrypt time as a real mismatch.
		s.hasher.Verify(ctx, password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}

	if user.PasswordHash == "" {
		// Created without credentials; keep the timing of a real mismatch.
		s.hasher.Verify(ctx, password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if s.denylist == nil {
		return ErrRevocationDisabled
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}

	var until time.Time
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.denylist.Revoke(ctx, claims.ID, until)
}

// Authenticate verifies token and, when revocation is enabled, rejects
// revoked tokens. A denylist lookup failure rejects the token.
func (s *authService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	if s.denylist == nil {
		return claims, nil
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}
