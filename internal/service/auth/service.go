package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
	"github.com/jwalitptl/clinic-ledger/pkg/auth"
	"github.com/jwalitptl/clinic-ledger/pkg/security"
)

type Service struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	jwt    auth.JWTService
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, jwt auth.JWTService) *Service {
	return &Service{users: users, hasher: hasher, jwt: jwt}
}

// CreateUser adds a staff account.
func (s *Service) CreateUser(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &model.User{Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// Authenticate validates a bearer token.
func (s *Service) Authenticate(token string) (*model.TokenClaims, error) {
	return s.jwt.ValidateToken(token)
}
