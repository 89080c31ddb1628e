package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tungkyap/storage-management/internal/auth"
	"github.com/tungkyap/storage-management/internal/model"
	"github.com/tungkyap/storage-management/internal/repository"
)

var (
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

// AuthService issues bearer tokens against stored user credentials.
type AuthService interface {
	// Register creates a new user with a bcrypt-hashed password and the
	// default role.
	Register(ctx context.Context, email, password string) (*model.User, error)

	// Login verifies credentials and returns a signed JWT.
	Login(ctx context.Context, email, password string) (string, error)
}

// authService is a concrete implementation of AuthService.
type authService struct {
	repo   repository.UserRepository
	secret string
	expiry time.Duration
}

// NewAuthService constructs a new AuthService.
func NewAuthService(repo repository.UserRepository, secret string, expiry time.Duration) AuthService {
	return &authService{repo: repo, secret: secret, expiry: expiry}
}

func (s *authService) Register(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.DefaultRole,
	}
	return s.repo.Create(ctx, user)
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrCredentialsRequired
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(s.secret, s.expiry, user.ID, user.Email, user.Role)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
