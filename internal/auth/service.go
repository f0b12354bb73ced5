package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/docblog/internal/domain/user"
	"github.com/geocoder89/docblog/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidRole        = errors.New("role must be doctor or patient")
)

type UserStore interface {
	Create(ctx context.Context, in user.NewUser) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByLogin(ctx context.Context, login string) (user.User, error)
}

type Session struct {
	User      user.User
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	FullName string
	Username string
	Email    string
	Password string
	Role     user.Role
}

type Service struct {
	users UserStore
	jwt   *Manager
}

func NewService(users UserStore, jwtManager *Manager) *Service {
	return &Service{users: users, jwt: jwtManager}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	if !in.Role.Valid() {
		return Session{}, ErrInvalidRole
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hashing password: %w", err)
	}

	u, err := s.users.Create(ctx, user.NewUser{
		Username:     strings.TrimSpace(in.Username),
		FullName:     strings.TrimSpace(in.FullName),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Role:         in.Role,
	})
	if err != nil {
		return Session{}, err
	}

	return s.issue(u)
}

// Authenticate accepts either the username or the email as login.
func (s *Service) Authenticate(ctx context.Context, login, password string) (Session, error) {
	u, err := s.users.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// burn a comparison so unknown logins take as long as wrong passwords
			_ = security.CheckPassword(dummyHash(), password)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("looking up user: %w", err)
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	return s.issue(u)
}

// Verify checks the token and that its user still exists.
func (s *Service) Verify(ctx context.Context, token string) (user.Identity, error) {
	claims, err := s.jwt.VerifyAccessToken(token)
	if err != nil {
		return user.Identity{}, ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Identity{}, ErrInvalidToken
		}
		return user.Identity{}, fmt.Errorf("resolving token user: %w", err)
	}

	return u.Identity(), nil
}

func (s *Service) issue(u user.User) (Session, error) {
	token, exp, err := s.jwt.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		return Session{}, fmt.Errorf("generating token: %w", err)
	}
	return Session{User: u, Token: token, ExpiresAt: exp}, nil
}

var (
	dummyOnce sync.Once
	dummy     string
)

func dummyHash() string {
	dummyOnce.Do(func() {
		dummy, _ = security.HashPassword("not-a-real-password")
	})
	return dummy
}
