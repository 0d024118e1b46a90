package service

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/taskhub/internal/apperr"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/google/uuid"
)

type TokenIssuer interface {
	GenerateAccessToken(userID, email, role string) (string, error)
}

type Auth struct {
	users  UserStore
	tokens TokenIssuer
	now    clock
}

func NewAuth(users UserStore, tokens TokenIssuer) *Auth {
	return &Auth{users: users, tokens: tokens, now: utcNow}
}

type Session struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

func (s *Auth) Register(ctx context.Context, req user.RegisterRequest) (Session, error) {
	hash, err := security.HashPassword(req.Password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return Session{}, apperr.BadRequest("validation_error", "Password must be at most 72 bytes")
	}
	if err != nil {
		return Session{}, apperr.Internal("Could not create user", err)
	}

	role := req.Role
	if role == "" {
		role = user.RoleUser
	}

	now := s.now()

	u, err := s.users.Create(ctx, user.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailAlreadyUsed) {
			return Session{}, apperr.BadRequest("email_taken", "Email is already in use.")
		}
		return Session{}, apperr.Internal("Could not create user", err)
	}

	return s.session(u)
}

func (s *Auth) Login(ctx context.Context, req user.LoginRequest) (Session, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			security.DummyCompare(req.Password)
			return Session{}, invalidCredentials()
		}
		return Session{}, apperr.Internal("Could not log in", err)
	}

	if err := security.CheckPassword(u.PasswordHash, req.Password); err != nil {
		return Session{}, invalidCredentials()
	}

	return s.session(u)
}

func (s *Auth) Me(ctx context.Context, p user.Principal) (user.User, error) {
	u, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, apperr.Unauthenticated("unauthorized", "The user belonging to this token no longer exists")
		}
		return user.User{}, apperr.Internal("Could not fetch user", err)
	}
	return u, nil
}

func (s *Auth) session(u user.User) (Session, error) {
	token, err := s.tokens.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return Session{}, apperr.Internal("Could not generate access token", err)
	}
	return Session{User: u, Token: token}, nil
}

func invalidCredentials() error {
	return apperr.Unauthenticated("invalid_credentials", "Email or password is incorrect.")
}
