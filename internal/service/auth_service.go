package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"go-gin-blog/internal/core/apperr"
	"go-gin-blog/internal/domain"
	"go-gin-blog/pkg/utils"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"min=1,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthPayload struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Authenticator issues tokens. AuthService is the real one; demo mode swaps in a stub.
type Authenticator interface {
	Register(ctx context.Context, in RegisterInput) (*AuthPayload, error)
	Login(ctx context.Context, in LoginInput) (*AuthPayload, error)
}

type TokenIssuer interface {
	Issue(u *domain.User) (string, error)
}

const invalidCredentials = "invalid email or password"

type AuthService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
	now    Clock
}

var _ Authenticator = (*AuthService)(nil)

func NewAuthService(users domain.UserRepository, tokens TokenIssuer, l *zap.Logger) *AuthService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthService{users: users, tokens: tokens, log: l, now: utcNow}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthPayload, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	taken, err := s.users.EmailTaken(ctx, in.Email, "")
	if err != nil {
		return nil, apperr.Internal("check email", err)
	}
	if taken {
		return nil, apperr.Invalid("email", "email already taken")
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	now := s.now()
	u := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, apperr.Internal("create user", err)
	}
	s.log.Info("user registered", zap.String("id", u.ID))
	return s.issue(u)
}

// Login answers unknown emails and wrong passwords identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthPayload, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	hash := ""
	if u != nil {
		hash = u.PasswordHash
	}
	if !utils.CheckPassword(in.Password, hash) {
		return nil, apperr.Unauthenticated(invalidCredentials)
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *domain.User) (*AuthPayload, error) {
	tok, err := s.tokens.Issue(u)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}
	return &AuthPayload{Token: tok, User: u}, nil
}
