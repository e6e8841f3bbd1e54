package demo

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go-gin-blog/internal/core/apperr"
	"go-gin-blog/internal/core/auth"
	"go-gin-blog/internal/domain"
	"go-gin-blog/internal/service"
)

const (
	TokenPrefix = "stub-jwt-token-"
	base36      = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var ErrUnknownToken = errors.New("unknown stub token")

// StubAuth accepts any password. Unknown emails get a fresh user-role account named
// after the email's local part. Tokens live only in this process.
type StubAuth struct {
	users domain.UserRepository
	now   func() time.Time

	mu     sync.RWMutex
	tokens map[string]domain.Caller
}

var (
	_ service.Authenticator = (*StubAuth)(nil)
	_ auth.Identifier       = (*StubAuth)(nil)
)

func NewStubAuth(users domain.UserRepository) *StubAuth {
	return &StubAuth{
		users:  users,
		now:    func() time.Time { return time.Now().UTC() },
		tokens: map[string]domain.Caller{},
	}
}

func randBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.Intn(len(base36))]
	}
	return string(b)
}

func (s *StubAuth) Login(ctx context.Context, in service.LoginInput) (*service.AuthPayload, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, apperr.Invalid("email", "Email is required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	if u == nil {
		name, _, _ := strings.Cut(email, "@")
		if u, err = s.create(ctx, name, email); err != nil {
			return nil, err
		}
	}
	return s.issue(u), nil
}

func (s *StubAuth) Register(ctx context.Context, in service.RegisterInput) (*service.AuthPayload, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, apperr.Invalid("email", "Email is required")
	}
	taken, err := s.users.EmailTaken(ctx, email, "")
	if err != nil {
		return nil, apperr.Internal("check email", err)
	}
	if taken {
		return nil, apperr.Invalid("email", "email already taken")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	u, err := s.create(ctx, name, email)
	if err != nil {
		return nil, err
	}
	return s.issue(u), nil
}

func (s *StubAuth) create(ctx context.Context, name, email string) (*domain.User, error) {
	now := s.now()
	u := &domain.User{
		ID:        "new-" + randBase36(9),
		Name:      name,
		Email:     email,
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, apperr.Internal("create user", err)
	}
	return u, nil
}

func (s *StubAuth) issue(u *domain.User) *service.AuthPayload {
	tok := TokenPrefix + randBase36(9)
	s.mu.Lock()
	s.tokens[tok] = domain.Caller{ID: u.ID, Role: u.Role, Email: u.Email}
	s.mu.Unlock()
	return &service.AuthPayload{Token: tok, User: u}
}

// Identify resolves tokens issued by this process. The stored role is refreshed from the
// store so admin role changes apply to live sessions.
func (s *StubAuth) Identify(ctx context.Context, token string) (*domain.Caller, error) {
	s.mu.RLock()
	c, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownToken
	}
	u, err := s.users.FindByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.Revoke(token)
		return nil, ErrUnknownToken
	}
	return &domain.Caller{ID: u.ID, Role: u.Role, Email: u.Email}, nil
}

func (s *StubAuth) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}
