package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-gin-blog/internal/domain"
)

// Identifier resolves a bearer token to a caller. Implementations return an error for
// tokens they reject; callers treat that as anonymous.
type Identifier interface {
	Identify(ctx context.Context, token string) (*domain.Caller, error)
}

type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

var ErrInvalidToken = errors.New("invalid token")

func (j *JWTer) Issue(u *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		Role:   string(u.Role),
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid && c.UserID != "" {
		return c, nil
	}
	return nil, ErrInvalidToken
}

func (j *JWTer) Identify(_ context.Context, token string) (*domain.Caller, error) {
	c, err := j.Parse(token)
	if err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(c.Role)
	if !ok {
		return nil, ErrInvalidToken
	}
	return &domain.Caller{ID: c.UserID, Role: role, Email: c.Email}, nil
}
