package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-blog/internal/domain"
)

func newJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "go-gin-blog", TTL: time.Hour}
}

func TestIssueAndIdentify(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue(&domain.User{ID: "u1", Email: "a@b.c", Role: domain.RoleAuthor})
	require.NoError(t, err)

	c, err := j.Identify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, &domain.Caller{ID: "u1", Role: domain.RoleAuthor, Email: "a@b.c"}, c)
}

func TestParseRejects(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue(&domain.User{ID: "u1", Role: domain.RoleUser})
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("other"), Issuer: j.Issuer, TTL: time.Hour}
	_, err = other.Parse(tok)
	assert.Error(t, err, "wrong secret")

	wrongIss := &JWTer{Secret: j.Secret, Issuer: "someone-else", TTL: time.Hour}
	_, err = wrongIss.Parse(tok)
	assert.Error(t, err, "wrong issuer")

	expired := &JWTer{Secret: j.Secret, Issuer: j.Issuer, TTL: -2 * time.Minute}
	old, err := expired.Issue(&domain.User{ID: "u1", Role: domain.RoleUser})
	require.NoError(t, err)
	_, err = j.Parse(old)
	assert.Error(t, err, "expired beyond leeway")

	_, err = j.Identify(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}

func TestIdentifyRejectsUnknownRole(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue(&domain.User{ID: "u1", Role: domain.Role("root")})
	require.NoError(t, err)
	_, err = j.Identify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
