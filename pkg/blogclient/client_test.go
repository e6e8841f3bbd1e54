package blogclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-gin-blog/internal/app"
	"go-gin-blog/internal/core/config"
	"go-gin-blog/internal/transport/http/router"
)

func newServer(t *testing.T, demo bool) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.DB.Driver = "memory"
	cfg.Demo.Enabled, cfg.Demo.Seed, cfg.Demo.Password = demo, true, "demo1234"
	cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTLMin = "client-test", "go-gin-blog", 60
	cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit = 10, 100

	a, err := app.Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	srv := httptest.NewServer(router.NewAPIEngine(a.Deps(nil)))
	t.Cleanup(srv.Close)
	return srv
}

func TestDemoLoginPersistsUnderStubKeys(t *testing.T) {
	srv := newServer(t, true)
	store := NewMemoryStore()
	c, err := New(Options{BaseURL: srv.URL, Store: store, Demo: true})
	require.NoError(t, err)
	assert.Equal(t, Anonymous, c.State())

	ctx := context.Background()
	u, err := c.Login(ctx, "jane@example.com", "anything")
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", u.Name)
	assert.Equal(t, Authenticated, c.State())
	assert.True(t, strings.HasPrefix(c.Token(), "stub-jwt-token-"))

	tok, ok, _ := store.Get(KeyStubToken)
	assert.True(t, ok)
	assert.Equal(t, c.Token(), tok)
	_, ok, _ = store.Get(KeyToken)
	assert.False(t, ok)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", me.Email)
	assert.Equal(t, "AUTHOR", me.Role)

	posts, err := c.Posts(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, posts.Posts, 2)
	assert.Equal(t, Pagination{Page: 1, Limit: 2, Total: 5, TotalPages: 3, HasNext: true}, posts.Pagination)
	assert.Equal(t, "Getting Started with GraphQL", posts.Posts[0].Title)
	assert.Equal(t, "John Doe", posts.Posts[0].Author.Name)

	require.NoError(t, c.Logout())
	assert.Equal(t, Anonymous, c.State())
	assert.Nil(t, c.User())
	_, ok, _ = store.Get(KeyStubToken)
	assert.False(t, ok)

	_, err = c.Me(ctx)
	assert.Equal(t, "UNAUTHENTICATED", CodeOf(err))
}

func TestFailedLoginClearsSession(t *testing.T) {
	srv := newServer(t, false)
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyToken, "stale"))
	require.NoError(t, store.Set(KeyUser, `{"id":"x","name":"Old"}`))

	c, err := New(Options{BaseURL: srv.URL, Store: store})
	require.NoError(t, err)
	assert.Equal(t, Authenticated, c.State())

	ctx := context.Background()
	_, err = c.Login(ctx, "nobody@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHENTICATED", CodeOf(err))
	assert.Equal(t, Anonymous, c.State())
	_, ok, _ := store.Get(KeyToken)
	assert.False(t, ok)

	_, err = c.Register(ctx, "Ada", "ada@example.com", "1")
	require.Error(t, err)
	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "BAD_USER_INPUT", gerr.Code())
	assert.NotEmpty(t, gerr.Extensions.Errors)

	u, err := c.Register(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "USER", u.Role)
	assert.Equal(t, Authenticated, c.State())
}

func TestFileStoreRestoresSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session", "blog.json")
	s := NewFileStore(path)
	require.NoError(t, s.Set(KeyToken, "tok-1"))
	require.NoError(t, s.Set(KeyUser, `{"id":"1","name":"John Doe","role":"AUTHOR"}`))

	c, err := New(Options{BaseURL: "http://127.0.0.1:1", Store: NewFileStore(path)})
	require.NoError(t, err)
	assert.Equal(t, Authenticated, c.State())
	assert.Equal(t, "tok-1", c.Token())
	assert.Equal(t, "John Doe", c.User().Name)

	require.NoError(t, c.Logout())
	_, ok, err := NewFileStore(path).Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenWithoutUserStaysAnonymous(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Set(KeyStubToken, "stub-jwt-token-abc"))
	c, err := New(Options{Store: s, Demo: true})
	require.NoError(t, err)
	assert.Equal(t, Anonymous, c.State())
	assert.Equal(t, "authenticated", Authenticated.String())
}

func TestQuerySendsBearerAndOperationName(t *testing.T) {
	type seen struct {
		auth string
		op   string
	}
	got := make(chan seen, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OperationName string `json:"operationName"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		got <- seen{auth: r.Header.Get("Authorization"), op: body.OperationName}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"nope","extensions":{"code":"FORBIDDEN"}}]}`))
	}))
	t.Cleanup(srv.Close)

	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyToken, "tok-9"))
	require.NoError(t, store.Set(KeyUser, `{"id":"9"}`))
	c, err := New(Options{BaseURL: srv.URL + "/", Store: store})
	require.NoError(t, err)

	_, err = c.Posts(context.Background(), 1, 5)
	assert.Equal(t, "FORBIDDEN", CodeOf(err))
	assert.EqualError(t, err, "FORBIDDEN: nope")
	assert.Equal(t, seen{auth: "Bearer tok-9", op: "Posts"}, <-got)

	_, err = c.Login(context.Background(), "a@b.c", "pw")
	assert.Equal(t, "FORBIDDEN", CodeOf(err))
	assert.Equal(t, seen{op: "Login"}, <-got)
}

func TestTransportErrorIsWrapped(t *testing.T) {
	c, err := New(Options{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	_, err = c.Me(context.Background())
	require.Error(t, err)
	assert.Empty(t, CodeOf(err))
	assert.Contains(t, err.Error(), "blogclient:")
}

func TestOperationName(t *testing.T) {
	assert.Equal(t, "Login", operationName("mutation Login($input: LoginInput!) { x }"))
	assert.Equal(t, "Posts", operationName("query Posts { x }"))
	assert.Equal(t, "", operationName("{ me { id } }"))
	assert.Equal(t, "", operationName("query { me { id } }"))
}
