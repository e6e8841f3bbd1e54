package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-gin-blog/internal/core/config"
	"go-gin-blog/internal/feature/demo"
	"go-gin-blog/internal/repo"
	"go-gin-blog/internal/service"
	"go-gin-blog/internal/transport/http/router"
	resp "go-gin-blog/internal/transport/http/response"
	"go-gin-blog/pkg/pagination"
)

type envelope struct {
	Code int            `json:"code"`
	Msg  string         `json:"msg"`
	Data map[string]any `json:"data"`
}

func setup(t *testing.T) (*gin.Engine, *demo.StubAuth) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	users, posts := repo.NewMemUserRepo(), repo.NewMemPostRepo()
	require.NoError(t, demo.Seed(context.Background(), users, posts, "demo1234", nil))
	stub := demo.NewStubAuth(users)
	set := service.NewSet(users, posts, stub, pagination.Limits{Default: 2, Max: 50}, nil)

	cfg := &config.Config{}
	cfg.DB.Driver = "memory"
	r := router.NewAdminEngine(router.Deps{
		Config:   cfg,
		Log:      zap.NewNop(),
		Identity: stub,
		Services: set,
		Modules:  router.NewRegistry(NewAdminHandler(set.Users, zap.NewNop())),
	})
	return r, stub
}

func token(t *testing.T, stub *demo.StubAuth, email string) string {
	t.Helper()
	p, err := stub.Login(context.Background(), service.LoginInput{Email: email})
	require.NoError(t, err)
	return p.Token
}

func call(t *testing.T, r *gin.Engine, method, path, tok, body string) envelope {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var out envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAdminRequiresAdminRole(t *testing.T) {
	r, stub := setup(t)
	assert.Equal(t, resp.CodeUnauthorized, call(t, r, http.MethodGet, "/admin/v1/users", "", "").Code)
	john := token(t, stub, "john@example.com")
	assert.Equal(t, resp.CodeForbidden, call(t, r, http.MethodGet, "/admin/v1/users", john, "").Code)
}

func TestAdminListUsers(t *testing.T) {
	r, stub := setup(t)
	mike := token(t, stub, "mike@example.com")

	out := call(t, r, http.MethodGet, "/admin/v1/users?page=1", mike, "")
	require.Equal(t, resp.CodeOK, out.Code, out.Msg)
	pg := out.Data["pagination"].(map[string]any)
	assert.Equal(t, 5.0, pg["total"])
	assert.Equal(t, 3.0, pg["totalPages"])
	assert.Len(t, out.Data["items"], 2)

	// paging junk means "absent", as on the public API
	out = call(t, r, http.MethodGet, "/admin/v1/users?page=abc&limit=xyz", mike, "")
	require.Equal(t, resp.CodeOK, out.Code, out.Msg)
	assert.Equal(t, 1.0, out.Data["pagination"].(map[string]any)["page"])
	assert.Len(t, out.Data["items"], 2)

	out = call(t, r, http.MethodGet, "/admin/v1/users?page=1000000000000000000", mike, "")
	require.Equal(t, resp.CodeOK, out.Code, out.Msg)
	assert.Empty(t, out.Data["items"])

	out = call(t, r, http.MethodGet, "/admin/v1/users?q=jane", mike, "")
	items := out.Data["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "jane@example.com", items[0].(map[string]any)["email"])
}

func TestAdminRoleAndBan(t *testing.T) {
	r, stub := setup(t)
	mike := token(t, stub, "mike@example.com")
	sarah := token(t, stub, "sarah@example.com")

	out := call(t, r, http.MethodPost, "/admin/v1/users/4/role", mike, `{"role":"AUTHOR"}`)
	require.Equal(t, resp.CodeOK, out.Code, out.Msg)
	assert.Equal(t, "author", out.Data["role"])

	out = call(t, r, http.MethodPost, "/admin/v1/users/4/role", mike, `{"role":"owner"}`)
	assert.Equal(t, resp.CodeBadRequest, out.Code)

	out = call(t, r, http.MethodPost, "/admin/v1/users/4/role", mike, `{}`)
	assert.Equal(t, resp.CodeBadRequest, out.Code)

	out = call(t, r, http.MethodPost, "/admin/v1/users/4/ban", mike, "")
	require.Equal(t, resp.CodeOK, out.Code, out.Msg)
	assert.Equal(t, "4", out.Data["id"])

	// the banned account's token stops resolving
	assert.Equal(t, resp.CodeUnauthorized, call(t, r, http.MethodGet, "/admin/v1/users", sarah, "").Code)
	assert.Equal(t, resp.CodeNotFound, call(t, r, http.MethodPost, "/admin/v1/users/4/ban", mike, "").Code)
}
