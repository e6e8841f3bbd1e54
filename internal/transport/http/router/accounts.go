package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-blog/internal/domain"
	"go-gin-blog/internal/service"
)

// AccountModule serves registration, login and the account endpoints.
type AccountModule struct {
	auth  service.Authenticator
	users *service.UserService
	log   *zap.Logger
}

func NewAccountModule(auth service.Authenticator, users *service.UserService, l *zap.Logger) *AccountModule {
	return &AccountModule{auth: auth, users: users, log: l}
}

// Priority puts /auth first in route listings.
func (m *AccountModule) Priority() int { return 10 }

func (m *AccountModule) MountAPI(api *gin.RouterGroup) {
	ez := New(api, m.log)

	RegisterAction(ez, Action[service.RegisterInput, *service.AuthPayload]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.RegisterInput) (*service.AuthPayload, error) {
			return m.auth.Register(c.Request.Context(), *in)
		},
	})

	RegisterAction(ez, Action[service.LoginInput, *service.AuthPayload]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *service.LoginInput) (*service.AuthPayload, error) {
			return m.auth.Login(c.Request.Context(), *in)
		},
	})

	RegisterAction(ez, Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return m.users.Me(c.Request.Context(), callerOf(c))
		},
	})

	RegisterAction(ez, Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return m.users.Get(c.Request.Context(), callerOf(c), c.Param("id"))
		},
	})

	RegisterAction(ez, Action[service.UpdateUserInput, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.UpdateUserInput) (*domain.User, error) {
			return m.users.Update(c.Request.Context(), callerOf(c), c.Param("id"), *in)
		},
	})
}
