package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-blog/internal/domain"
	"go-gin-blog/internal/service"
	"go-gin-blog/internal/transport/http/router"
	"go-gin-blog/pkg/pagination"
)

// AdminHandler is the user management surface of the admin binary. The group it is
// mounted on already requires the admin role; the service checks it again.
type AdminHandler struct {
	users *service.UserService
	log   *zap.Logger
}

func NewAdminHandler(users *service.UserService, l *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, log: l}
}

type listUsersQuery struct {
	router.PageQuery
	Q string `form:"q"`
}

type roleBody struct {
	Role string `json:"role" binding:"required"`
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	ez := router.New(admin, h.log)

	router.RegisterAction(ez, router.Action[listUsersQuery, pagination.Page[domain.User]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: router.BindQuery,
		Roles:  []domain.Role{domain.RoleAdmin},
		Handler: func(c *gin.Context, in *listUsersQuery) (pagination.Page[domain.User], error) {
			page, limit := in.Ints()
			return h.users.List(c.Request.Context(), caller(c), page, limit, in.Q)
		},
	})

	// ban deletes the account; its posts stay.
	router.RegisterAction(ez, router.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: router.BindNone,
		Roles:  []domain.Role{domain.RoleAdmin},
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.users.Delete(c.Request.Context(), caller(c), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	router.RegisterAction(ez, router.Action[roleBody, *domain.User]{
		Method: http.MethodPost,
		Path:   "/users/:id/role",
		Binder: router.BindJSON,
		Roles:  []domain.Role{domain.RoleAdmin},
		Handler: func(c *gin.Context, in *roleBody) (*domain.User, error) {
			return h.users.SetRole(c.Request.Context(), caller(c), c.Param("id"), in.Role)
		},
	})
}

func caller(c *gin.Context) *domain.Caller { return domain.CallerFrom(c.Request.Context()) }
