package router

import (
	"github.com/gin-gonic/gin"

	"go-gin-blog/internal/domain"
	mdw "go-gin-blog/internal/transport/http/middleware"
)

// NewAdminEngine mounts the registered admin modules on /admin/v1 behind the admin role.
func NewAdminEngine(d Deps) *gin.Engine {
	r := baseEngine(d, "admin", true)

	admin := r.Group("/admin/v1")
	admin.Use(mdw.RequireAuth(domain.RoleAdmin))
	if d.Modules != nil {
		d.Modules.MountAllAdmin(admin)
	}
	return r
}
