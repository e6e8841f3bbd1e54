package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-blog/internal/core/auth"
	"go-gin-blog/internal/core/config"
	"go-gin-blog/internal/core/server"
	"go-gin-blog/internal/service"
	"go-gin-blog/internal/transport/graphql"
	mdw "go-gin-blog/internal/transport/http/middleware"
)

// Deps is everything an engine needs; the mains assemble it.
type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	Identity auth.Identifier
	Services service.Set
	Modules  *Registry
}

// APIModules registers the REST surface for s.
func APIModules(s service.Set, l *zap.Logger) *Registry {
	return NewRegistry(
		NewAccountModule(s.Auth, s.Users, l),
		NewPostModule(s.Posts, l),
		NewSearchModule(s.Search, l),
	)
}

// baseEngine applies the shared middleware chain.
func baseEngine(d Deps, name string, requestLog bool) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	c := d.Config
	mode := ""
	if c.App.IsProduction() {
		mode = gin.ReleaseMode
	}
	r := server.NewRouter(d.Log, server.Options{
		Name:        name,
		Mode:        mode,
		CORSOrigins: c.CORS.Origins,
		RequestLog:  requestLog,
	})

	lim := c.Limits
	r.Use(mdw.RequestID())
	if lim.RPS > 0 {
		r.Use(mdw.RateLimit(rate.Limit(lim.RPS), max(lim.Burst, 1)))
	}
	if lim.PerIPRPS > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), max(lim.PerIPBurst, 1)))
	}
	if lim.MaxConcurrent > 0 {
		r.Use(mdw.ConcurrencyLimit(lim.MaxConcurrent))
	}
	if lim.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(lim.MaxBodyBytes))
	}
	if lim.RequestTimeoutSec > 0 {
		r.Use(mdw.Timeout(time.Duration(lim.RequestTimeoutSec) * time.Second))
	}
	r.Use(mdw.SimpleRecovery(d.Log), mdw.Metrics())
	if !requestLog {
		r.Use(mdw.AccessLog(d.Log))
	}
	r.Use(mdw.Identify(d.Identity, d.Log))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "store": c.DB.Driver, "demo": c.Demo.Enabled})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// NewAPIEngine serves GraphQL on /graphql and the REST modules on /api/v1.
func NewAPIEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := baseEngine(d, "api", false)

	gql := graphql.New(d.Services, d.Log).Handler()
	r.POST("/graphql", gql)
	r.GET("/graphql", gql)

	api := r.Group("/api/v1")
	mods := d.Modules
	if mods == nil {
		mods = APIModules(d.Services, d.Log)
	}
	mods.MountAllAPI(api)
	return r
}
