package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-blog/internal/access"
	"go-gin-blog/internal/core/apperr"
	"go-gin-blog/internal/domain"
	mdw "go-gin-blog/internal/transport/http/middleware"
	resp "go-gin-blog/internal/transport/http/response"
)

type EZ struct {
	g *gin.RouterGroup
	l *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, l: l}
}

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // handler reads c.Param itself

	// BindJSONOptional leaves the input zero when the body is empty.
	BindJSONOptional Binder = "json?"
)

// Action is one non-CRUD endpoint: I is the bound input, O the envelope data.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    bool          // require an identified caller
	Roles   []domain.Role // optional; implies Auth
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction mounts a on the group. Errors from the handler are mapped through
// apperr; internal causes are logged and replaced by a generic message.
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth || len(a.Roles) > 0 {
			if _, err := access.Authorize(domain.CallerFrom(c.Request.Context()), a.Roles...); err != nil {
				c.JSON(http.StatusOK, resp.FromError(err))
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindJSONOptional:
			if c.Request.ContentLength != 0 {
				bindErr = c.ShouldBindJSON(&in)
			}
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, "invalid request: "+bindErr.Error()))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			if ae := apperr.As(err); ae.Kind == apperr.KindInternal {
				e.l.Error("action failed",
					zap.String("rid", c.GetString(mdw.KeyRequestID)),
					zap.String("method", a.Method),
					zap.String("path", a.Path),
					zap.Error(err),
				)
			}
			c.JSON(http.StatusOK, resp.FromError(err))
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

func callerOf(c *gin.Context) *domain.Caller { return domain.CallerFrom(c.Request.Context()) }
