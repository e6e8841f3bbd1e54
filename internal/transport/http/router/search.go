package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-blog/internal/service"
)

type SearchModule struct {
	search *service.SearchService
	log    *zap.Logger
}

func NewSearchModule(search *service.SearchService, l *zap.Logger) *SearchModule {
	return &SearchModule{search: search, log: l}
}

type searchQuery struct {
	Q string `form:"q"`
}

func (m *SearchModule) MountAPI(api *gin.RouterGroup) {
	RegisterAction(New(api, m.log), Action[searchQuery, service.SearchResult]{
		Method: http.MethodGet,
		Path:   "/search",
		Binder: BindQuery,
		Handler: func(c *gin.Context, in *searchQuery) (service.SearchResult, error) {
			return m.search.Search(c.Request.Context(), callerOf(c), in.Q)
		},
	})
}
