package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-blog/internal/core/apperr"
	"go-gin-blog/internal/service"
	"go-gin-blog/pkg/pagination"
)

// PostModule serves the post endpoints under /api/v1.
type PostModule struct {
	posts *service.PostService
	log   *zap.Logger
}

func NewPostModule(posts *service.PostService, l *zap.Logger) *PostModule {
	return &PostModule{posts: posts, log: l}
}

type listPostsQuery struct {
	PageQuery
	Published string `form:"published"`
	AuthorID  string `form:"authorId"`
	Tag       string `form:"tag"`
}

// PageQuery is the raw page/limit pair of every paged REST endpoint. Values that are not
// numbers count as absent, the same as pagination.Limits.Parse.
type PageQuery struct {
	Page  string `form:"page"`
	Limit string `form:"limit"`
}

func (q PageQuery) Ints() (page, limit *int) {
	return pagination.ParseInt(q.Page), pagination.ParseInt(q.Limit)
}

// publishBody flips the current state when Published is omitted.
type publishBody struct {
	Published *bool `json:"published"`
}

func (m *PostModule) MountAPI(api *gin.RouterGroup) {
	ez := New(api, m.log)

	RegisterAction(ez, Action[listPostsQuery, pagination.Page[service.PostDetail]]{
		Method: http.MethodGet,
		Path:   "/posts",
		Binder: BindQuery,
		Handler: func(c *gin.Context, in *listPostsQuery) (pagination.Page[service.PostDetail], error) {
			p := service.ListPostsParams{}
			p.Page, p.Limit = in.Ints()
			p.Filter.AuthorID = strings.TrimSpace(in.AuthorID)
			p.Filter.Tag = strings.TrimSpace(in.Tag)
			if s := strings.TrimSpace(in.Published); s != "" {
				b, err := strconv.ParseBool(s)
				if err != nil {
					return pagination.Page[service.PostDetail]{}, apperr.Invalid("published", "published must be true or false")
				}
				p.Filter.Published = &b
			}
			return m.posts.List(c.Request.Context(), callerOf(c), p)
		},
	})

	RegisterAction(ez, Action[struct{}, *service.PostDetail]{
		Method: http.MethodGet,
		Path:   "/posts/:id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.PostDetail, error) {
			return m.posts.Get(c.Request.Context(), callerOf(c), c.Param("id"))
		},
	})

	RegisterAction(ez, Action[struct{}, *service.PostDetail]{
		Method: http.MethodGet,
		Path:   "/posts/slug/:slug",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.PostDetail, error) {
			return m.posts.GetBySlug(c.Request.Context(), callerOf(c), c.Param("slug"))
		},
	})

	RegisterAction(ez, Action[service.CreatePostInput, *service.PostDetail]{
		Method: http.MethodPost,
		Path:   "/posts",
		Binder: BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.CreatePostInput) (*service.PostDetail, error) {
			return m.posts.Create(c.Request.Context(), callerOf(c), *in)
		},
	})

	RegisterAction(ez, Action[service.UpdatePostInput, *service.PostDetail]{
		Method: http.MethodPut,
		Path:   "/posts/:id",
		Binder: BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.UpdatePostInput) (*service.PostDetail, error) {
			return m.posts.Update(c.Request.Context(), callerOf(c), c.Param("id"), *in)
		},
	})

	RegisterAction(ez, Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/posts/:id",
		Binder: BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := m.posts.Delete(c.Request.Context(), callerOf(c), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	RegisterAction(ez, Action[publishBody, *service.PostDetail]{
		Method: http.MethodPost,
		Path:   "/posts/:id/publish",
		Binder: BindJSONOptional,
		Auth:   true,
		Handler: func(c *gin.Context, in *publishBody) (*service.PostDetail, error) {
			ctx, caller, id := c.Request.Context(), callerOf(c), c.Param("id")
			if in.Published == nil {
				cur, err := m.posts.Get(ctx, caller, id)
				if err != nil {
					return nil, err
				}
				flip := !cur.Published
				in.Published = &flip
			}
			return m.posts.TogglePublish(ctx, caller, id, *in.Published)
		},
	})

	RegisterAction(ez, Action[PageQuery, pagination.Page[service.PostDetail]]{
		Method: http.MethodGet,
		Path:   "/users/:id/posts",
		Binder: BindQuery,
		Handler: func(c *gin.Context, in *PageQuery) (pagination.Page[service.PostDetail], error) {
			page, limit := in.Ints()
			return m.posts.ListByAuthor(c.Request.Context(), callerOf(c), c.Param("id"), page, limit)
		},
	})
}
