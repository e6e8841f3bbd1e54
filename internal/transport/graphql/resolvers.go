package graphql

import (
	"context"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"go-gin-blog/internal/core/apperr"
	"go-gin-blog/internal/domain"
	"go-gin-blog/internal/service"
)

type Services = service.Set

// decode re-reads coerced arguments into a typed struct.
func decode(args map[string]any, out any) error {
	b, err := json.Marshal(args)
	if err != nil {
		return apperr.Internal("encode arguments", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return apperr.Invalid("input", "invalid arguments: %v", err)
	}
	return nil
}

type pageArgs struct {
	Page  *int `json:"page"`
	Limit *int `json:"limit"`
}

type idArgs struct {
	ID string `json:"id"`
}

// New wires every schema root field to the services.
func New(s Services, l *zap.Logger) *Executor {
	e := NewExecutor(l)
	caller := domain.CallerFrom

	e.Query("posts", func(ctx context.Context, args map[string]any) (any, error) {
		var a struct {
			pageArgs
			Filter *struct {
				Published *bool  `json:"published"`
				AuthorID  string `json:"authorId"`
				Tag       string `json:"tag"`
			} `json:"filter"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		p := service.ListPostsParams{Page: a.Page, Limit: a.Limit}
		if a.Filter != nil {
			p.Filter = domain.PostFilter{Published: a.Filter.Published, AuthorID: a.Filter.AuthorID, Tag: a.Filter.Tag}
		}
		pg, err := s.Posts.List(ctx, caller(ctx), p)
		if err != nil {
			return nil, err
		}
		return toPostConnection(pg), nil
	})

	e.Query("post", func(ctx context.Context, args map[string]any) (any, error) {
		var a idArgs
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		d, err := s.Posts.Get(ctx, caller(ctx), a.ID)
		if err != nil {
			return nil, err
		}
		return toPostDetail(d), nil
	})

	e.Query("postBySlug", func(ctx context.Context, args map[string]any) (any, error) {
		var a struct {
			Slug string `json:"slug"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		d, err := s.Posts.GetBySlug(ctx, caller(ctx), a.Slug)
		if err != nil {
			return nil, err
		}
		return toPostDetail(d), nil
	})

	e.Query("postsByAuthor", func(ctx context.Context, args map[string]any) (any, error) {
		var a struct {
			pageArgs
			AuthorID string `json:"authorId"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		pg, err := s.Posts.ListByAuthor(ctx, caller(ctx), a.AuthorID, a.Page, a.Limit)
		if err != nil {
			return nil, err
		}
		return toPostConnection(pg), nil
	})

	e.Query("me", func(ctx context.Context, _ map[string]any) (any, error) {
		u, err := s.Users.Me(ctx, caller(ctx))
		if err != nil {
			return nil, err
		}
		return toUser(u), nil
	})

	e.Query("user", func(ctx context.Context, args map[string]any) (any, error) {
		var a idArgs
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		u, err := s.Users.Get(ctx, caller(ctx), a.ID)
		if err != nil {
			return nil, err
		}
		return toUser(u), nil
	})

	e.Query("users", func(ctx context.Context, args map[string]any) (any, error) {
		var a struct {
			pageArgs
			Query string `json:"query"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		pg, err := s.Users.List(ctx, caller(ctx), a.Page, a.Limit, a.Query)
		if err != nil {
			return nil, err
		}
		return toUserConnection(pg), nil
	})

	e.Query("search", func(ctx context.Context, args map[string]any) (any, error) {
		var a struct {
			Query string `json:"query"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		res, err := s.Search.Search(ctx, caller(ctx), a.Query)
		if err != nil {
			return nil, err
		}
		out := searchView{Posts: make([]postView, 0, len(res.Posts)), Users: make([]userView, 0, len(res.Users))}
		for i := range res.Posts {
			out.Posts = append(out.Posts, toPostDetail(&res.Posts[i]))
		}
		for i := range res.Users {
			out.Users = append(out.Users, *toUser(&res.Users[i]))
		}
		return out, nil
	})

	e.Mutation("createPost", func(ctx context.Context, args map[string]any) (any, error) {
		var a struct {
			Input service.CreatePostInput `json:"input"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		d, err := s.Posts.Create(ctx, caller(ctx), a.Input)
		if err != nil {
			return nil, err
		}
		return toPostDetail(d), nil
	})

	e.Mutation("updatePost", func(ctx context.Context, args map[string]any) (any, error) {
		var a struct {
			ID    string                  `json:"id"`
			Input service.UpdatePostInput `json:"input"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		d, err := s.Posts.Update(ctx, caller(ctx), a.ID, a.Input)
		if err != nil {
			return nil, err
		}
		return toPostDetail(d), nil
	})

	e.Mutation("deletePost", func(ctx context.Context, args map[string]any) (any, error) {
		var a idArgs
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		if err := s.Posts.Delete(ctx, caller(ctx), a.ID); err != nil {
			return nil, err
		}
		return true, nil
	})

	e.Mutation("togglePublishPost", func(ctx context.Context, args map[string]any) (any, error) {
		var a struct {
			ID        string `json:"id"`
			Published bool   `json:"published"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		d, err := s.Posts.TogglePublish(ctx, caller(ctx), a.ID, a.Published)
		if err != nil {
			return nil, err
		}
		return toPostDetail(d), nil
	})

	e.Mutation("register", func(ctx context.Context, args map[string]any) (any, error) {
		var a struct {
			Input service.RegisterInput `json:"input"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		out, err := s.Auth.Register(ctx, a.Input)
		if err != nil {
			return nil, err
		}
		return authView{Token: out.Token, User: toUser(out.User)}, nil
	})

	e.Mutation("login", func(ctx context.Context, args map[string]any) (any, error) {
		var a struct {
			Input service.LoginInput `json:"input"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		out, err := s.Auth.Login(ctx, a.Input)
		if err != nil {
			return nil, err
		}
		return authView{Token: out.Token, User: toUser(out.User)}, nil
	})

	e.Mutation("updateUser", func(ctx context.Context, args map[string]any) (any, error) {
		var a struct {
			ID    string                  `json:"id"`
			Input service.UpdateUserInput `json:"input"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		u, err := s.Users.Update(ctx, caller(ctx), a.ID, a.Input)
		if err != nil {
			return nil, err
		}
		return toUser(u), nil
	})

	e.Mutation("deleteUser", func(ctx context.Context, args map[string]any) (any, error) {
		var a idArgs
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		if err := s.Users.Delete(ctx, caller(ctx), a.ID); err != nil {
			return nil, err
		}
		return true, nil
	})

	return e
}
