// Package service applies authorization, visibility and validation on top of the
// repositories. GraphQL resolvers and REST actions both call into it.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-gin-blog/internal/core/apperr"
	"go-gin-blog/internal/domain"
	"go-gin-blog/pkg/pagination"
)

// PostDetail is a post with its author resolved. Author is nil when the account is gone.
type PostDetail struct {
	domain.Post
	Author *domain.User `json:"author"`
}

type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// authorSet resolves each author once per call.
type authorSet struct {
	users domain.UserRepository
	seen  map[string]*domain.User
}

func newAuthorSet(users domain.UserRepository) *authorSet {
	return &authorSet{users: users, seen: map[string]*domain.User{}}
}

func (a *authorSet) get(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := a.seen[id]; ok {
		return u, nil
	}
	u, err := a.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load author", err)
	}
	a.seen[id] = u
	return u, nil
}

func (a *authorSet) detail(ctx context.Context, p domain.Post) (PostDetail, error) {
	u, err := a.get(ctx, p.AuthorID)
	if err != nil {
		return PostDetail{}, err
	}
	return PostDetail{Post: p, Author: u}, nil
}

// Set bundles the services both API surfaces are built on.
type Set struct {
	Posts  *PostService
	Users  *UserService
	Search *SearchService
	Auth   Authenticator
}

// NewSet builds the services over one pair of repositories. authn is either an
// *AuthService or the demo stub.
func NewSet(users domain.UserRepository, posts domain.PostRepository, authn Authenticator, limits pagination.Limits, l *zap.Logger) Set {
	ps := NewPostService(posts, users, limits, l)
	us := NewUserService(users, limits, l)
	return Set{Posts: ps, Users: us, Search: NewSearchService(ps, us), Auth: authn}
}
