package service

import (
	"context"

	"go-gin-blog/internal/domain"
	"go-gin-blog/internal/search"
)

type SearchResult struct {
	Posts []PostDetail  `json:"posts"`
	Users []domain.User `json:"users"`
}

type SearchService struct {
	posts *PostService
	users *UserService
}

func NewSearchService(posts *PostService, users *UserService) *SearchService {
	return &SearchService{posts: posts, users: users}
}

// Search matches only posts the caller could already see. Matched users carry their email
// only for admins and for the caller's own account.
func (s *SearchService) Search(ctx context.Context, caller *domain.Caller, query string) (SearchResult, error) {
	empty := SearchResult{Posts: []PostDetail{}, Users: []domain.User{}}
	if search.Blank(query) {
		return empty, nil
	}
	posts, err := s.posts.VisiblePosts(ctx, caller)
	if err != nil {
		return empty, err
	}
	users, err := s.users.All(ctx)
	if err != nil {
		return empty, err
	}
	res := search.Run(query, posts, users)
	// emails still match, but only admins and the account owner see them
	if !caller.IsAdmin() {
		for i := range res.Users {
			if caller == nil || res.Users[i].ID != caller.ID {
				res.Users[i].Email = ""
			}
		}
	}

	authors := newAuthorSet(s.posts.users)
	out := SearchResult{Posts: make([]PostDetail, 0, len(res.Posts)), Users: res.Users}
	for _, p := range res.Posts {
		d, err := authors.detail(ctx, p)
		if err != nil {
			return empty, err
		}
		out.Posts = append(out.Posts, d)
	}
	return out, nil
}
