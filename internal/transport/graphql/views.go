package graphql

import (
	"strings"
	"time"

	"go-gin-blog/internal/domain"
	"go-gin-blog/internal/service"
	"go-gin-blog/pkg/pagination"
)

// The view structs mirror the schema types field for field.

type userView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	Bio       *string `json:"bio"`
	Avatar    *string `json:"avatar"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

type postView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"authorId"`
	Author    *userView `json:"author"`
	Published bool      `json:"published"`
	Tags      []string  `json:"tags"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

type postConnection struct {
	Posts      []postView      `json:"posts"`
	Pagination pagination.Meta `json:"pagination"`
}

type userConnection struct {
	Users      []userView      `json:"users"`
	Pagination pagination.Meta `json:"pagination"`
}

type searchView struct {
	Posts []postView `json:"posts"`
	Users []userView `json:"users"`
}

type authView struct {
	Token string    `json:"token"`
	User  *userView `json:"user"`
}

func timestamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toUser(u *domain.User) *userView {
	if u == nil {
		return nil
	}
	return &userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      strings.ToUpper(string(u.Role)),
		Bio:       optional(u.Bio),
		Avatar:    optional(u.Avatar),
		CreatedAt: timestamp(u.CreatedAt),
		UpdatedAt: timestamp(u.UpdatedAt),
	}
}

func toPost(p domain.Post, author *domain.User) postView {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postView{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Excerpt:   p.Excerpt,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		Author:    toUser(author),
		Published: p.Published,
		Tags:      tags,
		CreatedAt: timestamp(p.CreatedAt),
		UpdatedAt: timestamp(p.UpdatedAt),
	}
}

func toPostDetail(d *service.PostDetail) postView { return toPost(d.Post, d.Author) }

func toPostConnection(pg pagination.Page[service.PostDetail]) postConnection {
	return postConnection{
		Posts:      pagination.Map(pg, func(d service.PostDetail) postView { return toPostDetail(&d) }).Items,
		Pagination: pg.Pagination,
	}
}

func toUserConnection(pg pagination.Page[domain.User]) userConnection {
	return userConnection{
		Users:      pagination.Map(pg, func(u domain.User) userView { return *toUser(&u) }).Items,
		Pagination: pg.Pagination,
	}
}
