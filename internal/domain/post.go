package domain

import (
	"context"
	"time"
)

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"authorId"`
	Published bool      `json:"published"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostFilter narrows the candidate sequence at the storage level. Zero values mean "any".
type PostFilter struct {
	AuthorID  string
	Published *bool
	Tag       string
}

// PostRepository lookups return (nil, nil) when nothing matches.
type PostRepository interface {
	Create(ctx context.Context, p *Post) error
	FindByID(ctx context.Context, id string) (*Post, error)
	FindBySlug(ctx context.Context, slug string) (*Post, error)
	// List returns the full candidate sequence ordered by creation time, newest first.
	List(ctx context.Context, f PostFilter) ([]Post, error)
	// TitleTaken is an exact, case-sensitive match that ignores the post with excludeID.
	TitleTaken(ctx context.Context, title, excludeID string) (bool, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
}
