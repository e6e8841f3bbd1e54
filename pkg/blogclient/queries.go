package blogclient

import (
	"context"
	"time"
)

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Published bool      `json:"published"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	Author    *User     `json:"author"`
}

type PostConnection struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		Me User `json:"me"`
	}
	if err := c.Query(ctx, `{ me { `+userFields+` } }`, nil, &out); err != nil {
		return nil, err
	}
	return &out.Me, nil
}

// Posts lists the posts visible to the session; zero page or limit use the server defaults.
func (c *Client) Posts(ctx context.Context, page, limit int) (*PostConnection, error) {
	vars := map[string]any{}
	if page > 0 {
		vars["page"] = page
	}
	if limit > 0 {
		vars["limit"] = limit
	}
	var out struct {
		Posts PostConnection `json:"posts"`
	}
	err := c.Query(ctx, `query Posts($page: Int, $limit: Int) {
  posts(page: $page, limit: $limit) {
    posts { id title slug excerpt published tags createdAt author { id name email role } }
    pagination { page limit total totalPages hasNext hasPrev }
  }
}`, vars, &out)
	if err != nil {
		return nil, err
	}
	return &out.Posts, nil
}
