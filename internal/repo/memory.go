package repo

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"go-gin-blog/internal/domain"
	"go-gin-blog/pkg/utils"
)

// MemUserRepo keeps users in process. Used by demo deployments and tests.
type MemUserRepo struct {
	mu    sync.RWMutex
	users []domain.User
}

func NewMemUserRepo() *MemUserRepo { return &MemUserRepo{} }

var _ domain.UserRepository = (*MemUserRepo)(nil)

func (r *MemUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	r.users = append(r.users, *u)
	return nil
}

func (r *MemUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id }), nil
}

func (r *MemUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email }), nil
}

func (r *MemUserRepo) find(match func(*domain.User) bool) *domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if match(&r.users[i]) {
			u := r.users[i]
			return &u
		}
	}
	return nil
}

func (r *MemUserRepo) List(context.Context) ([]domain.User, error) {
	r.mu.RLock()
	out := slices.Clone(r.users)
	r.mu.RUnlock()
	if out == nil {
		out = []domain.User{}
	}
	slices.SortFunc(out, func(a, b domain.User) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return out, nil
}

func (r *MemUserRepo) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	u := r.find(func(u *domain.User) bool { return u.Email == email && u.ID != excludeID })
	return u != nil, nil
}

func (r *MemUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == u.ID {
			r.users[i] = *u
			return nil
		}
	}
	return nil
}

func (r *MemUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = slices.DeleteFunc(r.users, func(u domain.User) bool { return u.ID == id })
	return nil
}

type MemPostRepo struct {
	mu    sync.RWMutex
	posts []domain.Post
}

func NewMemPostRepo() *MemPostRepo { return &MemPostRepo{} }

var _ domain.PostRepository = (*MemPostRepo)(nil)

func clonePost(p domain.Post) domain.Post {
	p.Tags = slices.Clone(p.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}

func (r *MemPostRepo) Create(_ context.Context, p *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	r.posts = append(r.posts, clonePost(*p))
	return nil
}

func (r *MemPostRepo) FindByID(_ context.Context, id string) (*domain.Post, error) {
	return r.find(func(p *domain.Post) bool { return p.ID == id }), nil
}

func (r *MemPostRepo) FindBySlug(_ context.Context, slug string) (*domain.Post, error) {
	return r.find(func(p *domain.Post) bool { return p.Slug == slug }), nil
}

func (r *MemPostRepo) find(match func(*domain.Post) bool) *domain.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.posts {
		if match(&r.posts[i]) {
			p := clonePost(r.posts[i])
			return &p
		}
	}
	return nil
}

func (r *MemPostRepo) List(_ context.Context, f domain.PostFilter) ([]domain.Post, error) {
	r.mu.RLock()
	out := make([]domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if f.AuthorID != "" && p.AuthorID != f.AuthorID {
			continue
		}
		if f.Published != nil && p.Published != *f.Published {
			continue
		}
		if f.Tag != "" && !slices.Contains(p.Tags, f.Tag) {
			continue
		}
		out = append(out, clonePost(p))
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b domain.Post) int { return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID) })
	return out, nil
}

func (r *MemPostRepo) TitleTaken(_ context.Context, title, excludeID string) (bool, error) {
	p := r.find(func(p *domain.Post) bool { return p.Title == title && p.ID != excludeID })
	return p != nil, nil
}

func (r *MemPostRepo) Update(_ context.Context, p *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.posts {
		if r.posts[i].ID == p.ID {
			r.posts[i] = clonePost(*p)
			return nil
		}
	}
	return nil
}

func (r *MemPostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = slices.DeleteFunc(r.posts, func(p domain.Post) bool { return p.ID == id })
	return nil
}

// newestFirst orders by creation time descending, then id ascending, like the SQL and
// Mongo stores.
func newestFirst(a, b time.Time, aID, bID string) int {
	if c := cmp.Compare(b.UnixNano(), a.UnixNano()); c != 0 {
		return c
	}
	return cmp.Compare(aID, bID)
}
