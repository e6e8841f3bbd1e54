package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"go-gin-blog/internal/access"
	"go-gin-blog/internal/core/apperr"
	"go-gin-blog/internal/domain"
	"go-gin-blog/pkg/pagination"
	"go-gin-blog/pkg/utils"
)

const excerptLen = 160

type CreatePostInput struct {
	Title     string   `json:"title" validate:"min=3,max=200"`
	Content   string   `json:"content" validate:"min=10"`
	Excerpt   string   `json:"excerpt" validate:"max=500"`
	Published bool     `json:"published"`
	Tags      []string `json:"tags" validate:"dive,min=1"`
}

// UpdatePostInput leaves nil fields untouched. A non-nil empty Tags clears them.
type UpdatePostInput struct {
	Title     *string  `json:"title" validate:"omitnil,min=3,max=200"`
	Content   *string  `json:"content" validate:"omitnil,min=10"`
	Excerpt   *string  `json:"excerpt" validate:"omitnil,max=500"`
	Published *bool    `json:"published"`
	Tags      []string `json:"tags" validate:"dive,min=1"`
}

func (in UpdatePostInput) empty() bool {
	return in.Title == nil && in.Content == nil && in.Excerpt == nil && in.Published == nil && in.Tags == nil
}

// ListPostsParams carries raw paging input; nil page or limit take the defaults.
type ListPostsParams struct {
	Page   *int
	Limit  *int
	Filter domain.PostFilter
}

type PostService struct {
	posts  domain.PostRepository
	users  domain.UserRepository
	limits pagination.Limits
	log    *zap.Logger
	now    Clock
}

func NewPostService(posts domain.PostRepository, users domain.UserRepository, limits pagination.Limits, l *zap.Logger) *PostService {
	if l == nil {
		l = zap.NewNop()
	}
	return &PostService{posts: posts, users: users, limits: limits, log: l, now: utcNow}
}

// WithClock replaces the timestamp source. Tests only.
func (s *PostService) WithClock(c Clock) *PostService {
	s.now = c
	return s
}

func (s *PostService) List(ctx context.Context, caller *domain.Caller, p ListPostsParams) (pagination.Page[PostDetail], error) {
	candidates, err := s.posts.List(ctx, p.Filter)
	if err != nil {
		return pagination.Page[PostDetail]{}, apperr.Internal("list posts", err)
	}
	visible := access.FilterVisiblePosts(candidates, caller)
	page := pagination.Paginate(visible, s.limits.Params(p.Page, p.Limit))

	authors := newAuthorSet(s.users)
	items := make([]PostDetail, 0, len(page.Items))
	for _, post := range page.Items {
		d, err := authors.detail(ctx, post)
		if err != nil {
			return pagination.Page[PostDetail]{}, err
		}
		items = append(items, d)
	}
	return pagination.Page[PostDetail]{Items: items, Pagination: page.Pagination}, nil
}

func (s *PostService) ListByAuthor(ctx context.Context, caller *domain.Caller, authorID string, page, limit *int) (pagination.Page[PostDetail], error) {
	return s.List(ctx, caller, ListPostsParams{Page: page, Limit: limit, Filter: domain.PostFilter{AuthorID: authorID}})
}

func (s *PostService) Get(ctx context.Context, caller *domain.Caller, id string) (*PostDetail, error) {
	p, err := s.visible(ctx, caller, func() (*domain.Post, error) { return s.posts.FindByID(ctx, id) })
	if err != nil {
		return nil, err
	}
	return s.withAuthor(ctx, *p)
}

func (s *PostService) GetBySlug(ctx context.Context, caller *domain.Caller, slug string) (*PostDetail, error) {
	p, err := s.visible(ctx, caller, func() (*domain.Post, error) { return s.posts.FindBySlug(ctx, slug) })
	if err != nil {
		return nil, err
	}
	return s.withAuthor(ctx, *p)
}

// visible reports hidden drafts exactly like missing posts.
func (s *PostService) visible(ctx context.Context, caller *domain.Caller, load func() (*domain.Post, error)) (*domain.Post, error) {
	p, err := load()
	if err != nil {
		return nil, apperr.Internal("load post", err)
	}
	if !access.CanView(p, caller) {
		return nil, apperr.NotFound("Post")
	}
	return p, nil
}

func (s *PostService) withAuthor(ctx context.Context, p domain.Post) (*PostDetail, error) {
	d, err := newAuthorSet(s.users).detail(ctx, p)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostService) Create(ctx context.Context, caller *domain.Caller, in CreatePostInput) (*PostDetail, error) {
	caller, err := access.Authorize(caller)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Tags = normalizeTags(in.Tags)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.ensureTitleFree(ctx, in.Title, ""); err != nil {
		return nil, err
	}

	now := s.now()
	p := &domain.Post{
		Title:     in.Title,
		Slug:      utils.Slugify(in.Title),
		Excerpt:   deriveExcerpt(in.Excerpt, in.Content),
		Content:   in.Content,
		AuthorID:  caller.ID,
		Published: in.Published,
		Tags:      in.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, apperr.Internal("create post", err)
	}
	s.log.Info("post created", zap.String("id", p.ID), zap.String("author", caller.ID))
	return s.withAuthor(ctx, *p)
}

// loadForMutation authenticates, loads, hides drafts and applies the ownership rule,
// in that order, before any input is looked at.
func (s *PostService) loadForMutation(ctx context.Context, caller *domain.Caller, id string) (*domain.Post, error) {
	if _, err := access.Authorize(caller); err != nil {
		return nil, err
	}
	p, err := s.visible(ctx, caller, func() (*domain.Post, error) { return s.posts.FindByID(ctx, id) })
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeMutation(p, caller); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostService) Update(ctx context.Context, caller *domain.Caller, id string, in UpdatePostInput) (*PostDetail, error) {
	p, err := s.loadForMutation(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if in.Tags != nil {
		in.Tags = normalizeTags(in.Tags)
	}
	err = validateStruct(in)
	if in.empty() {
		err = merge(err, apperr.FieldError{Field: "input", Message: "At least one field must be provided for update"})
	}
	if err != nil {
		return nil, err
	}
	if in.Title != nil && *in.Title != p.Title {
		if err := s.ensureTitleFree(ctx, *in.Title, p.ID); err != nil {
			return nil, err
		}
		p.Title = *in.Title
		p.Slug = utils.Slugify(p.Title)
	}
	if in.Content != nil {
		p.Content = *in.Content
		if in.Excerpt == nil {
			p.Excerpt = deriveExcerpt("", p.Content)
		}
	}
	if in.Excerpt != nil {
		p.Excerpt = deriveExcerpt(*in.Excerpt, p.Content)
	}
	if in.Published != nil {
		p.Published = *in.Published
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
	p.UpdatedAt = s.now()
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, apperr.Internal("update post", err)
	}
	s.log.Info("post updated", zap.String("id", p.ID), zap.String("by", caller.ID))
	return s.withAuthor(ctx, *p)
}

func (s *PostService) Delete(ctx context.Context, caller *domain.Caller, id string) error {
	p, err := s.loadForMutation(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, p.ID); err != nil {
		return apperr.Internal("delete post", err)
	}
	s.log.Info("post deleted", zap.String("id", p.ID), zap.String("by", caller.ID))
	return nil
}

func (s *PostService) TogglePublish(ctx context.Context, caller *domain.Caller, id string, published bool) (*PostDetail, error) {
	p, err := s.loadForMutation(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if p.Published != published {
		p.Published = published
		p.UpdatedAt = s.now()
		if err := s.posts.Update(ctx, p); err != nil {
			return nil, apperr.Internal("publish post", err)
		}
	}
	return s.withAuthor(ctx, *p)
}

// VisiblePosts is the caller's full visible sequence, newest first. Search runs over it.
func (s *PostService) VisiblePosts(ctx context.Context, caller *domain.Caller) ([]domain.Post, error) {
	candidates, err := s.posts.List(ctx, domain.PostFilter{})
	if err != nil {
		return nil, apperr.Internal("list posts", err)
	}
	return access.FilterVisiblePosts(candidates, caller), nil
}

func (s *PostService) ensureTitleFree(ctx context.Context, title, excludeID string) error {
	taken, err := s.posts.TitleTaken(ctx, title, excludeID)
	if err != nil {
		return apperr.Internal("check title", err)
	}
	if taken {
		return apperr.Invalid("title", "title already taken")
	}
	return nil
}

func deriveExcerpt(excerpt, content string) string {
	if e := strings.TrimSpace(excerpt); e != "" {
		return e
	}
	return utils.Excerpt(content, excerptLen)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, strings.TrimSpace(t))
	}
	return out
}
