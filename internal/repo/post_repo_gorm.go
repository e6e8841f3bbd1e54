package repo

import (
	"context"
	"errors"
	"slices"

	"gorm.io/gorm"

	"go-gin-blog/internal/domain"
	"go-gin-blog/internal/feature/post"
	"go-gin-blog/pkg/utils"
)

type PostRepo struct{ db *gorm.DB }

// newestFirstOrder falls back to id when created_at ties.
const newestFirstOrder = "created_at desc, id asc"

func NewPostRepo(db *gorm.DB) *PostRepo { return &PostRepo{db: db} }

var _ domain.PostRepository = (*PostRepo)(nil)

func (r *PostRepo) Create(ctx context.Context, p *domain.Post) error {
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	return r.db.WithContext(ctx).Create(post.FromDomain(p)).Error
}

func (r *PostRepo) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostRepo) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *PostRepo) first(ctx context.Context, query string, arg any) (*domain.Post, error) {
	var m post.PostModel
	err := r.db.WithContext(ctx).Order(newestFirstOrder).First(&m, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p := m.ToDomain()
	return &p, nil
}

func (r *PostRepo) List(ctx context.Context, f domain.PostFilter) ([]domain.Post, error) {
	tx := r.db.WithContext(ctx).Model(&post.PostModel{})
	if f.AuthorID != "" {
		tx = tx.Where("author_id = ?", f.AuthorID)
	}
	if f.Published != nil {
		tx = tx.Where("published = ?", *f.Published)
	}
	var rows []post.PostModel
	if err := tx.Order(newestFirstOrder).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Post, 0, len(rows))
	for i := range rows {
		// tags live in a JSON column, so the tag filter runs here rather than in SQL
		if f.Tag != "" && !slices.Contains(rows[i].Tags, f.Tag) {
			continue
		}
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

func (r *PostRepo) TitleTaken(ctx context.Context, title, excludeID string) (bool, error) {
	var n int64
	tx := r.db.WithContext(ctx).Model(&post.PostModel{}).Where("title = ?", title)
	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}
	if err := tx.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostRepo) Update(ctx context.Context, p *domain.Post) error {
	return r.db.WithContext(ctx).Save(post.FromDomain(p)).Error
}

func (r *PostRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&post.PostModel{}).Error
}
