package post

import (
	"time"

	"go-gin-blog/internal/domain"
)

type PostModel struct {
	ID        string   `gorm:"primaryKey;size:36"`
	Title     string   `gorm:"size:200;not null;index"`
	Slug      string   `gorm:"size:220;index"`
	Excerpt   string   `gorm:"size:500"`
	Content   string   `gorm:"type:text;not null"`
	AuthorID  string   `gorm:"size:36;not null;index"`
	Published bool     `gorm:"not null;default:false;index"`
	Tags      []string `gorm:"serializer:json;type:text"`

	// timestamps are owned by the service layer
	CreatedAt time.Time `gorm:"index;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (PostModel) TableName() string { return "posts" }

func FromDomain(p *domain.Post) *PostModel {
	return &PostModel{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Excerpt:   p.Excerpt,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		Published: p.Published,
		Tags:      p.Tags,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *PostModel) ToDomain() domain.Post {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Post{
		ID:        m.ID,
		Title:     m.Title,
		Slug:      m.Slug,
		Excerpt:   m.Excerpt,
		Content:   m.Content,
		AuthorID:  m.AuthorID,
		Published: m.Published,
		Tags:      tags,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
