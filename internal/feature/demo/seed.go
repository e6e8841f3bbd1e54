// Package demo holds the seeded demo content and the stub authenticator used when
// demo.enabled is set.
package demo

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"go-gin-blog/internal/domain"
	"go-gin-blog/pkg/utils"
)

//go:embed seed.json
var seedJSON []byte

type Dataset struct {
	Users []domain.User `json:"users"`
	Posts []domain.Post `json:"posts"`
}

// Data decodes a fresh copy of the demo dataset.
func Data() (Dataset, error) {
	var d Dataset
	if err := json.Unmarshal(seedJSON, &d); err != nil {
		return Dataset{}, fmt.Errorf("decode demo seed: %w", err)
	}
	for i := range d.Users {
		d.Users[i].UpdatedAt = d.Users[i].CreatedAt
	}
	for i := range d.Posts {
		d.Posts[i].UpdatedAt = d.Posts[i].CreatedAt
	}
	return d, nil
}

// Seed inserts the demo users and posts that are not present yet. Every seeded account
// gets password so the real login also works against seeded stores.
func Seed(ctx context.Context, users domain.UserRepository, posts domain.PostRepository, password string, l *zap.Logger) error {
	if l == nil {
		l = zap.NewNop()
	}
	d, err := Data()
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	var nu, np int
	for i := range d.Users {
		u := &d.Users[i]
		existing, err := users.FindByID(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
		if existing != nil {
			continue
		}
		u.PasswordHash = hash
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
		nu++
	}
	for i := range d.Posts {
		p := &d.Posts[i]
		existing, err := posts.FindByID(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("seed post %s: %w", p.ID, err)
		}
		if existing != nil {
			continue
		}
		if err := posts.Create(ctx, p); err != nil {
			return fmt.Errorf("seed post %s: %w", p.ID, err)
		}
		np++
	}
	l.Info("demo data seeded", zap.Int("users", nu), zap.Int("posts", np))
	return nil
}
