package repo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-gin-blog/internal/core/cache"
	"go-gin-blog/internal/domain"
)

// CachedUserRepo serves FindByID from redis and drops the entry on every write.
// Listings and email lookups always hit the backing store.
type CachedUserRepo struct {
	domain.UserRepository
	c   *cache.Cache
	ttl time.Duration
	log *zap.Logger
}

func NewCachedUserRepo(inner domain.UserRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CachedUserRepo {
	if l == nil {
		l = zap.NewNop()
	}
	return &CachedUserRepo{UserRepository: inner, c: c, ttl: ttl, log: l}
}

// the password hash is hidden from domain.User's JSON, so the cache carries it separately
type cachedUser struct {
	domain.User
	Hash string `json:"passwordHash"`
}

func userKey(id string) string { return "user:id:" + id }

func (r *CachedUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	cu, err := cache.GetOrLoadJSON(r.c, ctx, userKey(id), r.ttl, func(ctx context.Context) (*cachedUser, error) {
		u, err := r.UserRepository.FindByID(ctx, id)
		if err != nil || u == nil {
			return nil, err
		}
		return &cachedUser{User: *u, Hash: u.PasswordHash}, nil
	})
	if err != nil || cu == nil {
		return nil, err
	}
	u := cu.User
	u.PasswordHash = cu.Hash
	return &u, nil
}

func (r *CachedUserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.UserRepository.Create(ctx, u); err != nil {
		return err
	}
	r.invalidate(ctx, u.ID)
	return nil
}

func (r *CachedUserRepo) Update(ctx context.Context, u *domain.User) error {
	if err := r.UserRepository.Update(ctx, u); err != nil {
		return err
	}
	r.invalidate(ctx, u.ID)
	return nil
}

func (r *CachedUserRepo) Delete(ctx context.Context, id string) error {
	if err := r.UserRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedUserRepo) invalidate(ctx context.Context, id string) {
	if err := r.c.Invalidate(ctx, userKey(id)); err != nil {
		r.log.Warn("user cache invalidate failed", zap.String("id", id), zap.Error(err))
	}
}
