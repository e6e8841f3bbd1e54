// Package app assembles stores, cache, authentication and services from config.
// Both binaries start here.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-gin-blog/internal/core/auth"
	"go-gin-blog/internal/core/cache"
	"go-gin-blog/internal/core/config"
	"go-gin-blog/internal/core/database"
	"go-gin-blog/internal/core/logger"
	"go-gin-blog/internal/domain"
	"go-gin-blog/internal/feature/demo"
	"go-gin-blog/internal/repo"
	"go-gin-blog/internal/service"
	"go-gin-blog/internal/transport/http/router"
	"go-gin-blog/pkg/pagination"
)

type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Users    domain.UserRepository
	Posts    domain.PostRepository
	Services service.Set
	Identity auth.Identifier

	closers []func() error
}

// Build opens everything cfg describes. On error the parts opened so far are closed.
func Build(ctx context.Context, cfg *config.Config, l *zap.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Log: l}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err = a.openStores(ctx); err != nil {
		return nil, err
	}
	if cfg.Redis.Enabled() {
		if err = a.openCache(ctx); err != nil {
			return nil, err
		}
	}
	if cfg.Demo.Enabled && cfg.Demo.Seed {
		if err = demo.Seed(ctx, a.Users, a.Posts, cfg.Demo.Password, l); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	var authn service.Authenticator
	if cfg.Demo.Enabled {
		stub := demo.NewStubAuth(a.Users)
		authn, a.Identity = stub, stub
		l.Warn("demo mode: stub authentication accepts any password")
	} else {
		jwter := &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL()}
		authn, a.Identity = service.NewAuthService(a.Users, jwter, l), jwter
	}

	limits := pagination.Limits{Default: cfg.Pagination.DefaultLimit, Max: cfg.Pagination.MaxLimit}
	a.Services = service.NewSet(a.Users, a.Posts, authn, limits, l)
	return a, nil
}

func (a *App) openStores(ctx context.Context) error {
	cfg, l := a.Config, a.Log
	switch d := cfg.DB.Driver; {
	case d == "memory":
		a.Users, a.Posts = repo.NewMemUserRepo(), repo.NewMemPostRepo()

	case d == "mongo":
		client, db, err := database.NewMongo(ctx, database.MongoOpts{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  time.Duration(cfg.Mongo.TimeoutSec) * time.Second,
		})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })
		users, posts := repo.NewMongoUserRepo(db), repo.NewMongoPostRepo(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		if err := posts.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		a.Users, a.Posts = users, posts

	case database.IsSQL(d):
		db, err := database.NewGorm(database.Opts{
			Driver:             d,
			DSN:                cfg.DB.DSN,
			Username:           cfg.DB.Username,
			Password:           cfg.DB.Password,
			MaxOpenConns:       cfg.DB.MaxOpenConns,
			MaxIdleConns:       cfg.DB.MaxIdleConns,
			ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
			LogLevel:           cfg.DB.LogLevel,
			Log:                l,
			SQLLog:             logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel),
		})
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		if cfg.DB.AutoMigrate {
			if err := repo.Migrate(db); err != nil {
				return fmt.Errorf("automigrate: %w", err)
			}
			l.Info("automigrate done")
		}
		a.Users, a.Posts = repo.NewUserRepo(db), repo.NewPostRepo(db)

	default:
		return fmt.Errorf("%w: %q", database.ErrUnsupportedDriver, d)
	}
	l.Info("store ready", zap.String("driver", cfg.DB.Driver))
	return nil
}

func (a *App) openCache(ctx context.Context) error {
	rc := a.Config.Redis
	var c *cache.Cache
	if rc.Embedded {
		var err error
		if c, err = cache.NewEmbedded(); err != nil {
			return fmt.Errorf("embedded redis: %w", err)
		}
	} else {
		c = cache.New(rc.Addr, rc.Password, rc.DB)
	}
	a.closers = append(a.closers, c.Close)
	if err := c.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	a.Users = repo.NewCachedUserRepo(a.Users, c, time.Duration(rc.TTLSec)*time.Second, a.Log)
	a.Log.Info("user cache enabled", zap.Bool("embedded", rc.Embedded))
	return nil
}

// Deps feeds the HTTP engines. mods may be nil for the API engine's default modules.
func (a *App) Deps(mods *router.Registry) router.Deps {
	return router.Deps{
		Config:   a.Config,
		Log:      a.Log,
		Identity: a.Identity,
		Services: a.Services,
		Modules:  mods,
	}
}

// Close releases resources in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
