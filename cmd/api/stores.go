package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/docblog/internal/auth"
	"github.com/geocoder89/docblog/internal/blog"
	"github.com/geocoder89/docblog/internal/config"
	"github.com/geocoder89/docblog/internal/db"
	"github.com/geocoder89/docblog/internal/observability"
	"github.com/geocoder89/docblog/internal/repo/memory"
	"github.com/geocoder89/docblog/internal/repo/orm"
	"github.com/geocoder89/docblog/internal/repo/postgres"
)

type userStore interface {
	auth.UserStore
	blog.AuthorStore
	db.UserSeeder
}

type categoryStore interface {
	blog.CategoryStore
	db.CategorySeeder
}

// stores is one backend's set of repositories plus its readiness check and cleanup.
type stores struct {
	users      userStore
	categories categoryStore
	posts      blog.PostStore
	ping       func(ctx context.Context) error
	close      func()
}

func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")

		categories := memory.NewCategoriesRepo()
		return &stores{
			users:      memory.NewUsersRepo(),
			categories: categories,
			posts:      memory.NewPostsRepo(categories),
			close:      func() {},
		}, nil

	case config.StoreGorm:
		// the schema is owned by the embedded migration, run through pgx
		pool, err := db.NewPool(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		err = db.Migrate(ctx, pool)
		pool.Close()
		if err != nil {
			return nil, fmt.Errorf("db migrate failed: %w", err)
		}

		gdb, err := orm.Connect(cfg.DBURL, prom)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:      orm.NewUsersRepo(gdb),
			categories: orm.NewCategoriesRepo(gdb),
			posts:      orm.NewPostsRepo(gdb),
			ping:       gdb.Ping,
			close:      func() { _ = gdb.Close() },
		}, nil

	case config.StorePostgres:
		pool, err := db.NewPool(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db migrate failed: %w", err)
		}
		return &stores{
			users:      postgres.NewUsersRepo(pool, prom),
			categories: postgres.NewCategoriesRepo(pool, prom),
			posts:      postgres.NewPostsRepo(pool, prom),
			ping:       pool.Ping,
			close:      pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

// seed installs the fixed categories and the optional bootstrap doctor.
func (s *stores) seed(ctx context.Context, cfg config.Config) error {
	if err := db.EnsureCategories(ctx, s.categories); err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}
	if err := db.EnsureSeedDoctor(ctx, s.users, cfg); err != nil {
		return fmt.Errorf("seeding doctor: %w", err)
	}
	return nil
}
