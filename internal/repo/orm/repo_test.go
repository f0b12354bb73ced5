package orm_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/geocoder89/docblog/internal/db"
	"github.com/geocoder89/docblog/internal/domain/category"
	"github.com/geocoder89/docblog/internal/domain/post"
	"github.com/geocoder89/docblog/internal/domain/user"
	"github.com/geocoder89/docblog/internal/observability"
	"github.com/geocoder89/docblog/internal/repo/orm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func setup(t *testing.T) *orm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	pool, err := db.NewPool(dsn)
	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE blog_posts, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	conn, err := orm.Connect(dsn, observability.NewProm(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := orm.NewCategoriesRepo(conn).Upsert(ctx, category.Defaults()); err != nil {
		t.Fatalf("seed categories: %v", err)
	}
	return conn
}

func TestStore_RoundTrip(t *testing.T) {
	conn := setup(t)
	ctx := context.Background()

	users := orm.NewUsersRepo(conn)
	posts := orm.NewPostsRepo(conn)

	author, err := users.Create(ctx, user.NewUser{Username: "drjohn", FullName: "Dr. John Smith", PasswordHash: "x", Role: user.RoleDoctor})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := users.Create(ctx, user.NewUser{Username: "drjohn", FullName: "Again", PasswordHash: "x", Role: user.RoleDoctor}); !errors.Is(err, user.ErrUsernameTaken) {
		t.Fatalf("got %v, want ErrUsernameTaken", err)
	}

	cats, err := orm.NewCategoriesRepo(conn).List(ctx)
	if err != nil || len(cats) != 4 || cats[1].Name != "Heart Disease" {
		t.Fatalf("categories: %v %+v", err, cats)
	}

	p, err := posts.Create(ctx, post.NewPost{Title: "Managing Hypertension", Summary: "s", Content: "c", CategoryID: 2, AuthorID: author.ID})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	draft := true
	updated, err := posts.Update(ctx, p.ID, post.Patch{IsDraft: &draft})
	if err != nil || !updated.IsDraft || updated.Title != p.Title {
		t.Fatalf("update: %v %+v", err, updated)
	}

	published, err := posts.List(ctx, post.Published(nil))
	if err != nil || len(published) != 0 {
		t.Fatalf("draft leaked: %v %+v", err, published)
	}

	if err := posts.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := posts.GetByID(ctx, p.ID); !errors.Is(err, post.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	// the gorm store reports to the same DB metrics as the pgx store
	if n := testutil.CollectAndCount(conn.Prom.DbQueryDuration); n == 0 {
		t.Fatalf("expected db query metrics to be recorded")
	}
}
