package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/docblog/internal/domain/category"
	"github.com/geocoder89/docblog/internal/domain/post"
	"github.com/geocoder89/docblog/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPostsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PostsRepo {
	return &PostsRepo{pool: pool, prom: prom}
}

func (r *PostsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const postColumns = `id, title, summary, content, category_id, author_id, is_draft, image_url, created_at, updated_at`

func scanPost(row pgx.Row, p *post.Post) error {
	return row.Scan(
		&p.ID,
		&p.Title,
		&p.Summary,
		&p.Content,
		&p.CategoryID,
		&p.AuthorID,
		&p.IsDraft,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *PostsRepo) Create(ctx context.Context, in post.NewPost) (post.Post, error) {
	if err := in.Validate(); err != nil {
		return post.Post{}, err
	}

	var p post.Post

	err := r.observe("posts.create", func() error {
		return scanPost(r.pool.QueryRow(ctx,
			`INSERT INTO blog_posts (title, summary, content, category_id, author_id, is_draft, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+postColumns,
			in.Title, in.Summary, in.Content, in.CategoryID, in.AuthorID, in.IsDraft, in.ImageURL,
		), &p)
	})

	if err != nil {
		if isForeignKeyViolation(err, postsCategoryFK) {
			return post.Post{}, category.ErrNotFound
		}
		return post.Post{}, err
	}
	return p, nil
}

func (r *PostsRepo) GetByID(ctx context.Context, id int64) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.get_by_id", func() error {
		return scanPost(r.pool.QueryRow(ctx,
			`SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id,
		), &p)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}
	return p, nil
}

func (r *PostsRepo) List(ctx context.Context, filter post.ListFilter) ([]post.Post, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.IsDraft != nil {
		conds = append(conds, fmt.Sprintf("is_draft = $%d", argsPosition))
		args = append(args, *filter.IsDraft)
		argsPosition++
	}

	if filter.CategoryID != nil {
		conds = append(conds, fmt.Sprintf("category_id = $%d", argsPosition))
		args = append(args, *filter.CategoryID)
		argsPosition++
	}

	if filter.AuthorID != nil {
		conds = append(conds, fmt.Sprintf("author_id = $%d", argsPosition))
		args = append(args, *filter.AuthorID)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// newest first, id breaks ties for rows inserted in the same transaction
	query += " ORDER BY created_at DESC, id DESC"

	output := make([]post.Post, 0)

	err := r.observe("posts.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p post.Post
			if err := scanPost(rows, &p); err != nil {
				return err
			}
			output = append(output, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return output, nil
}

// Update applies only the non-nil patch fields and bumps updated_at.
func (r *PostsRepo) Update(ctx context.Context, id int64, patch post.Patch) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.update", func() error {
		return scanPost(r.pool.QueryRow(ctx,
			`UPDATE blog_posts
				SET title = COALESCE($2, title),
						summary = COALESCE($3, summary),
						content = COALESCE($4, content),
						category_id = COALESCE($5, category_id),
						is_draft = COALESCE($6, is_draft),
						image_url = COALESCE($7, image_url),
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+postColumns,
			id,
			patch.Title,
			patch.Summary,
			patch.Content,
			patch.CategoryID,
			patch.IsDraft,
			patch.ImageURL,
		), &p)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		if isForeignKeyViolation(err, postsCategoryFK) {
			return post.Post{}, category.ErrNotFound
		}
		return post.Post{}, err
	}
	return p, nil
}

func (r *PostsRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("posts.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return post.ErrNotFound
	}
	return nil
}
