package orm

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/docblog/internal/domain/category"
	"github.com/geocoder89/docblog/internal/domain/post"
	"github.com/geocoder89/docblog/internal/observability"
	"gorm.io/gorm"
)

const postsCategoryFK = "blog_posts_category_id_fkey"

type PostsRepo struct {
	db   *gorm.DB
	prom *observability.Prom
}

func NewPostsRepo(db *DB) *PostsRepo {
	return &PostsRepo{db: db.Gorm, prom: db.Prom}
}

func (r *PostsRepo) Create(ctx context.Context, in post.NewPost) (post.Post, error) {
	if err := in.Validate(); err != nil {
		return post.Post{}, err
	}

	row := postModel{
		Title:      in.Title,
		Summary:    in.Summary,
		Content:    in.Content,
		CategoryID: in.CategoryID,
		AuthorID:   in.AuthorID,
		IsDraft:    in.IsDraft,
		ImageURL:   in.ImageURL,
	}

	err := observe(r.prom, "posts.create", func() error {
		return r.db.WithContext(ctx).Create(&row).Error
	})
	if err != nil {
		return post.Post{}, translate(err)
	}
	return row.toEntity(), nil
}

func (r *PostsRepo) GetByID(ctx context.Context, id int64) (post.Post, error) {
	var row postModel
	err := observe(r.prom, "posts.get", func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		return post.Post{}, translate(err)
	}
	return row.toEntity(), nil
}

func (r *PostsRepo) List(ctx context.Context, filter post.ListFilter) ([]post.Post, error) {
	tx := r.db.WithContext(ctx).Model(&postModel{})

	if filter.IsDraft != nil {
		tx = tx.Where("is_draft = ?", *filter.IsDraft)
	}
	if filter.CategoryID != nil {
		tx = tx.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.AuthorID != nil {
		tx = tx.Where("author_id = ?", *filter.AuthorID)
	}

	var rows []postModel
	err := observe(r.prom, "posts.list", func() error {
		return tx.Order("created_at DESC").Order("id DESC").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	out := make([]post.Post, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *PostsRepo) Update(ctx context.Context, id int64, patch post.Patch) (post.Post, error) {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Summary != nil {
		updates["summary"] = *patch.Summary
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.CategoryID != nil {
		updates["category_id"] = *patch.CategoryID
	}
	if patch.IsDraft != nil {
		updates["is_draft"] = *patch.IsDraft
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}

	var out post.Post
	err := observe(r.prom, "posts.update", func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&postModel{}).Where("id = ?", id).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return post.ErrNotFound
			}

			var row postModel
			if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
				return err
			}
			out = row.toEntity()
			return nil
		})
	})
	if err != nil {
		return post.Post{}, translate(err)
	}
	return out, nil
}

func (r *PostsRepo) Delete(ctx context.Context, id int64) error {
	var affected int64
	err := observe(r.prom, "posts.delete", func() error {
		res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&postModel{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return post.ErrNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return post.ErrNotFound
	}
	if pgErr, ok := pgError(err); ok && pgErr.Code == "23503" && pgErr.ConstraintName == postsCategoryFK {
		return category.ErrNotFound
	}
	return err
}
