package orm

import (
	"context"
	"errors"

	"github.com/geocoder89/docblog/internal/domain/category"
	"github.com/geocoder89/docblog/internal/observability"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoriesRepo struct {
	db   *gorm.DB
	prom *observability.Prom
}

func NewCategoriesRepo(db *DB) *CategoriesRepo {
	return &CategoriesRepo{db: db.Gorm, prom: db.Prom}
}

func (r *CategoriesRepo) List(ctx context.Context) ([]category.Category, error) {
	var rows []categoryModel
	err := observe(r.prom, "categories.list", func() error {
		return r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	out := make([]category.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *CategoriesRepo) GetByID(ctx context.Context, id int64) (category.Category, error) {
	var row categoryModel
	err := observe(r.prom, "categories.get", func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return category.Category{}, category.ErrNotFound
		}
		return category.Category{}, err
	}
	return row.toEntity(), nil
}

func (r *CategoriesRepo) Upsert(ctx context.Context, cats []category.Category) error {
	if len(cats) == 0 {
		return nil
	}

	rows := make([]categoryModel, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, categoryModel{ID: c.ID, Name: c.Name, Description: c.Description})
	}

	return observe(r.prom, "categories.upsert", func() error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description"}),
		}).Create(&rows).Error
	})
}
