package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/docblog/internal/domain/category"
)

type CategoriesRepo struct {
	mu    sync.RWMutex
	items map[int64]category.Category
}

// NewCategoriesRepo seeds the catalog; with no arguments it uses category.Defaults().
func NewCategoriesRepo(seed ...category.Category) *CategoriesRepo {
	if len(seed) == 0 {
		seed = category.Defaults()
	}

	items := make(map[int64]category.Category, len(seed))
	for _, c := range seed {
		items[c.ID] = c
	}
	return &CategoriesRepo{items: items}
}

func (r *CategoriesRepo) List(_ context.Context) ([]category.Category, error) {
	r.mu.RLock()
	out := make([]category.Category, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CategoriesRepo) GetByID(_ context.Context, id int64) (category.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok {
		return category.Category{}, category.ErrNotFound
	}
	return c, nil
}

func (r *CategoriesRepo) Upsert(_ context.Context, cats []category.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range cats {
		r.items[c.ID] = c
	}
	return nil
}
