package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/docblog/internal/domain/category"
	"github.com/geocoder89/docblog/internal/domain/post"
)

type categoryLookup interface {
	GetByID(ctx context.Context, id int64) (category.Category, error)
}

type PostsRepo struct {
	mu         sync.RWMutex
	nextID     int64
	items      map[int64]post.Post // {"id": post}
	categories categoryLookup
	now        func() time.Time
}

func NewPostsRepo(categories categoryLookup) *PostsRepo {
	return &PostsRepo{
		nextID:     1,
		items:      make(map[int64]post.Post),
		categories: categories,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock swaps the time source; tests use it to control created_at ordering.
func (r *PostsRepo) WithClock(now func() time.Time) *PostsRepo {
	r.now = now
	return r
}

func (r *PostsRepo) Create(ctx context.Context, in post.NewPost) (post.Post, error) {
	if err := in.Validate(); err != nil {
		return post.Post{}, err
	}
	if _, err := r.categories.GetByID(ctx, in.CategoryID); err != nil {
		return post.Post{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	p := post.Post{
		ID:         r.nextID,
		Title:      in.Title,
		Summary:    in.Summary,
		Content:    in.Content,
		CategoryID: in.CategoryID,
		AuthorID:   in.AuthorID,
		IsDraft:    in.IsDraft,
		ImageURL:   copyString(in.ImageURL),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	// ids only ever grow, deleted ids are never handed out again
	r.nextID++
	r.items[p.ID] = p

	return clonePost(p), nil
}

func (r *PostsRepo) GetByID(_ context.Context, id int64) (post.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return post.Post{}, post.ErrNotFound
	}
	return clonePost(p), nil
}

func (r *PostsRepo) List(_ context.Context, filter post.ListFilter) ([]post.Post, error) {
	r.mu.RLock()
	out := make([]post.Post, 0, len(r.items))
	for _, p := range r.items {
		if filter.Match(p) {
			out = append(out, clonePost(p))
		}
	}
	r.mu.RUnlock()

	// newest first, id breaks ties for posts created in the same instant
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (r *PostsRepo) Update(ctx context.Context, id int64, patch post.Patch) (post.Post, error) {
	if patch.CategoryID != nil {
		if _, err := r.categories.GetByID(ctx, *patch.CategoryID); err != nil {
			return post.Post{}, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return post.Post{}, post.ErrNotFound
	}

	p = patch.Apply(p, r.now())
	r.items[id] = p

	return clonePost(p), nil
}

func (r *PostsRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return post.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func clonePost(p post.Post) post.Post {
	p.ImageURL = copyString(p.ImageURL)
	return p
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
