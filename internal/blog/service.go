// Package blog selects, authorizes and formats posts for every read and write path of the API.
package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/docblog/internal/domain/category"
	"github.com/geocoder89/docblog/internal/domain/post"
	"github.com/geocoder89/docblog/internal/domain/user"
	"github.com/geocoder89/docblog/internal/policy"
)

type PostStore interface {
	Create(ctx context.Context, in post.NewPost) (post.Post, error)
	GetByID(ctx context.Context, id int64) (post.Post, error)
	List(ctx context.Context, filter post.ListFilter) ([]post.Post, error)
	Update(ctx context.Context, id int64, patch post.Patch) (post.Post, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryStore interface {
	List(ctx context.Context) ([]category.Category, error)
	GetByID(ctx context.Context, id int64) (category.Category, error)
}

type AuthorStore interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]user.User, error)
}

type Service struct {
	posts      PostStore
	categories CategoryStore
	authors    AuthorStore
}

func NewService(posts PostStore, categories CategoryStore, authors AuthorStore) *Service {
	return &Service{posts: posts, categories: categories, authors: authors}
}

func (s *Service) Categories(ctx context.Context) ([]category.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return cats, nil
}

// ListPublished returns non-draft posts, newest first, with truncated summaries.
func (s *Service) ListPublished(ctx context.Context, categoryID *int64) ([]PostView, error) {
	posts, err := s.posts.List(ctx, post.Published(categoryID))
	if err != nil {
		return nil, fmt.Errorf("listing published posts: %w", err)
	}

	cats, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	authors, err := s.authorIndex(ctx, posts)
	if err != nil {
		return nil, err
	}

	opts := viewOptions{withCategory: true, withAuthor: true, truncate: true}
	out := make([]PostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, buildView(p, cats, authors, opts))
	}
	return out, nil
}

// ListMine returns every post of the calling doctor, drafts included, summaries untouched.
func (s *Service) ListMine(ctx context.Context, id user.Identity) ([]PostView, error) {
	if err := policy.AuthorizeCreate(id); err != nil {
		return nil, err
	}

	posts, err := s.posts.List(ctx, post.ByAuthor(id.UserID))
	if err != nil {
		return nil, fmt.Errorf("listing author posts: %w", err)
	}

	cats, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	opts := viewOptions{withCategory: true}
	out := make([]PostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, buildView(p, cats, nil, opts))
	}
	return out, nil
}

// ListByCategory groups published posts under every category, empty categories included.
func (s *Service) ListByCategory(ctx context.Context) ([]CategoryGroup, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	posts, err := s.posts.List(ctx, post.Published(nil))
	if err != nil {
		return nil, fmt.Errorf("listing published posts: %w", err)
	}

	authors, err := s.authorIndex(ctx, posts)
	if err != nil {
		return nil, err
	}

	// posts arrive newest first, appending keeps that order inside each group
	byCategory := make(map[int64][]PostView, len(cats))
	opts := viewOptions{withAuthor: true, truncate: true}
	for _, p := range posts {
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], buildView(p, nil, authors, opts))
	}

	out := make([]CategoryGroup, 0, len(cats))
	for _, c := range cats {
		group := byCategory[c.ID]
		if group == nil {
			group = []PostView{}
		}
		out = append(out, CategoryGroup{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Posts:       group,
		})
	}
	return out, nil
}

// GetPost hides drafts from everyone but their author; identity is nil for anonymous callers.
func (s *Service) GetPost(ctx context.Context, id int64, identity *user.Identity) (PostView, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return PostView{}, err
	}

	if err := policy.AuthorizeView(identity, p); err != nil {
		return PostView{}, err
	}

	cats, err := s.categoryIndex(ctx)
	if err != nil {
		return PostView{}, err
	}
	authors, err := s.authorIndex(ctx, []post.Post{p})
	if err != nil {
		return PostView{}, err
	}

	return buildView(p, cats, authors, viewOptions{withCategory: true, withAuthor: true}), nil
}

func (s *Service) CreatePost(ctx context.Context, identity user.Identity, req post.CreatePostRequest, imageURL *string) (post.Post, error) {
	if err := policy.AuthorizeCreate(identity); err != nil {
		return post.Post{}, err
	}

	if _, err := s.categories.GetByID(ctx, int64(req.CategoryID)); err != nil {
		return post.Post{}, err
	}

	created, err := s.posts.Create(ctx, req.ToNewPost(identity.UserID, imageURL))
	if err != nil {
		return post.Post{}, err
	}
	return created, nil
}

func (s *Service) UpdatePost(ctx context.Context, identity user.Identity, id int64, patch post.Patch) (post.Post, error) {
	current, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return post.Post{}, err
	}

	if err := policy.AuthorizeEdit(identity, current); err != nil {
		return post.Post{}, err
	}

	if patch.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *patch.CategoryID); err != nil {
			return post.Post{}, err
		}
	}

	if patch.Empty() {
		return current, nil
	}

	return s.posts.Update(ctx, id, patch)
}

func (s *Service) DeletePost(ctx context.Context, identity user.Identity, id int64) error {
	current, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := policy.AuthorizeDelete(identity, current); err != nil {
		return err
	}

	return s.posts.Delete(ctx, id)
}

func (s *Service) categoryIndex(ctx context.Context) (map[int64]category.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return indexCategories(cats), nil
}

func (s *Service) authorIndex(ctx context.Context, posts []post.Post) (map[int64]user.User, error) {
	if len(posts) == 0 {
		return map[int64]user.User{}, nil
	}
	authors, err := s.authors.GetByIDs(ctx, authorIDs(posts))
	if err != nil {
		return nil, fmt.Errorf("loading authors: %w", err)
	}
	return authors, nil
}

// IsClientError reports whether err is one of the sentinels the HTTP layer maps to a 4xx.
func IsClientError(err error) bool {
	return errors.Is(err, post.ErrNotFound) ||
		errors.Is(err, post.ErrInvalid) ||
		errors.Is(err, category.ErrNotFound) ||
		errors.Is(err, policy.ErrForbidden)
}
