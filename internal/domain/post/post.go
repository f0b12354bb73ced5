package post

import (
	"errors"
	"strings"
	"time"
)

type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	Content    string    `json:"content"`
	CategoryID int64     `json:"category_id"`
	AuthorID   int64     `json:"author_id"`
	IsDraft    bool      `json:"is_draft"`
	ImageURL   *string   `json:"image_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// with pointers if optional, it will be nil
type ListFilter struct {
	IsDraft    *bool
	CategoryID *int64
	AuthorID   *int64
}

func (f ListFilter) Match(p Post) bool {
	if f.IsDraft != nil && p.IsDraft != *f.IsDraft {
		return false
	}
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
		return false
	}
	return true
}

// Published selects non-draft posts, optionally narrowed to one category.
func Published(categoryID *int64) ListFilter {
	draft := false
	return ListFilter{IsDraft: &draft, CategoryID: categoryID}
}

func ByAuthor(authorID int64) ListFilter {
	return ListFilter{AuthorID: &authorID}
}

var (
	ErrNotFound = errors.New("post not found")
	ErrInvalid  = errors.New("post is missing required fields")
)

// NewPost is what a repository needs to insert a row; ids and timestamps are assigned by the store.
type NewPost struct {
	Title      string
	Summary    string
	Content    string
	CategoryID int64
	AuthorID   int64
	IsDraft    bool
	ImageURL   *string
}

func (n NewPost) Validate() error {
	if strings.TrimSpace(n.Title) == "" ||
		strings.TrimSpace(n.Summary) == "" ||
		strings.TrimSpace(n.Content) == "" ||
		n.CategoryID <= 0 {
		return ErrInvalid
	}
	return nil
}

// Patch carries a partial update: nil fields are left untouched.
type Patch struct {
	Title      *string
	Summary    *string
	Content    *string
	CategoryID *int64
	IsDraft    *bool
	ImageURL   *string
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Summary == nil && p.Content == nil &&
		p.CategoryID == nil && p.IsDraft == nil && p.ImageURL == nil
}

// Apply returns a copy of the post with the patch applied and UpdatedAt set to now.
func (p Patch) Apply(in Post, now time.Time) Post {
	out := in
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Summary != nil {
		out.Summary = *p.Summary
	}
	if p.Content != nil {
		out.Content = *p.Content
	}
	if p.CategoryID != nil {
		out.CategoryID = *p.CategoryID
	}
	if p.IsDraft != nil {
		out.IsDraft = *p.IsDraft
	}
	if p.ImageURL != nil {
		url := *p.ImageURL
		out.ImageURL = &url
	}
	out.UpdatedAt = now
	return out
}
