package blog

import (
	"github.com/geocoder89/docblog/internal/domain/category"
	"github.com/geocoder89/docblog/internal/domain/post"
	"github.com/geocoder89/docblog/internal/domain/user"
)

// PostView is a post with its category and author projections attached.
type PostView struct {
	post.Post
	Category *category.Summary `json:"category,omitempty"`
	Author   *user.Author      `json:"author,omitempty"`
}

type CategoryGroup struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Posts       []PostView `json:"posts"`
}

type viewOptions struct {
	withCategory bool
	withAuthor   bool
	truncate     bool
}

func buildView(p post.Post, cats map[int64]category.Category, authors map[int64]user.User, opts viewOptions) PostView {
	v := PostView{Post: p}

	if opts.truncate {
		v.Summary = TruncateSummary(p.Summary)
	}
	if opts.withCategory {
		if c, ok := cats[p.CategoryID]; ok {
			s := c.Summary()
			v.Category = &s
		}
	}
	if opts.withAuthor {
		if u, ok := authors[p.AuthorID]; ok {
			a := u.Author()
			v.Author = &a
		}
	}
	return v
}

func authorIDs(posts []post.Post) []int64 {
	seen := make(map[int64]struct{}, len(posts))
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.AuthorID]; ok {
			continue
		}
		seen[p.AuthorID] = struct{}{}
		ids = append(ids, p.AuthorID)
	}
	return ids
}

func indexCategories(cats []category.Category) map[int64]category.Category {
	out := make(map[int64]category.Category, len(cats))
	for _, c := range cats {
		out[c.ID] = c
	}
	return out
}
