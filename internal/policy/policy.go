// Package policy holds every role and ownership decision made about blog posts.
package policy

import (
	"errors"

	"github.com/geocoder89/docblog/internal/domain/post"
	"github.com/geocoder89/docblog/internal/domain/user"
)

var ErrForbidden = errors.New("forbidden")

func CanCreate(id user.Identity) bool {
	return id.Role == user.RoleDoctor
}

// CanView accepts a nil identity for anonymous callers.
func CanView(id *user.Identity, p post.Post) bool {
	if !p.IsDraft {
		return true
	}
	return id != nil && id.UserID == p.AuthorID
}

func CanEdit(id user.Identity, p post.Post) bool {
	return id.Role == user.RoleDoctor && id.UserID == p.AuthorID
}

func CanDelete(id user.Identity, p post.Post) bool {
	return CanEdit(id, p)
}

// AuthorizeView reports hidden drafts as post.ErrNotFound so their existence never leaks.
func AuthorizeView(id *user.Identity, p post.Post) error {
	if !CanView(id, p) {
		return post.ErrNotFound
	}
	return nil
}

func AuthorizeCreate(id user.Identity) error {
	if !CanCreate(id) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeEdit runs the view check first, so a draft owned by someone else is NotFound, not Forbidden.
func AuthorizeEdit(id user.Identity, p post.Post) error {
	if err := AuthorizeView(&id, p); err != nil {
		return err
	}
	if !CanEdit(id, p) {
		return ErrForbidden
	}
	return nil
}

func AuthorizeDelete(id user.Identity, p post.Post) error {
	if err := AuthorizeView(&id, p); err != nil {
		return err
	}
	if !CanDelete(id, p) {
		return ErrForbidden
	}
	return nil
}
