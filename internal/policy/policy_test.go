package policy_test

import (
	"errors"
	"testing"

	"github.com/geocoder89/docblog/internal/domain/post"
	"github.com/geocoder89/docblog/internal/domain/user"
	"github.com/geocoder89/docblog/internal/policy"
)

var (
	author  = user.Identity{UserID: 1, Role: user.RoleDoctor}
	doctor2 = user.Identity{UserID: 2, Role: user.RoleDoctor}
	patient = user.Identity{UserID: 3, Role: user.RolePatient}
)

func TestCanCreate(t *testing.T) {
	if !policy.CanCreate(author) {
		t.Fatalf("doctor should be able to create")
	}
	if policy.CanCreate(patient) {
		t.Fatalf("patient must not create")
	}
	if err := policy.AuthorizeCreate(patient); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

func TestCanView(t *testing.T) {
	published := post.Post{ID: 1, AuthorID: 1}
	draft := post.Post{ID: 2, AuthorID: 1, IsDraft: true}

	tests := []struct {
		name string
		id   *user.Identity
		p    post.Post
		want bool
	}{
		{name: "anonymous_published", id: nil, p: published, want: true},
		{name: "patient_published", id: &patient, p: published, want: true},
		{name: "anonymous_draft", id: nil, p: draft, want: false},
		{name: "other_doctor_draft", id: &doctor2, p: draft, want: false},
		{name: "author_draft", id: &author, p: draft, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.CanView(tt.id, tt.p); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthorizeEditAndDelete(t *testing.T) {
	published := post.Post{ID: 1, AuthorID: 1}
	draft := post.Post{ID: 2, AuthorID: 1, IsDraft: true}

	tests := []struct {
		name    string
		id      user.Identity
		p       post.Post
		wantErr error
	}{
		{name: "author_published", id: author, p: published, wantErr: nil},
		{name: "author_draft", id: author, p: draft, wantErr: nil},
		{name: "other_doctor_published", id: doctor2, p: published, wantErr: policy.ErrForbidden},
		{name: "other_doctor_draft_hidden", id: doctor2, p: draft, wantErr: post.ErrNotFound},
		{name: "patient_published", id: patient, p: published, wantErr: policy.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := policy.AuthorizeEdit(tt.id, tt.p); !errors.Is(err, tt.wantErr) {
				t.Fatalf("edit: got %v, want %v", err, tt.wantErr)
			}
			if err := policy.AuthorizeDelete(tt.id, tt.p); !errors.Is(err, tt.wantErr) {
				t.Fatalf("delete: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPatientWithMatchingIDCannotEdit(t *testing.T) {
	// role is checked even when the id happens to match
	p := post.Post{ID: 1, AuthorID: 3}
	if policy.CanEdit(patient, p) {
		t.Fatalf("patient must never edit")
	}
}
