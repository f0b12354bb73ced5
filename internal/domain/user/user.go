package user

import (
	"errors"
	"time"
)

type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}

func ParseRole(raw string) (Role, bool) {
	r := Role(raw)
	return r, r.Valid()
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"-"`
}

// Identity is what a verified session resolves to.
type Identity struct {
	UserID int64
	Role   Role
}

func (u User) Identity() Identity {
	return Identity{UserID: u.ID, Role: u.Role}
}

// Author is the projection embedded in post listings.
type Author struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
}

func (u User) Author() Author {
	return Author{ID: u.ID, FullName: u.FullName}
}

type NewUser struct {
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
}

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")
)
