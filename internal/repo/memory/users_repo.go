package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/docblog/internal/domain/user"
)

type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		nextID: 1,
		items:  make(map[int64]user.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, in user.NewUser) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.items {
		if u.Username == in.Username {
			return user.User{}, user.ErrUsernameTaken
		}
		if in.Email != "" && strings.EqualFold(u.Email, in.Email) {
			return user.User{}, user.ErrEmailTaken
		}
	}

	u := user.User{
		ID:           r.nextID,
		Username:     in.Username,
		FullName:     in.FullName,
		Email:        strings.ToLower(in.Email),
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
		CreatedAt:    time.Now().UTC(),
	}
	r.nextID++
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByLogin(_ context.Context, login string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if login == "" {
		return user.User{}, user.ErrNotFound
	}

	for _, u := range r.items {
		if u.Username == login || (u.Email != "" && strings.EqualFold(u.Email, login)) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

// GetByIDs skips ids that do not resolve.
func (r *UsersRepo) GetByIDs(_ context.Context, ids []int64) (map[int64]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int64]user.User, len(ids))
	for _, id := range ids {
		if u, ok := r.items[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
