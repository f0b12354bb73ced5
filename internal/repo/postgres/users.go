package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/docblog/internal/domain/user"
	"github.com/geocoder89/docblog/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const userColumns = `id, username, full_name, COALESCE(email, ''), password_hash, role, created_at`

func scanUser(row pgx.Row, u *user.User) error {
	return row.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
}

func (r *UsersRepo) Create(ctx context.Context, in user.NewUser) (user.User, error) {
	var u user.User

	// empty email is stored as NULL so the unique index ignores it
	var email *string
	if in.Email != "" {
		e := strings.ToLower(in.Email)
		email = &e
	}

	err := r.observe("users.create", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (username, full_name, email, password_hash, role)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+userColumns,
			in.Username, in.FullName, email, in.PasswordHash, in.Role,
		), &u)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			switch constraintName(err) {
			case usersEmailKey:
				return user.User{}, user.ErrEmailTaken
			default:
				return user.User{}, user.ErrUsernameTaken
			}
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
		), &u)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// GetByLogin matches the username exactly or the email case-insensitively.
func (r *UsersRepo) GetByLogin(ctx context.Context, login string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_login", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+`
			FROM users
			WHERE username = $1 OR email = lower($1)
			ORDER BY (username = $1) DESC
			LIMIT 1`,
			login,
		), &u)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]user.User, error) {
	out := make(map[int64]user.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	err := r.observe("users.get_by_ids", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u user.User
			if err := scanUser(rows, &u); err != nil {
				return err
			}
			out[u.ID] = u
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}
