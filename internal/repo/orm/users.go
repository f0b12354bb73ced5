package orm

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/docblog/internal/domain/user"
	"github.com/geocoder89/docblog/internal/observability"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsersRepo struct {
	db   *gorm.DB
	prom *observability.Prom
}

func NewUsersRepo(db *DB) *UsersRepo {
	return &UsersRepo{db: db.Gorm, prom: db.Prom}
}

func (r *UsersRepo) Create(ctx context.Context, in user.NewUser) (user.User, error) {
	row := userModel{
		Username:     in.Username,
		FullName:     in.FullName,
		PasswordHash: in.PasswordHash,
		Role:         string(in.Role),
	}
	if in.Email != "" {
		e := strings.ToLower(in.Email)
		row.Email = &e
	}

	err := observe(r.prom, "users.create", func() error {
		return r.db.WithContext(ctx).Create(&row).Error
	})
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_email_key" {
				return user.User{}, user.ErrEmailTaken
			}
			return user.User{}, user.ErrUsernameTaken
		}
		return user.User{}, err
	}
	return row.toEntity(), nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var row userModel
	err := observe(r.prom, "users.get", func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return row.toEntity(), nil
}

func (r *UsersRepo) GetByLogin(ctx context.Context, login string) (user.User, error) {
	var row userModel
	err := observe(r.prom, "users.get_by_login", func() error {
		return r.db.WithContext(ctx).
			Where("username = ? OR email = lower(?)", login, login).
			Order(clause.OrderBy{Expression: clause.Expr{SQL: "(username = ?) DESC", Vars: []any{login}, WithoutParentheses: true}}).
			First(&row).
			Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return row.toEntity(), nil
}

func (r *UsersRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]user.User, error) {
	out := make(map[int64]user.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []userModel
	err := observe(r.prom, "users.get_by_ids", func() error {
		return r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.toEntity()
	}
	return out, nil
}
