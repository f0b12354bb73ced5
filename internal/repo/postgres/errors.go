package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	usersUsernameKey = "users_username_key"
	usersEmailKey    = "users_email_key"
	postsCategoryFK  = "blog_posts_category_id_fkey"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func isForeignKeyViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503" && pgErr.ConstraintName == constraint
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
