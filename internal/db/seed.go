package db

import (
	"context"
	"errors"

	"github.com/geocoder89/docblog/internal/config"
	"github.com/geocoder89/docblog/internal/domain/category"
	"github.com/geocoder89/docblog/internal/domain/user"
	"github.com/geocoder89/docblog/internal/security"
)

type CategorySeeder interface {
	Upsert(ctx context.Context, cats []category.Category) error
}

type UserSeeder interface {
	GetByLogin(ctx context.Context, login string) (user.User, error)
	Create(ctx context.Context, in user.NewUser) (user.User, error)
}

func EnsureCategories(ctx context.Context, store CategorySeeder) error {
	return store.Upsert(ctx, category.Defaults())
}

// EnsureSeedDoctor creates the configured doctor account once. Missing credentials disable seeding.
func EnsureSeedDoctor(ctx context.Context, users UserSeeder, cfg config.Config) error {
	if cfg.SeedDoctorUsername == "" || cfg.SeedDoctorPassword == "" {
		return nil
	}

	// check if the user exists
	_, err := users.GetByLogin(ctx, cfg.SeedDoctorUsername)

	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(cfg.SeedDoctorPassword)

	if err != nil {
		return err
	}

	fullName := cfg.SeedDoctorFullName
	if fullName == "" {
		fullName = cfg.SeedDoctorUsername
	}

	_, err = users.Create(ctx, user.NewUser{
		Username:     cfg.SeedDoctorUsername,
		FullName:     fullName,
		Email:        cfg.SeedDoctorEmail,
		PasswordHash: hash,
		Role:         user.RoleDoctor,
	})

	if errors.Is(err, user.ErrUsernameTaken) {
		return nil
	}

	return err
}
