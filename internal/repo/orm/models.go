package orm

import (
	"time"

	"github.com/geocoder89/docblog/internal/domain/category"
	"github.com/geocoder89/docblog/internal/domain/post"
	"github.com/geocoder89/docblog/internal/domain/user"
)

type userModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string    `gorm:"column:username"`
	FullName     string    `gorm:"column:full_name"`
	Email        *string   `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (userModel) TableName() string {
	return "users"
}

func (m userModel) toEntity() user.User {
	email := ""
	if m.Email != nil {
		email = *m.Email
	}
	return user.User{
		ID:           m.ID,
		Username:     m.Username,
		FullName:     m.FullName,
		Email:        email,
		PasswordHash: m.PasswordHash,
		Role:         user.Role(m.Role),
		CreatedAt:    m.CreatedAt,
	}
}

type categoryModel struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name        string `gorm:"column:name"`
	Description string `gorm:"column:description"`
}

func (categoryModel) TableName() string {
	return "categories"
}

func (m categoryModel) toEntity() category.Category {
	return category.Category{ID: m.ID, Name: m.Name, Description: m.Description}
}

type postModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title      string    `gorm:"column:title"`
	Summary    string    `gorm:"column:summary"`
	Content    string    `gorm:"column:content"`
	CategoryID int64     `gorm:"column:category_id"`
	AuthorID   int64     `gorm:"column:author_id"`
	IsDraft    bool      `gorm:"column:is_draft"`
	ImageURL   *string   `gorm:"column:image_url"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (postModel) TableName() string {
	return "blog_posts"
}

func (m postModel) toEntity() post.Post {
	return post.Post{
		ID:         m.ID,
		Title:      m.Title,
		Summary:    m.Summary,
		Content:    m.Content,
		CategoryID: m.CategoryID,
		AuthorID:   m.AuthorID,
		IsDraft:    m.IsDraft,
		ImageURL:   m.ImageURL,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
