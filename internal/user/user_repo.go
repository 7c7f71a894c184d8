package user

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	ListAdmins(ctx context.Context) ([]User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) ListAdmins(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("role = ?", "admin").
		Order("name ASC").
		Find(&users).Error
	return users, err
}
