package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"libman/internal/domain"
	"libman/internal/model"
)

type userRepository struct {
	database *gorm.DB
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepository{database: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	err := r.database.WithContext(ctx).Create(user).Error
	return wrapErr(err, "user not found", "email already registered")
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (model.User, error) {
	var user model.User
	err := r.database.WithContext(ctx).First(&user, id).Error
	return user, wrapErr(err, "user not found", "")
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := r.database.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, wrapErr(err, "user not found", "")
}

func (r *userRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var user model.User
	err := r.database.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, domain.Storage(err)
	}
	return true, nil
}
