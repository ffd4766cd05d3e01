package repository

import (
	"context"

	"gorm.io/gorm"

	"libman/internal/domain"
	"libman/internal/model"
)

type categoryRepository struct {
	database *gorm.DB
}

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Save(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id uint) (model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Delete(ctx context.Context, id uint) error
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepository{database: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	err := r.database.WithContext(ctx).Create(category).Error
	return wrapErr(err, "category not found", "category name already exists")
}

func (r *categoryRepository) Save(ctx context.Context, category *model.Category) error {
	err := r.database.WithContext(ctx).Save(category).Error
	return wrapErr(err, "category not found", "category name already exists")
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (model.Category, error) {
	var category model.Category
	err := r.database.WithContext(ctx).First(&category, id).Error
	return category, wrapErr(err, "category not found", "")
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.database.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, domain.Storage(err)
	}
	return categories, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	err := r.database.WithContext(ctx).Delete(&model.Category{}, id).Error
	return wrapErr(err, "category not found", "")
}
