package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"libman/internal/domain"
	"libman/internal/model"
)

type bookRepository struct {
	database *gorm.DB
}

// BookRepository persists catalog titles and their availability counters.
// Construct it over a transaction handle to make the ledger operations part
// of a larger atomic unit.
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	Save(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id uint) (model.Book, error)
	GetForUpdate(ctx context.Context, id uint) (model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Search(ctx context.Context, title, category string) ([]model.Book, error)
	IncrementAvailable(ctx context.Context, id uint) error
	DecrementAvailable(ctx context.Context, id uint) error
	ListIDsByCategory(ctx context.Context, categoryID uint) ([]uint, error)
	Delete(ctx context.Context, id uint) error
	DeleteByCategory(ctx context.Context, categoryID uint) error
}

func NewBookRepo(db *gorm.DB) BookRepository {
	return &bookRepository{database: db}
}

func (r *bookRepository) Create(ctx context.Context, book *model.Book) error {
	err := r.database.WithContext(ctx).Create(book).Error
	return wrapErr(err, "book not found", "")
}

func (r *bookRepository) Save(ctx context.Context, book *model.Book) error {
	err := r.database.WithContext(ctx).Omit(clause.Associations).Save(book).Error
	return wrapErr(err, "book not found", "")
}

func (r *bookRepository) GetByID(ctx context.Context, id uint) (model.Book, error) {
	var book model.Book
	err := r.database.WithContext(ctx).First(&book, id).Error
	return book, wrapErr(err, "book not found", "")
}

// GetForUpdate reads the book row under a write lock so concurrent
// availability adjustments serialize on it.
func (r *bookRepository) GetForUpdate(ctx context.Context, id uint) (model.Book, error) {
	var book model.Book
	err := forUpdate(r.database.WithContext(ctx)).First(&book, id).Error
	return book, wrapErr(err, "book not found", "")
}

func (r *bookRepository) List(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	if err := r.database.WithContext(ctx).Order("id").Find(&books).Error; err != nil {
		return nil, domain.Storage(err)
	}
	return books, nil
}

// Search filters by title and category name substring, case-insensitively.
func (r *bookRepository) Search(ctx context.Context, title, category string) ([]model.Book, error) {
	q := r.database.WithContext(ctx).Model(&model.Book{}).
		Joins("JOIN categories ON categories.id = books.category_id")
	if title != "" {
		q = q.Where("LOWER(books.title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}
	if category != "" {
		q = q.Where("LOWER(categories.name) LIKE ?", "%"+strings.ToLower(category)+"%")
	}
	var books []model.Book
	if err := q.Order("books.id").Find(&books).Error; err != nil {
		return nil, domain.Storage(err)
	}
	return books, nil
}

// IncrementAvailable restores one copy to circulation, refusing to exceed
// the total copy count.
func (r *bookRepository) IncrementAvailable(ctx context.Context, id uint) error {
	book, err := r.GetForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if book.AvailableQuantity >= book.Quantity {
		return domain.E(domain.KindConflict, "all copies of %q are already available", book.Title)
	}
	book.AvailableQuantity++
	return r.Save(ctx, &book)
}

// DecrementAvailable takes one copy out of circulation, refusing to go
// below zero.
func (r *bookRepository) DecrementAvailable(ctx context.Context, id uint) error {
	book, err := r.GetForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if book.AvailableQuantity <= 0 {
		return domain.E(domain.KindOutOfStock, "no copies of %q available", book.Title)
	}
	book.AvailableQuantity--
	return r.Save(ctx, &book)
}

func (r *bookRepository) ListIDsByCategory(ctx context.Context, categoryID uint) ([]uint, error) {
	var ids []uint
	err := r.database.WithContext(ctx).Model(&model.Book{}).
		Where("category_id = ?", categoryID).Pluck("id", &ids).Error
	if err != nil {
		return nil, domain.Storage(err)
	}
	return ids, nil
}

func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	err := r.database.WithContext(ctx).Delete(&model.Book{}, id).Error
	return wrapErr(err, "book not found", "")
}

func (r *bookRepository) DeleteByCategory(ctx context.Context, categoryID uint) error {
	err := r.database.WithContext(ctx).
		Where("category_id = ?", categoryID).Delete(&model.Book{}).Error
	if err != nil {
		return domain.Storage(err)
	}
	return nil
}
