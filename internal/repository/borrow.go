package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"libman/internal/domain"
	"libman/internal/model"
)

type borrowRepository struct {
	database *gorm.DB
}

// BorrowRepository persists borrow records. List methods preload Book and
// User so callers can render display fields without extra queries.
type BorrowRepository interface {
	Create(ctx context.Context, borrow *model.Borrow) error
	Save(ctx context.Context, borrow *model.Borrow) error
	FindByID(ctx context.Context, id uint) (model.Borrow, error)
	FindByIDForUpdate(ctx context.Context, id uint) (model.Borrow, error)
	FindOwned(ctx context.Context, userID, id uint) (model.Borrow, error)
	FindOpen(ctx context.Context, userID, bookID uint) (*model.Borrow, error)
	ListAll(ctx context.Context) ([]model.Borrow, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Borrow, error)
	ListReturnedByUser(ctx context.Context, userID uint) ([]model.Borrow, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]model.Borrow, error)
	DeleteByBookIDs(ctx context.Context, bookIDs []uint) error
}

func NewBorrowRepo(db *gorm.DB) BorrowRepository {
	return &borrowRepository{database: db}
}

func (r *borrowRepository) Create(ctx context.Context, borrow *model.Borrow) error {
	err := r.database.WithContext(ctx).Create(borrow).Error
	return wrapErr(err, "borrow not found", "")
}

// Save persists the record itself; preloaded Book and User are display
// data and must not be written back.
func (r *borrowRepository) Save(ctx context.Context, borrow *model.Borrow) error {
	err := r.database.WithContext(ctx).Omit(clause.Associations).Save(borrow).Error
	return wrapErr(err, "borrow not found", "")
}

func (r *borrowRepository) FindByID(ctx context.Context, id uint) (model.Borrow, error) {
	var borrow model.Borrow
	err := r.database.WithContext(ctx).Preload("Book").Preload("User").
		First(&borrow, id).Error
	return borrow, wrapErr(err, "borrow not found", "")
}

// FindByIDForUpdate reads the record under a write lock so concurrent
// lifecycle transitions on the same record serialize. No associations are
// preloaded; callers needing display fields re-fetch after commit.
func (r *borrowRepository) FindByIDForUpdate(ctx context.Context, id uint) (model.Borrow, error) {
	var borrow model.Borrow
	err := forUpdate(r.database.WithContext(ctx)).First(&borrow, id).Error
	return borrow, wrapErr(err, "borrow not found", "")
}

// FindOwned looks a record up by id restricted to its holder.
func (r *borrowRepository) FindOwned(ctx context.Context, userID, id uint) (model.Borrow, error) {
	var borrow model.Borrow
	err := r.database.WithContext(ctx).Preload("Book").Preload("User").
		Where("user_id = ?", userID).First(&borrow, id).Error
	return borrow, wrapErr(err, "borrow not found", "")
}

// FindOpen returns the user's non-returned record for the book, or nil when
// there is none. Run inside the borrowing transaction it acts as the guard
// against duplicate active borrows.
func (r *borrowRepository) FindOpen(ctx context.Context, userID, bookID uint) (*model.Borrow, error) {
	var borrow model.Borrow
	err := r.database.WithContext(ctx).
		Where("user_id = ? AND book_id = ? AND status <> ?", userID, bookID, model.StatusReturned).
		First(&borrow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Storage(err)
	}
	return &borrow, nil
}

func (r *borrowRepository) ListAll(ctx context.Context) ([]model.Borrow, error) {
	var borrows []model.Borrow
	err := r.database.WithContext(ctx).Preload("Book").Preload("User").
		Order("id").Find(&borrows).Error
	if err != nil {
		return nil, domain.Storage(err)
	}
	return borrows, nil
}

func (r *borrowRepository) ListByUser(ctx context.Context, userID uint) ([]model.Borrow, error) {
	var borrows []model.Borrow
	err := r.database.WithContext(ctx).Preload("Book").Preload("User").
		Where("user_id = ?", userID).Order("id").Find(&borrows).Error
	if err != nil {
		return nil, domain.Storage(err)
	}
	return borrows, nil
}

func (r *borrowRepository) ListReturnedByUser(ctx context.Context, userID uint) ([]model.Borrow, error) {
	var borrows []model.Borrow
	err := r.database.WithContext(ctx).Preload("Book").Preload("User").
		Where("user_id = ? AND status = ?", userID, model.StatusReturned).
		Order("id").Find(&borrows).Error
	if err != nil {
		return nil, domain.Storage(err)
	}
	return borrows, nil
}

// ListOverdue returns still-borrowed records whose due date is before asOf.
func (r *borrowRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]model.Borrow, error) {
	var borrows []model.Borrow
	err := r.database.WithContext(ctx).Preload("Book").Preload("User").
		Where("status = ? AND due_date < ?", model.StatusBorrowed, asOf).
		Order("due_date").Find(&borrows).Error
	if err != nil {
		return nil, domain.Storage(err)
	}
	return borrows, nil
}

// DeleteByBookIDs removes all records for the given books; used by the
// explicit cascade when a book or category is deleted.
func (r *borrowRepository) DeleteByBookIDs(ctx context.Context, bookIDs []uint) error {
	if len(bookIDs) == 0 {
		return nil
	}
	err := r.database.WithContext(ctx).
		Where("book_id IN ?", bookIDs).Delete(&model.Borrow{}).Error
	if err != nil {
		return domain.Storage(err)
	}
	return nil
}
