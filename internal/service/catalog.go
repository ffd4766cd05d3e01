package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"libman/internal/cache"
	"libman/internal/domain"
	"libman/internal/log"
	"libman/internal/model"
	"libman/internal/repository"
)

// CatalogService manages books and categories. Listings go through the
// optional redis cache; every write invalidates it.
type CatalogService struct {
	db    *gorm.DB
	cache *cache.BookCache
}

func NewCatalogService(db *gorm.DB, bookCache *cache.BookCache) *CatalogService {
	return &CatalogService{db: db, cache: bookCache}
}

// BookInput carries the fields for a new catalog title.
type BookInput struct {
	CategoryID uint
	Title      string
	Author     string
	Year       int
	Quantity   int
}

// BookUpdate is a partial update; nil fields are left unchanged.
type BookUpdate struct {
	CategoryID *uint
	Title      *string
	Author     *string
	Year       *int
	Quantity   *int
}

// CreateBook adds a title with every copy available.
func (s *CatalogService) CreateBook(ctx context.Context, in BookInput) (model.Book, error) {
	if in.Quantity < 0 {
		return model.Book{}, domain.E(domain.KindInvalidQuantity, "quantity cannot be negative")
	}
	var book model.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repository.NewCategoryRepo(tx).GetByID(ctx, in.CategoryID); err != nil {
			return err
		}
		book = model.Book{
			CategoryID:        in.CategoryID,
			Title:             in.Title,
			Author:            in.Author,
			Year:              in.Year,
			Quantity:          in.Quantity,
			AvailableQuantity: in.Quantity,
		}
		return repository.NewBookRepo(tx).Create(ctx, &book)
	})
	if err != nil {
		return model.Book{}, err
	}
	s.cache.Invalidate(ctx)
	return book, nil
}

// UpdateBook applies a partial update. A quantity change recomputes the
// available counter against the copies currently on loan and refuses to
// shrink the total below that count.
func (s *CatalogService) UpdateBook(ctx context.Context, id uint, upd BookUpdate) (model.Book, error) {
	var book model.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := repository.NewBookRepo(tx)
		var err error
		book, err = books.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if upd.CategoryID != nil {
			if _, err := repository.NewCategoryRepo(tx).GetByID(ctx, *upd.CategoryID); err != nil {
				return err
			}
			book.CategoryID = *upd.CategoryID
		}
		if upd.Title != nil {
			book.Title = *upd.Title
		}
		if upd.Author != nil {
			book.Author = *upd.Author
		}
		if upd.Year != nil {
			book.Year = *upd.Year
		}
		if upd.Quantity != nil {
			borrowed := book.BorrowedCount()
			if *upd.Quantity < borrowed {
				return domain.E(domain.KindInvalidQuantity,
					"cannot set quantity lower than borrowed count (%d)", borrowed)
			}
			book.Quantity = *upd.Quantity
			book.AvailableQuantity = *upd.Quantity - borrowed
		}
		return books.Save(ctx, &book)
	})
	if err != nil {
		return model.Book{}, err
	}
	s.cache.Invalidate(ctx)
	return book, nil
}

// AdjustBookQuantity changes only the total copy count, keeping the
// borrowed count intact.
func (s *CatalogService) AdjustBookQuantity(ctx context.Context, id uint, quantity int) (model.Book, error) {
	return s.UpdateBook(ctx, id, BookUpdate{Quantity: &quantity})
}

func (s *CatalogService) GetBook(ctx context.Context, id uint) (model.Book, error) {
	return repository.NewBookRepo(s.db).GetByID(ctx, id)
}

func (s *CatalogService) ListBooks(ctx context.Context) ([]model.Book, error) {
	if books, ok := s.cache.Get(ctx, "all"); ok {
		return books, nil
	}
	books, err := repository.NewBookRepo(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, "all", books)
	return books, nil
}

// SearchBooks filters by title and category name substrings.
func (s *CatalogService) SearchBooks(ctx context.Context, title, category string) ([]model.Book, error) {
	key := fmt.Sprintf("search:%s:%s", title, category)
	if books, ok := s.cache.Get(ctx, key); ok {
		return books, nil
	}
	books, err := repository.NewBookRepo(s.db).Search(ctx, title, category)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, books)
	return books, nil
}

// DeleteBook removes a title and, cascading, its borrow records.
func (s *CatalogService) DeleteBook(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := repository.NewBookRepo(tx)
		if _, err := books.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if err := repository.NewBorrowRepo(tx).DeleteByBookIDs(ctx, []uint{id}); err != nil {
			return err
		}
		return books.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	log.GetLogger(ctx).WithField("book_id", id).Info("book deleted")
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	category := model.Category{Name: name}
	if err := repository.NewCategoryRepo(s.db).Create(ctx, &category); err != nil {
		return model.Category{}, err
	}
	s.cache.Invalidate(ctx)
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, name string) (model.Category, error) {
	var category model.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := repository.NewCategoryRepo(tx)
		var err error
		category, err = categories.GetByID(ctx, id)
		if err != nil {
			return err
		}
		category.Name = name
		return categories.Save(ctx, &category)
	})
	if err != nil {
		return model.Category{}, err
	}
	s.cache.Invalidate(ctx)
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return repository.NewCategoryRepo(s.db).List(ctx)
}

// DeleteCategory removes a category with its books and their borrow
// records, all in one transaction.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := repository.NewCategoryRepo(tx)
		books := repository.NewBookRepo(tx)
		if _, err := categories.GetByID(ctx, id); err != nil {
			return err
		}
		bookIDs, err := books.ListIDsByCategory(ctx, id)
		if err != nil {
			return err
		}
		if err := repository.NewBorrowRepo(tx).DeleteByBookIDs(ctx, bookIDs); err != nil {
			return err
		}
		if err := books.DeleteByCategory(ctx, id); err != nil {
			return err
		}
		return categories.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	log.GetLogger(ctx).WithField("category_id", id).Info("category deleted")
	return nil
}
