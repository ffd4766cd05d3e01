package repository_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"libman/internal/config"
	"libman/internal/domain"
	"libman/internal/model"
	"libman/internal/repository"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := repository.NewDB(config.DatabaseConfig{Driver: "sqlite", Path: dsn})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	return db
}

func seedBook(t *testing.T, db *gorm.DB, quantity, available int) model.Book {
	t.Helper()
	category := model.Category{Name: "Fiction"}
	require.NoError(t, db.Create(&category).Error)
	book := model.Book{
		CategoryID:        category.ID,
		Title:             "Dune",
		Author:            "Frank Herbert",
		Year:              1965,
		Quantity:          quantity,
		AvailableQuantity: available,
	}
	require.NoError(t, db.Create(&book).Error)
	return book
}

func TestIncrementAvailableCapsAtQuantity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	book := seedBook(t, db, 2, 1)
	books := repository.NewBookRepo(db)

	require.NoError(t, books.IncrementAvailable(ctx, book.ID))

	// Every copy is back on the shelf; another increment must refuse
	// rather than push the counter past the total.
	err := books.IncrementAvailable(ctx, book.ID)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	got, err := books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableQuantity)
}

func TestFindBorrowByIDForUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	book := seedBook(t, db, 1, 0)
	user := model.User{Name: "Alice", Email: "alice@example.com", Password: "x", Role: model.RoleBorrower}
	require.NoError(t, db.Create(&user).Error)
	record := model.Borrow{
		BookID:     book.ID,
		UserID:     user.ID,
		BorrowDate: time.Now(),
		DueDate:    time.Now().Add(72 * time.Hour),
		Status:     model.StatusWaitingApprove,
	}
	require.NoError(t, db.Create(&record).Error)

	borrows := repository.NewBorrowRepo(db)
	got, err := borrows.FindByIDForUpdate(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, model.StatusWaitingApprove, got.Status)

	_, err = borrows.FindByIDForUpdate(ctx, 999)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
