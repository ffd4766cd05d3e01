package service_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"libman/internal/config"
	"libman/internal/model"
	"libman/internal/repository"
)

var testDBSeq int64

// newTestDB opens a fresh in-memory database per test. The shared cache
// keeps every pooled connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := repository.NewDB(config.DatabaseConfig{Driver: "sqlite", Path: dsn})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) model.User {
	t.Helper()
	user := model.User{Name: name, Email: email, Password: "x", Role: model.RoleBorrower}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCategory(t *testing.T, db *gorm.DB, name string) model.Category {
	t.Helper()
	category := model.Category{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func seedBook(t *testing.T, db *gorm.DB, categoryID uint, title string, quantity int) model.Book {
	t.Helper()
	book := model.Book{
		CategoryID:        categoryID,
		Title:             title,
		Author:            "Author",
		Year:              2020,
		Quantity:          quantity,
		AvailableQuantity: quantity,
	}
	require.NoError(t, db.Create(&book).Error)
	return book
}

func getBook(t *testing.T, db *gorm.DB, id uint) model.Book {
	t.Helper()
	book, err := repository.NewBookRepo(db).GetByID(context.Background(), id)
	require.NoError(t, err)
	return book
}

func dueTomorrow() time.Time {
	return time.Now().Add(24 * time.Hour)
}
