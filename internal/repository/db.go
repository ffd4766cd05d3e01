package repository

import (
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"libman/internal/config"
	"libman/internal/domain"
	"libman/internal/model"
)

// NewDB opens the configured database. TranslateError is on so unique
// constraint violations surface as gorm.ErrDuplicatedKey on every driver.
func NewDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	default:
		dialector = mysql.Open(cfg.DSN())
	}

	dbLogger := gormlogger.New(
		stdlog.New(os.Stdout, "", stdlog.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Book{},
		&model.Borrow{},
	); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	return nil
}

// forUpdate adds a row lock to the query. SQLite has no FOR UPDATE syntax;
// its single-writer model already serializes the transaction.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// wrapErr translates gorm errors into the domain taxonomy. notFound and
// duplicate are the messages used for the respective kinds; a duplicate
// message of "" means unique violations are not expected and stay storage
// failures.
func wrapErr(err error, notFound, duplicate string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.E(domain.KindNotFound, "%s", notFound)
	case duplicate != "" && errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.E(domain.KindConflict, "%s", duplicate)
	default:
		return domain.Storage(err)
	}
}
