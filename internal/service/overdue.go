package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"libman/internal/log"
	"libman/internal/repository"
)

// OverdueScanner reports borrows whose due date has passed without a return
// request. It only reads and logs; the lifecycle is untouched.
type OverdueScanner struct {
	db *gorm.DB
}

func NewOverdueScanner(db *gorm.DB) *OverdueScanner {
	return &OverdueScanner{db: db}
}

// Scan logs every overdue borrow and returns how many were found.
func (s *OverdueScanner) Scan(ctx context.Context) (int, error) {
	logger := log.GetLogger(ctx)
	overdue, err := repository.NewBorrowRepo(s.db).ListOverdue(ctx, dateOnly(time.Now()))
	if err != nil {
		return 0, err
	}
	for _, borrow := range overdue {
		logger.WithFields(logrus.Fields{
			"borrow_id": borrow.ID,
			"book":      borrow.Book.Title,
			"user":      borrow.User.Email,
			"due_date":  borrow.DueDate.Format("2006-01-02"),
		}).Warn("borrow overdue")
	}
	logger.WithField("count", len(overdue)).Info("overdue scan finished")
	return len(overdue), nil
}
