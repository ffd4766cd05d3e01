package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"libman/internal/domain"
	"libman/internal/log"
	"libman/internal/model"
	"libman/internal/repository"
)

// BorrowService drives the borrow lifecycle:
//
//	borrowed -> waiting_approve -> returned
//
// Each command runs in one transaction with the book row locked before any
// availability check, so the ledger adjustment and the record mutation land
// or roll back together.
type BorrowService struct {
	db *gorm.DB
}

func NewBorrowService(db *gorm.DB) *BorrowService {
	return &BorrowService{db: db}
}

// ReturnResult reports a lifecycle command's outcome. Changed is false for
// the idempotent retries (return already requested, already approved).
type ReturnResult struct {
	Borrow  model.Borrow
	Changed bool
}

// Borrow checks the title out to the user. It fails with Conflict when the
// user already holds a non-returned record for the book and OutOfStock when
// no copies are available.
func (s *BorrowService) Borrow(ctx context.Context, userID, bookID uint, dueDate time.Time) (model.Borrow, error) {
	today := dateOnly(time.Now())
	due := dateOnly(dueDate)
	if due.Before(today) {
		return model.Borrow{}, domain.E(domain.KindInvalidInput, "due date cannot be in the past")
	}

	var created model.Borrow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := repository.NewBookRepo(tx)
		borrows := repository.NewBorrowRepo(tx)

		// The row lock serializes concurrent borrows of the same title and
		// makes the open-record check safe against duplicates.
		if _, err := books.GetForUpdate(ctx, bookID); err != nil {
			return err
		}
		open, err := borrows.FindOpen(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if open != nil {
			return domain.E(domain.KindConflict, "you have already borrowed this book and not returned it yet")
		}
		if err := books.DecrementAvailable(ctx, bookID); err != nil {
			return err
		}
		created = model.Borrow{
			BookID:     bookID,
			UserID:     userID,
			BorrowDate: today,
			DueDate:    due,
			Status:     model.StatusBorrowed,
		}
		return borrows.Create(ctx, &created)
	})
	if err != nil {
		return model.Borrow{}, err
	}

	log.GetLogger(ctx).WithField("borrow_id", created.ID).WithField("book_id", bookID).Info("borrow created")
	return repository.NewBorrowRepo(s.db).FindByID(ctx, created.ID)
}

// RequestReturn moves the holder's record to waiting_approve and stamps the
// return date. Availability is not restored until an admin approves, so the
// copy stays reserved. Retries are no-ops.
func (s *BorrowService) RequestReturn(ctx context.Context, userID, borrowID uint) (ReturnResult, error) {
	var result ReturnResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		borrows := repository.NewBorrowRepo(tx)
		borrow, err := borrows.FindOwned(ctx, userID, borrowID)
		if err != nil {
			return err
		}
		if borrow.Status != model.StatusBorrowed {
			result = ReturnResult{Borrow: borrow}
			return nil
		}
		today := dateOnly(time.Now())
		borrow.ReturnDate = &today
		borrow.Status = model.StatusWaitingApprove
		if err := borrows.Save(ctx, &borrow); err != nil {
			return err
		}
		result = ReturnResult{Borrow: borrow, Changed: true}
		return nil
	})
	if err != nil {
		return ReturnResult{}, err
	}
	if result.Changed {
		log.GetLogger(ctx).WithField("borrow_id", borrowID).Info("return requested")
	}
	return result, nil
}

// ApproveReturn finalizes a pending return: availability is restored and
// the record becomes terminal. The return date stamped at request time is
// preserved. Approving an already returned record is a no-op; a record not
// awaiting approval is reported as not found, matching the lookup contract.
func (s *BorrowService) ApproveReturn(ctx context.Context, borrowID uint) (ReturnResult, error) {
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		borrows := repository.NewBorrowRepo(tx)

		// The status check must run under the record lock: read from a
		// stale snapshot, two concurrent approvals would both see
		// waiting_approve and restore the same copy twice.
		borrow, err := borrows.FindByIDForUpdate(ctx, borrowID)
		if err != nil {
			return err
		}
		switch borrow.Status {
		case model.StatusReturned:
			return nil
		case model.StatusBorrowed:
			return domain.E(domain.KindNotFound, "borrow not found")
		}
		if err := repository.NewBookRepo(tx).IncrementAvailable(ctx, borrow.BookID); err != nil {
			return err
		}
		borrow.Status = model.StatusReturned
		if err := borrows.Save(ctx, &borrow); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return ReturnResult{}, err
	}
	if changed {
		log.GetLogger(ctx).WithField("borrow_id", borrowID).Info("return approved")
	}
	borrow, err := repository.NewBorrowRepo(s.db).FindByID(ctx, borrowID)
	if err != nil {
		return ReturnResult{}, err
	}
	return ReturnResult{Borrow: borrow, Changed: changed}, nil
}

// ListAll returns every borrow record across all users.
func (s *BorrowService) ListAll(ctx context.Context) ([]model.Borrow, error) {
	return repository.NewBorrowRepo(s.db).ListAll(ctx)
}

// History returns the user's returned borrows.
func (s *BorrowService) History(ctx context.Context, userID uint) ([]model.Borrow, error) {
	return repository.NewBorrowRepo(s.db).ListReturnedByUser(ctx, userID)
}

// Current returns all of the user's borrow records regardless of status.
func (s *BorrowService) Current(ctx context.Context, userID uint) ([]model.Borrow, error) {
	return repository.NewBorrowRepo(s.db).ListByUser(ctx, userID)
}

// dateOnly truncates a timestamp to its calendar date in UTC; borrow, due
// and return dates are stored as dates.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
