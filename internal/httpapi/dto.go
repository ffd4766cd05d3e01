package httpapi

import (
	"time"

	"github.com/samber/lo"

	"libman/internal/model"
)

const dateLayout = "2006-01-02"

// BorrowView is the display shape of a borrow record, with book and user
// resolved to their display fields.
type BorrowView struct {
	BorrowID   uint    `json:"borrow_id"`
	Book       string  `json:"book"`
	User       string  `json:"user"`
	BorrowDate string  `json:"borrow_date"`
	DueDate    string  `json:"due_date"`
	ReturnDate *string `json:"return_date"`
	Status     string  `json:"status"`
}

func borrowView(b model.Borrow) BorrowView {
	return BorrowView{
		BorrowID:   b.ID,
		Book:       b.Book.Title,
		User:       b.User.Name,
		BorrowDate: b.BorrowDate.Format(dateLayout),
		DueDate:    b.DueDate.Format(dateLayout),
		ReturnDate: formatDatePtr(b.ReturnDate),
		Status:     string(b.Status),
	}
}

func borrowViews(borrows []model.Borrow) []BorrowView {
	return lo.Map(borrows, func(b model.Borrow, _ int) BorrowView {
		return borrowView(b)
	})
}

// ReturnView is the shape of return and approve-return responses.
type ReturnView struct {
	BorrowID   uint    `json:"borrow_id"`
	Book       string  `json:"book"`
	ReturnDate *string `json:"return_date"`
	Status     string  `json:"status"`
}

func returnView(b model.Borrow) ReturnView {
	return ReturnView{
		BorrowID:   b.ID,
		Book:       b.Book.Title,
		ReturnDate: formatDatePtr(b.ReturnDate),
		Status:     string(b.Status),
	}
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
