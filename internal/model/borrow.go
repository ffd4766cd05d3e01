package model

import "time"

// BorrowStatus is the lifecycle state of a borrow record.
// borrowed -> waiting_approve -> returned; returned is terminal.
type BorrowStatus string

const (
	StatusBorrowed       BorrowStatus = "borrowed"
	StatusWaitingApprove BorrowStatus = "waiting_approve"
	StatusReturned       BorrowStatus = "returned"
)

// Open reports whether the record still reserves a copy: availability is
// only restored when an admin approves the return.
func (s BorrowStatus) Open() bool { return s != StatusReturned }

// Borrow is one borrow transaction. ReturnDate is stamped when the holder
// requests the return and preserved through approval.
type Borrow struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	BookID     uint         `gorm:"index;not null" json:"book_id"`
	UserID     uint         `gorm:"index;not null" json:"user_id"`
	BorrowDate time.Time    `gorm:"type:date;not null" json:"borrow_date"`
	DueDate    time.Time    `gorm:"type:date;not null" json:"due_date"`
	ReturnDate *time.Time   `gorm:"type:date" json:"return_date,omitempty"`
	Status     BorrowStatus `gorm:"type:varchar(32);not null;default:borrowed" json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}
