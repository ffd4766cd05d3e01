package model

import "time"

// Book is a catalog title. Quantity is the total number of owned copies,
// AvailableQuantity the copies not currently out on loan or pending return
// approval. Invariant: 0 <= AvailableQuantity <= Quantity.
type Book struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CategoryID        uint      `gorm:"index;not null" json:"category_id"`
	Title             string    `gorm:"not null" json:"title"`
	Author            string    `gorm:"not null" json:"author"`
	Year              int       `gorm:"not null" json:"year"`
	Quantity          int       `gorm:"not null" json:"quantity"`
	AvailableQuantity int       `gorm:"not null" json:"available_quantity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
	Borrows  []Borrow `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// BorrowedCount is the number of copies presently out on loan or awaiting
// return approval.
func (b Book) BorrowedCount() int {
	return b.Quantity - b.AvailableQuantity
}
