package model

import "time"

// Roles a user can hold. Admins manage the catalog and approve returns,
// borrowers only borrow and return.
const (
	RoleAdmin    = "admin"
	RoleBorrower = "borrower"
)

// User is an account that can authenticate and hold borrows.
// Password stores a bcrypt hash, never the plaintext.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"not null;default:borrower" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Borrows []Borrow `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
