package models

import "time"

// User defines the account model based on the 'users' table.
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Username  string    `json:"username" db:"username" example:"jdoe"`
	Email     string    `json:"email" db:"email" example:"jdoe@example.com"`
	Password  string    `json:"-" db:"password"` // bcrypt hash, excluded from JSON
	IsStaff   bool      `json:"isStaff" db:"is_staff" example:"false"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
