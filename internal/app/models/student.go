package models

import "time"

// Student defines the enrolled-person profile based on the 'students' table.
// A student is 1:1 with a user and is created together with it at registration.
type Student struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	UserID    int64     `json:"userId" db:"user_id" example:"5"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Relation (populated when needed)
	User *User `json:"user,omitempty"`
}
