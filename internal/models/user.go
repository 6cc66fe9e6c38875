package models

import "time"

// User is the author or voter behind a comment. Credentials live outside
// this service; the ID is what signed tokens carry.
type User struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
