package models

import (
	"time"

	"github.com/emilythestrangee/comment-votes/internal/votes"
)

type Post struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Body        string `json:"body"`
	AuthorID    int    `json:"author_id"`
	User        User   `gorm:"foreignKey:AuthorID" json:"user"`
	votes.State `gorm:"embedded"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreatePostRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}
