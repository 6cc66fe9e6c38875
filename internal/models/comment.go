package models

import (
	"time"

	"github.com/emilythestrangee/comment-votes/internal/votes"
)

type Comment struct {
	ID              int    `gorm:"primaryKey" json:"id"`
	Body            string `gorm:"not null" json:"body"`
	AuthorID        int    `json:"author_id"`
	User            User   `gorm:"foreignKey:AuthorID" json:"user"`
	PostID          int    `gorm:"index" json:"post_id"`
	ParentCommentID *int   `json:"parent_comment_id,omitempty"`
	votes.State     `gorm:"embedded"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ApplyVote returns a copy of c with the tally moved by action. Only the
// vote state differs from c.
func (c Comment) ApplyVote(action votes.Action) Comment {
	c.State = votes.Apply(c.State, action)
	return c
}

type CreateCommentRequest struct {
	Body            string `json:"body" binding:"required"`
	ParentCommentID *int   `json:"parent_comment_id,omitempty"`
}

type UpdateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}
