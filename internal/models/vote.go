package models

import "time"

// Vote is a ledger row: one user's vote on one post or comment. Exactly one
// of PostID and CommentID is set.
type Vote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_votes_user_post;uniqueIndex:idx_votes_user_comment" json:"user_id"`
	PostID    *int      `gorm:"uniqueIndex:idx_votes_user_post" json:"post_id,omitempty"`
	CommentID *int      `gorm:"uniqueIndex:idx_votes_user_comment" json:"comment_id,omitempty"`
	VoteType  int       `gorm:"not null" json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
