package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/comment-votes/internal/database"
	"github.com/emilythestrangee/comment-votes/internal/models"
	"github.com/emilythestrangee/comment-votes/internal/votes"
)

type CommentHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewCommentHandler(db *gorm.DB, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{db: db, logger: logger.With("handler", "comments")}
}

// voteResponse is the body returned by every vote endpoint.
type voteResponse struct {
	Message    string `json:"message"`
	Action     string `json:"action"`
	Transition string `json:"transition"`
	ID         int    `json:"id"`
	votes.State
}

// GetComments returns all comments for a post. upvoted/downvoted reflect the
// caller when a token was sent.
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID, ok := paramID(c, "id", "post")
	if !ok {
		return
	}

	var post models.Post
	if err := h.db.WithContext(c.Request.Context()).First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	comments := []models.Comment{}
	err := h.db.WithContext(c.Request.Context()).
		Where("post_id = ?", postID).
		Preload("User").
		Order("created_at desc").
		Find(&comments).Error
	if err != nil {
		h.logger.Error("failed to fetch comments", "post_id", postID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	viewerID, _ := extractUserID(c)
	ids := make([]int, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
	}
	mine, err := database.ViewerVotes(c.Request.Context(), h.db, database.TargetComment, viewerID, ids)
	if err != nil {
		h.logger.Error("failed to fetch viewer votes", "post_id", postID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	for i := range comments {
		comments[i].State = votes.FromLedger(comments[i].Upvotes, comments[i].Downvotes, mine[comments[i].ID])
	}

	c.JSON(http.StatusOK, comments)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	postID, ok := paramID(c, "id", "post")
	if !ok {
		return
	}

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx := c.Request.Context()

	var post models.Post
	if err := h.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if input.ParentCommentID != nil {
		var parent models.Comment
		if err := h.db.WithContext(ctx).First(&parent, *input.ParentCommentID).Error; err != nil || parent.PostID != post.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent comment not found on this post"})
			return
		}
	}

	comment := models.Comment{
		Body:            input.Body,
		PostID:          post.ID,
		AuthorID:        authorID,
		ParentCommentID: input.ParentCommentID,
	}

	if err := h.db.WithContext(ctx).Create(&comment).Error; err != nil {
		h.logger.Error("failed to create comment", "post_id", post.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	if err := h.db.WithContext(ctx).Preload("User").First(&comment, comment.ID).Error; err != nil {
		h.logger.Warn("failed to reload comment", "comment_id", comment.ID, "error", err)
	}
	c.JSON(http.StatusCreated, comment)
}

// UpdateComment updates a comment (owner only)
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	commentID, ok := paramID(c, "commentId", "comment")
	if !ok {
		return
	}

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.UpdateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	var comment models.Comment
	if err := h.db.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.AuthorID != authorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own comments"})
		return
	}

	if err := h.db.WithContext(ctx).Model(&comment).Update("body", input.Body).Error; err != nil {
		h.logger.Error("failed to update comment", "comment_id", comment.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}
	if err := h.db.WithContext(ctx).Preload("User").First(&comment, comment.ID).Error; err != nil {
		h.logger.Warn("failed to reload comment", "comment_id", comment.ID, "error", err)
	}

	mine, err := database.ViewerVotes(ctx, h.db, database.TargetComment, authorID, []int{comment.ID})
	if err != nil {
		h.logger.Warn("failed to fetch viewer vote", "comment_id", comment.ID, "error", err)
	}
	comment.State = votes.FromLedger(comment.Upvotes, comment.Downvotes, mine[comment.ID])

	c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment and its votes (owner only)
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, ok := paramID(c, "commentId", "comment")
	if !ok {
		return
	}

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx := c.Request.Context()

	var comment models.Comment
	if err := h.db.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.AuthorID != authorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own comments"})
		return
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.DeleteVotes(tx, database.TargetComment, comment.ID); err != nil {
			return err
		}
		// Replies stay, detached from the deleted parent.
		if err := tx.Model(&models.Comment{}).Where("parent_comment_id = ?", comment.ID).Update("parent_comment_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		h.logger.Error("failed to delete comment", "comment_id", comment.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// UpvoteComment casts one vote per user. A repeat toggles it off and the opposite vote switches it.
func (h *CommentHandler) UpvoteComment(c *gin.Context) {
	h.vote(c, votes.Upvote)
}

// DownvoteComment casts one vote per user. A repeat toggles it off and the opposite vote switches it.
func (h *CommentHandler) DownvoteComment(c *gin.Context) {
	h.vote(c, votes.Downvote)
}

// VoteComment takes the action from the path: upvote, downvote, 1 or -1.
func (h *CommentHandler) VoteComment(c *gin.Context) {
	action, err := votes.ParseAction(c.Param("action"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote action must be upvote or downvote"})
		return
	}
	h.vote(c, action)
}

func (h *CommentHandler) vote(c *gin.Context, action votes.Action) {
	commentID, ok := paramID(c, "commentId", "comment")
	if !ok {
		return
	}

	voterID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	res, err := database.CastVote(c.Request.Context(), h.db, database.TargetComment, commentID, voterID, action)
	if errors.Is(err, database.ErrTargetNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to vote", "comment_id", commentID, "user_id", voterID, "action", action.String(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to vote"})
		return
	}

	h.logger.Debug("vote applied",
		"comment_id", commentID,
		"user_id", voterID,
		"action", action.String(),
		"transition", res.Transition.String(),
		"score", res.After.Score,
	)

	c.JSON(http.StatusOK, voteResponse{
		Message:    res.Transition.Message(),
		Action:     action.String(),
		Transition: res.Transition.String(),
		ID:         commentID,
		State:      res.After,
	})
}
