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

type PostHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewPostHandler(db *gorm.DB, logger *slog.Logger) *PostHandler {
	return &PostHandler{db: db, logger: logger.With("handler", "posts")}
}

func (h *PostHandler) GetPosts(c *gin.Context) {
	ctx := c.Request.Context()

	posts := []models.Post{}
	if err := h.db.WithContext(ctx).Preload("User").Order("created_at desc").Find(&posts).Error; err != nil {
		h.logger.Error("failed to fetch posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	viewerID, _ := extractUserID(c)
	ids := make([]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	mine, err := database.ViewerVotes(ctx, h.db, database.TargetPost, viewerID, ids)
	if err != nil {
		h.logger.Error("failed to fetch viewer votes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	for i := range posts {
		posts[i].State = votes.FromLedger(posts[i].Upvotes, posts[i].Downvotes, mine[posts[i].ID])
	}

	c.JSON(http.StatusOK, posts)
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := paramID(c, "id", "post")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var post models.Post
	if err := h.db.WithContext(ctx).Preload("User").First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	viewerID, _ := extractUserID(c)
	mine, err := database.ViewerVotes(ctx, h.db, database.TargetPost, viewerID, []int{post.ID})
	if err != nil {
		h.logger.Warn("failed to fetch viewer vote", "post_id", post.ID, "error", err)
	}
	post.State = votes.FromLedger(post.Upvotes, post.Downvotes, mine[post.ID])

	c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	post := models.Post{
		Title:    input.Title,
		Body:     input.Body,
		AuthorID: authorID,
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&post).Error; err != nil {
		h.logger.Error("failed to create post", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	// Reload with user information
	if err := h.db.WithContext(ctx).Preload("User").First(&post, post.ID).Error; err != nil {
		h.logger.Warn("failed to reload post", "post_id", post.ID, "error", err)
	}

	c.JSON(http.StatusCreated, post)
}

// DeletePost deletes a post with its comments and every vote on them
// (PROTECTED - requires ownership)
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := paramID(c, "id", "post")
	if !ok {
		return
	}

	currentUserID, ok := extractUserID(c)
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

	if post.AuthorID != currentUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own posts"})
		return
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []int
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", post.ID).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.Vote{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := database.DeleteVotes(tx, database.TargetPost, post.ID); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		h.logger.Error("failed to delete post", "post_id", post.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// VotePost handles upvoting/downvoting a post (PROTECTED - requires authentication)
func (h *PostHandler) VotePost(c *gin.Context) {
	postID, ok := paramID(c, "id", "post")
	if !ok {
		return
	}

	voterID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		VoteType int `json:"vote_type" binding:"required,oneof=-1 1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote type must be -1 or 1"})
		return
	}

	action, err := votes.ActionFromVoteType(input.VoteType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote type must be -1 or 1"})
		return
	}

	res, err := database.CastVote(c.Request.Context(), h.db, database.TargetPost, postID, voterID, action)
	if errors.Is(err, database.ErrTargetNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to vote", "post_id", postID, "user_id", voterID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to vote"})
		return
	}

	c.JSON(http.StatusOK, voteResponse{
		Message:    res.Transition.Message(),
		Action:     action.String(),
		Transition: res.Transition.String(),
		ID:         postID,
		State:      res.After,
	})
}
