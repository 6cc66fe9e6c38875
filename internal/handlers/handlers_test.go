package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emilythestrangee/comment-votes/internal/auth"
	"github.com/emilythestrangee/comment-votes/internal/database"
	"github.com/emilythestrangee/comment-votes/internal/logging"
	"github.com/emilythestrangee/comment-votes/internal/middleware"
	"github.com/emilythestrangee/comment-votes/internal/models"
)

var testSecret = []byte("handlers-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	logs   *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := database.NewTestDB(t)
	logs := new(bytes.Buffer)
	h := NewHandler(db, logging.New(logs, "warn", "text"))

	r := gin.New()
	public := r.Group("/api", middleware.OptionalAuth(testSecret))
	public.GET("/posts", h.Post.GetPosts)
	public.GET("/posts/:id", h.Post.GetPost)
	public.GET("/posts/:id/comments", h.Comment.GetComments)

	protected := r.Group("/api", middleware.AuthMiddleware(testSecret))
	protected.POST("/posts", h.Post.CreatePost)
	protected.DELETE("/posts/:id", h.Post.DeletePost)
	protected.POST("/posts/:id/vote", h.Post.VotePost)
	protected.POST("/posts/:id/comments", h.Comment.CreateComment)
	protected.PUT("/comments/:commentId", h.Comment.UpdateComment)
	protected.DELETE("/comments/:commentId", h.Comment.DeleteComment)
	protected.POST("/comments/:commentId/upvote", h.Comment.UpvoteComment)
	protected.POST("/comments/:commentId/downvote", h.Comment.DownvoteComment)
	protected.POST("/comments/:commentId/vote/:action", h.Comment.VoteComment)

	return &testEnv{t: t, db: db, router: r, logs: logs}
}

func (e *testEnv) do(method, path string, userID int, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		tok, err := auth.IssueToken(testSecret, auth.Identity{UserID: userID}, time.Hour)
		require.NoError(e.t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// failUserLoads makes every later query against the users table fail.
func (e *testEnv) failUserLoads() {
	e.t.Helper()
	err := e.db.Callback().Query().Before("gorm:query").Register("test:fail_users", func(tx *gorm.DB) {
		if tx.Statement.Table == "users" {
			_ = tx.AddError(errors.New("users unavailable"))
		}
	})
	require.NoError(e.t, err)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type voteBody struct {
	Message    string `json:"message"`
	Action     string `json:"action"`
	Transition string `json:"transition"`
	ID         int    `json:"id"`
	Upvoted    bool   `json:"upvoted"`
	Downvoted  bool   `json:"downvoted"`
	Score      int    `json:"score"`
	Upvotes    int    `json:"upvotes"`
	Downvotes  int    `json:"downvotes"`
}

func commentPath(id int, suffix string) string {
	return fmt.Sprintf("/api/comments/%d%s", id, suffix)
}

func seed(t *testing.T, db *gorm.DB) (*models.User, *models.User, *models.Post, *models.Comment) {
	t.Helper()
	alice := database.CreateTestUser(t, db, "alice")
	bob := database.CreateTestUser(t, db, "bob")
	post := database.CreateTestPost(t, db, alice.ID)
	comment := database.CreateTestComment(t, db, post.ID, alice.ID)
	return alice, bob, post, comment
}
