package database

import (
	"io"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emilythestrangee/comment-votes/internal/logging"
	"github.com/emilythestrangee/comment-votes/internal/models"
)

// NewTestDB returns a migrated in-memory sqlite database private to t.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := Open(sqlite.Open("file::memory:"), logging.New(io.Discard, "error", "text"))
	require.NoError(t, err)

	// Every connection to :memory: is a fresh database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

// CreateTestUser is a helper that creates a user for testing.
func CreateTestUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username}
	require.NoError(t, db.Create(user).Error)
	require.NotZero(t, user.ID)
	return user
}

func CreateTestPost(t testing.TB, db *gorm.DB, authorID int) *models.Post {
	t.Helper()

	post := &models.Post{Title: "test post", Body: "body", AuthorID: authorID}
	require.NoError(t, db.Create(post).Error)
	return post
}

func CreateTestComment(t testing.TB, db *gorm.DB, postID, authorID int) *models.Comment {
	t.Helper()

	comment := &models.Comment{Body: "test comment", PostID: postID, AuthorID: authorID}
	require.NoError(t, db.Create(comment).Error)
	return comment
}
