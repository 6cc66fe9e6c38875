package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/comment-votes/internal/models"
	"github.com/emilythestrangee/comment-votes/internal/votes"
)

type fixture struct {
	comment *models.Comment
	post    *models.Post
	alice   *models.User
	bob     *models.User
}

func setup(t *testing.T) (*fixture, func(userID int, a votes.Action) VoteResult) {
	t.Helper()
	db := NewTestDB(t)

	f := &fixture{
		alice: CreateTestUser(t, db, "alice"),
		bob:   CreateTestUser(t, db, "bob"),
	}
	f.post = CreateTestPost(t, db, f.alice.ID)
	f.comment = CreateTestComment(t, db, f.post.ID, f.alice.ID)

	cast := func(userID int, a votes.Action) VoteResult {
		t.Helper()
		res, err := CastVote(context.Background(), db, TargetComment, f.comment.ID, userID, a)
		require.NoError(t, err)

		var stored models.Comment
		require.NoError(t, db.First(&stored, f.comment.ID).Error)
		assert.Equal(t, res.After.Upvotes, stored.Upvotes)
		assert.Equal(t, res.After.Downvotes, stored.Downvotes)
		assert.Equal(t, res.After.Score, stored.Score)
		return res
	}
	return f, cast
}

func TestCastVote_FreshUpvote(t *testing.T) {
	f, cast := setup(t)

	res := cast(f.bob.ID, votes.Upvote)

	assert.Equal(t, votes.TransitionCast, res.Transition)
	assert.Equal(t, votes.State{Upvoted: true, Score: 1, Upvotes: 1}, res.After)
	assert.Equal(t, res.Optimistic, res.After)
}

func TestCastVote_ToggleOff(t *testing.T) {
	f, cast := setup(t)

	cast(f.bob.ID, votes.Upvote)
	res := cast(f.bob.ID, votes.Upvote)

	assert.Equal(t, votes.TransitionRetract, res.Transition)
	assert.Equal(t, votes.State{}, res.After)
}

func TestCastVote_Flip(t *testing.T) {
	f, cast := setup(t)

	cast(f.bob.ID, votes.Downvote)
	res := cast(f.bob.ID, votes.Upvote)

	assert.Equal(t, votes.TransitionFlip, res.Transition)
	assert.Equal(t, votes.State{Downvoted: true, Score: -1, Downvotes: 1}, res.Before)
	assert.Equal(t, votes.State{Upvoted: true, Score: 1, Upvotes: 1}, res.After)
}

func TestCastVote_FreshDownvoteReconcilesCounters(t *testing.T) {
	f, cast := setup(t)

	res := cast(f.bob.ID, votes.Downvote)

	// Apply leaves the counters alone on a fresh downvote; the ledger does not.
	assert.Equal(t, votes.State{Downvoted: true, Score: -1}, res.Optimistic)
	assert.Equal(t, votes.State{Downvoted: true, Score: -1, Downvotes: 1}, res.After)
}

func TestCastVote_MultipleUsers(t *testing.T) {
	f, cast := setup(t)

	cast(f.alice.ID, votes.Upvote)
	res := cast(f.bob.ID, votes.Downvote)

	assert.Equal(t, votes.State{Downvoted: true, Score: 0, Upvotes: 1, Downvotes: 1}, res.After)
}

func TestCastVote_Post(t *testing.T) {
	db := NewTestDB(t)
	u := CreateTestUser(t, db, "carol")
	p := CreateTestPost(t, db, u.ID)

	res, err := CastVote(context.Background(), db, TargetPost, p.ID, u.ID, votes.Upvote)
	require.NoError(t, err)
	assert.Equal(t, 1, res.After.Score)

	var stored models.Post
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.Equal(t, 1, stored.Upvotes)
}

func TestCastVote_MissingTarget(t *testing.T) {
	db := NewTestDB(t)

	_, err := CastVote(context.Background(), db, TargetComment, 999, 1, votes.Upvote)
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestCastVote_UnknownAction(t *testing.T) {
	db := NewTestDB(t)

	_, err := CastVote(context.Background(), db, TargetComment, 1, 1, votes.Action(0))
	assert.ErrorIs(t, err, votes.ErrNoTransition)
}

func TestViewerVotes(t *testing.T) {
	db := NewTestDB(t)
	u := CreateTestUser(t, db, "dave")
	p := CreateTestPost(t, db, u.ID)
	c1 := CreateTestComment(t, db, p.ID, u.ID)
	c2 := CreateTestComment(t, db, p.ID, u.ID)
	c3 := CreateTestComment(t, db, p.ID, u.ID)
	ctx := context.Background()

	_, err := CastVote(ctx, db, TargetComment, c1.ID, u.ID, votes.Upvote)
	require.NoError(t, err)
	_, err = CastVote(ctx, db, TargetComment, c2.ID, u.ID, votes.Downvote)
	require.NoError(t, err)

	mine, err := ViewerVotes(ctx, db, TargetComment, u.ID, []int{c1.ID, c2.ID, c3.ID})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{c1.ID: 1, c2.ID: -1}, mine)

	anon, err := ViewerVotes(ctx, db, TargetComment, 0, []int{c1.ID})
	require.NoError(t, err)
	assert.Empty(t, anon)
}

func TestRecountTally(t *testing.T) {
	db := NewTestDB(t)
	u := CreateTestUser(t, db, "erin")
	p := CreateTestPost(t, db, u.ID)
	c := CreateTestComment(t, db, p.ID, u.ID)
	id := c.ID
	require.NoError(t, db.Create(&models.Vote{UserID: u.ID, CommentID: &id, VoteType: -1}).Error)

	state, err := RecountTally(context.Background(), db, TargetComment, c.ID)
	require.NoError(t, err)
	assert.Equal(t, votes.State{Score: -1, Downvotes: 1}, state)

	var stored models.Comment
	require.NoError(t, db.First(&stored, c.ID).Error)
	assert.Equal(t, -1, stored.Score)
}

func TestRecountAll(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	u := CreateTestUser(t, db, "gina")
	p := CreateTestPost(t, db, u.ID)
	c1 := CreateTestComment(t, db, p.ID, u.ID)
	c2 := CreateTestComment(t, db, p.ID, u.ID)
	id := c2.ID
	require.NoError(t, db.Create(&models.Vote{UserID: u.ID, CommentID: &id, VoteType: 1}).Error)
	require.NoError(t, db.Model(&models.Comment{}).Where("id = ?", c1.ID).UpdateColumn("upvotes", 7).Error)

	n, err := RecountAll(ctx, db, TargetComment)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var stored []models.Comment
	require.NoError(t, db.Order("id").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, 0, stored[0].Upvotes)
	assert.Equal(t, 1, stored[1].Upvotes)
	assert.Equal(t, 1, stored[1].Score)
}

func TestIsUniqueViolation(t *testing.T) {
	db := NewTestDB(t)
	u := CreateTestUser(t, db, "frank")

	err := db.Create(&models.User{Username: u.Username}).Error
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(nil))
}
