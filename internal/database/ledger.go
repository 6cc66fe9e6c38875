package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/comment-votes/internal/metrics"
	"github.com/emilythestrangee/comment-votes/internal/models"
	"github.com/emilythestrangee/comment-votes/internal/votes"
)

// Target is the kind of item a ledger row points at.
type Target int

const (
	TargetComment Target = iota + 1
	TargetPost
)

func (t Target) String() string {
	switch t {
	case TargetComment:
		return "comment"
	case TargetPost:
		return "post"
	default:
		return "unknown"
	}
}

func (t Target) column() string {
	if t == TargetPost {
		return "post_id"
	}
	return "comment_id"
}

func (t Target) model() interface{} {
	if t == TargetPost {
		return &models.Post{}
	}
	return &models.Comment{}
}

// ErrTargetNotFound is returned when the voted item does not exist.
var ErrTargetNotFound = errors.New("vote target not found")

// VoteResult describes one applied vote.
type VoteResult struct {
	Action     votes.Action
	Transition votes.Transition
	// Optimistic is what votes.Apply produced from Before.
	Optimistic votes.State
	Before     votes.State
	// After is rebuilt from the ledger once the write is done.
	After votes.State
}

// CastVote applies action for userID against the item and records the
// resulting direction in the ledger. The stored tallies on the item are
// recounted in the same transaction.
func CastVote(ctx context.Context, db *gorm.DB, target Target, targetID, userID int, action votes.Action) (VoteResult, error) {
	if !action.Valid() {
		return VoteResult{}, fmt.Errorf("%w: %s", votes.ErrNoTransition, action)
	}

	start := time.Now()
	defer func() {
		metrics.VoteApplyDuration.WithLabelValues(target.String()).Observe(time.Since(start).Seconds())
	}()

	res, err := castVoteTx(ctx, db, target, targetID, userID, action)
	if IsUniqueViolation(err) {
		// A concurrent first vote by the same user won the insert; the
		// retry sees its row.
		metrics.VoteConflictsTotal.WithLabelValues(target.String()).Inc()
		res, err = castVoteTx(ctx, db, target, targetID, userID, action)
	}
	if err != nil {
		return VoteResult{}, err
	}

	metrics.VoteTransitionsTotal.WithLabelValues(target.String(), action.String(), res.Transition.String()).Inc()
	return res, nil
}

func castVoteTx(ctx context.Context, db *gorm.DB, target Target, targetID, userID int, action votes.Action) (VoteResult, error) {
	var res VoteResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the item row so voters on the same item count the ledger one
		// at a time.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(target.model(), targetID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTargetNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", target, err)
		}

		var existing models.Vote
		hasVote := true
		err = tx.Where("user_id = ? AND "+target.column()+" = ?", userID, targetID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hasVote = false
		} else if err != nil {
			return fmt.Errorf("failed to load vote: %w", err)
		}

		up, down, err := countVotes(tx, target, targetID)
		if err != nil {
			return err
		}
		mine := 0
		if hasVote {
			mine = existing.VoteType
		}

		res.Action = action
		res.Before = votes.FromLedger(up, down, mine)
		res.Optimistic = votes.Apply(res.Before, action)
		res.Transition = votes.Classify(res.Before, action)

		next := res.Optimistic.Position()
		switch {
		case next == votes.Neutral && hasVote:
			if err := tx.Delete(&existing).Error; err != nil {
				return fmt.Errorf("failed to remove vote: %w", err)
			}
		case next != votes.Neutral && hasVote:
			existing.VoteType = next.VoteType()
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update vote: %w", err)
			}
		case next != votes.Neutral:
			vote := models.Vote{UserID: userID, VoteType: next.VoteType()}
			id := targetID
			if target == TargetPost {
				vote.PostID = &id
			} else {
				vote.CommentID = &id
			}
			if err := tx.Create(&vote).Error; err != nil {
				return fmt.Errorf("failed to record vote: %w", err)
			}
		}

		up, down, err = countVotes(tx, target, targetID)
		if err != nil {
			return err
		}
		res.After = votes.FromLedger(up, down, next.VoteType())

		return storeTally(tx, target, targetID, res.After)
	})
	return res, err
}

// RecountTally rebuilds the stored counters of one item from the ledger.
func RecountTally(ctx context.Context, db *gorm.DB, target Target, targetID int) (votes.State, error) {
	var state votes.State
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		up, down, err := countVotes(tx, target, targetID)
		if err != nil {
			return err
		}
		state = votes.FromLedger(up, down, 0)
		return storeTally(tx, target, targetID, state)
	})
	return state, err
}

// RecountAll rebuilds the stored counters of every item of target and
// returns how many items were visited.
func RecountAll(ctx context.Context, db *gorm.DB, target Target) (int, error) {
	var ids []int
	if err := db.WithContext(ctx).Model(target.model()).Order("id").Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to list %ss: %w", target, err)
	}
	for _, id := range ids {
		if _, err := RecountTally(ctx, db, target, id); err != nil {
			return 0, fmt.Errorf("recount %s %d: %w", target, id, err)
		}
	}
	return len(ids), nil
}

// ViewerVotes returns the viewer's ledger value for each of ids that they
// voted on.
func ViewerVotes(ctx context.Context, db *gorm.DB, target Target, userID int, ids []int) (map[int]int, error) {
	mine := make(map[int]int, len(ids))
	if userID == 0 || len(ids) == 0 {
		return mine, nil
	}

	var rows []models.Vote
	err := db.WithContext(ctx).
		Where("user_id = ? AND "+target.column()+" IN ?", userID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer votes: %w", err)
	}

	for _, v := range rows {
		switch {
		case target == TargetPost && v.PostID != nil:
			mine[*v.PostID] = v.VoteType
		case target == TargetComment && v.CommentID != nil:
			mine[*v.CommentID] = v.VoteType
		}
	}
	return mine, nil
}

// DeleteVotes drops every ledger row pointing at the item.
func DeleteVotes(tx *gorm.DB, target Target, targetID int) error {
	if err := tx.Where(target.column()+" = ?", targetID).Delete(&models.Vote{}).Error; err != nil {
		return fmt.Errorf("failed to delete votes: %w", err)
	}
	return nil
}

func countVotes(tx *gorm.DB, target Target, targetID int) (int, int, error) {
	var rows []struct {
		VoteType int
		N        int
	}
	err := tx.Model(&models.Vote{}).
		Select("vote_type, count(*) AS n").
		Where(target.column()+" = ?", targetID).
		Group("vote_type").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count votes: %w", err)
	}

	var up, down int
	for _, r := range rows {
		switch r.VoteType {
		case 1:
			up = r.N
		case -1:
			down = r.N
		}
	}
	return up, down, nil
}

func storeTally(tx *gorm.DB, target Target, targetID int, s votes.State) error {
	err := tx.Model(target.model()).
		Where("id = ?", targetID).
		UpdateColumns(map[string]interface{}{
			"upvotes":   s.Upvotes,
			"downvotes": s.Downvotes,
			"score":     s.Score,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to store %s tally: %w", target, err)
	}
	return nil
}
