// Package votes holds the comment vote tally: the per-viewer vote state and
// the transition applied when a viewer upvotes or downvotes.
package votes

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownAction = errors.New("unknown vote action")
	ErrNoTransition  = errors.New("no matching vote transition")
)

// State is one viewer's view of a votable item.
type State struct {
	Upvoted   bool `gorm:"-" json:"upvoted"`
	Downvoted bool `gorm:"-" json:"downvoted"`
	Score     int  `gorm:"default:0" json:"score"`
	Upvotes   int  `gorm:"default:0" json:"upvotes"`
	Downvotes int  `gorm:"default:0" json:"downvotes"`
}

// Action is a requested vote. The zero value is not a valid action.
type Action int

const (
	Upvote Action = iota + 1
	Downvote
)

func (a Action) String() string {
	switch a {
	case Upvote:
		return "upvote"
	case Downvote:
		return "downvote"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

func (a Action) Valid() bool {
	return a == Upvote || a == Downvote
}

// VoteType returns the ledger value for the action: 1 or -1.
func (a Action) VoteType() int {
	switch a {
	case Upvote:
		return 1
	case Downvote:
		return -1
	default:
		return 0
	}
}

// ParseAction accepts "upvote", "downvote", "1" and "-1".
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "upvote", "up", "1":
		return Upvote, nil
	case "downvote", "down", "-1":
		return Downvote, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// ActionFromVoteType maps a ledger value back to an action.
func ActionFromVoteType(v int) (Action, error) {
	switch v {
	case 1:
		return Upvote, nil
	case -1:
		return Downvote, nil
	default:
		return 0, fmt.Errorf("%w: vote type %d", ErrUnknownAction, v)
	}
}

// Apply returns the state after action. An action outside the enum returns s
// unchanged.
//
// Downvote toggle-off and fresh downvote only move Score; the counters are
// left alone. Callers that need exact counters rebuild them with FromLedger.
func Apply(s State, action Action) State {
	switch action {
	case Upvote:
		switch {
		case s.Upvoted:
			s.Upvoted = false
			s.Score--
			s.Upvotes--
		case !s.Downvoted:
			s.Upvoted = true
			s.Score++
			s.Upvotes++
		default:
			s.Upvoted = true
			s.Downvoted = false
			s.Score += 2
			s.Upvotes++
			s.Downvotes--
		}
	case Downvote:
		switch {
		case s.Downvoted:
			s.Downvoted = false
			s.Score++
		case !s.Upvoted:
			s.Downvoted = true
			s.Score--
		default:
			s.Downvoted = true
			s.Upvoted = false
			s.Score -= 2
			s.Upvotes--
			s.Downvotes++
		}
	}
	return s
}

// ApplyStrict is Apply with an error for actions outside the enum.
func ApplyStrict(s State, action Action) (State, error) {
	if !action.Valid() {
		return s, fmt.Errorf("%w: %s", ErrNoTransition, action)
	}
	return Apply(s, action), nil
}

// Replay folds actions over initial in order.
func Replay(initial State, actions ...Action) State {
	s := initial
	for _, a := range actions {
		s = Apply(s, a)
	}
	return s
}

// FromLedger builds the authoritative state from ledger counts and the
// viewer's own ledger value (1, -1, or 0 for none).
func FromLedger(up, down, mine int) State {
	return State{
		Upvoted:   mine == 1,
		Downvoted: mine == -1,
		Score:     up - down,
		Upvotes:   up,
		Downvotes: down,
	}
}
