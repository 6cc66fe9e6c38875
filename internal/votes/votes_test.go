package votes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Upvote(t *testing.T) {
	tests := []struct {
		name string
		in   State
		want State
	}{
		{
			name: "fresh",
			in:   State{},
			want: State{Upvoted: true, Score: 1, Upvotes: 1},
		},
		{
			name: "toggle off",
			in:   State{Upvoted: true, Score: 3, Upvotes: 5, Downvotes: 2},
			want: State{Score: 2, Upvotes: 4, Downvotes: 2},
		},
		{
			name: "flip from downvote",
			in:   State{Downvoted: true, Score: -1, Downvotes: 1},
			want: State{Upvoted: true, Score: 1, Upvotes: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.in, Upvote))
		})
	}
}

func TestApply_Downvote(t *testing.T) {
	tests := []struct {
		name string
		in   State
		want State
	}{
		{
			name: "fresh moves score only",
			in:   State{Score: 4, Upvotes: 4},
			want: State{Downvoted: true, Score: 3, Upvotes: 4},
		},
		{
			name: "toggle off moves score only",
			in:   State{Downvoted: true, Score: 3, Upvotes: 4, Downvotes: 1},
			want: State{Score: 4, Upvotes: 4, Downvotes: 1},
		},
		{
			name: "flip from upvote",
			in:   State{Upvoted: true, Score: 1, Upvotes: 1},
			want: State{Downvoted: true, Score: -1, Downvotes: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.in, Downvote))
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := State{Downvoted: true, Score: -1, Downvotes: 1}
	before := in

	_ = Apply(in, Upvote)

	assert.Equal(t, before, in)
}

func TestApply_UpvoteTwiceIsIdentity(t *testing.T) {
	start := State{Score: 7, Upvotes: 9, Downvotes: 2}

	got := Replay(start, Upvote, Upvote)

	assert.Equal(t, start, got)
}

func TestApply_UnknownActionIsNoop(t *testing.T) {
	in := State{Upvoted: true, Score: 2, Upvotes: 3, Downvotes: 1}

	for _, a := range []Action{0, Action(3), Action(-1)} {
		assert.Equal(t, in, Apply(in, a), "action %s", a)
	}
}

func TestApply_NeverBothDirections(t *testing.T) {
	// Walk every action sequence up to length 6 from neutral.
	var walk func(s State, depth int)
	walk = func(s State, depth int) {
		require.False(t, s.Upvoted && s.Downvoted, "reached %+v", s)
		if depth == 0 {
			return
		}
		walk(Apply(s, Upvote), depth-1)
		walk(Apply(s, Downvote), depth-1)
	}
	walk(State{}, 6)
}

func TestApply_UpvotePreservesScoreConsistency(t *testing.T) {
	starts := []State{
		FromLedger(0, 0, 0),
		FromLedger(3, 1, 1),
		FromLedger(2, 5, -1),
	}
	for _, s := range starts {
		got := Apply(s, Upvote)
		assert.Equal(t, got.Upvotes-got.Downvotes, got.Score)
		assert.GreaterOrEqual(t, got.Upvotes, 0)
		assert.GreaterOrEqual(t, got.Downvotes, 0)
	}
}

func TestApplyStrict(t *testing.T) {
	in := State{Score: 1, Upvotes: 1}

	got, err := ApplyStrict(in, Upvote)
	require.NoError(t, err)
	assert.True(t, got.Upvoted)

	got, err = ApplyStrict(in, Action(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoTransition))
	assert.Equal(t, in, got)
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{in: "upvote", want: Upvote},
		{in: " Downvote ", want: Downvote},
		{in: "1", want: Upvote},
		{in: "-1", want: Downvote},
		{in: "up", want: Upvote},
		{in: "sideways", wantErr: true},
		{in: "", wantErr: true},
		{in: "0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAction(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownAction)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActionFromVoteType(t *testing.T) {
	a, err := ActionFromVoteType(-1)
	require.NoError(t, err)
	assert.Equal(t, Downvote, a)
	assert.Equal(t, -1, a.VoteType())

	_, err = ActionFromVoteType(2)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestFromLedger(t *testing.T) {
	s := FromLedger(4, 6, -1)

	assert.Equal(t, State{Downvoted: true, Score: -2, Upvotes: 4, Downvotes: 6}, s)
	assert.Equal(t, Down, s.Position())
}
