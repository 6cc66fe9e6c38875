package votes

// Position is the viewer's vote direction.
type Position int

const (
	Neutral Position = iota
	Up
	Down
)

func (p Position) String() string {
	switch p {
	case Up:
		return "upvoted"
	case Down:
		return "downvoted"
	default:
		return "neutral"
	}
}

// VoteType returns the ledger value for the position, 0 for Neutral.
func (p Position) VoteType() int {
	switch p {
	case Up:
		return 1
	case Down:
		return -1
	default:
		return 0
	}
}

func (s State) Position() Position {
	switch {
	case s.Upvoted:
		return Up
	case s.Downvoted:
		return Down
	default:
		return Neutral
	}
}

// Transition names the edge Apply takes between positions.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionCast
	TransitionRetract
	TransitionFlip
)

func (t Transition) String() string {
	switch t {
	case TransitionCast:
		return "cast"
	case TransitionRetract:
		return "retract"
	case TransitionFlip:
		return "flip"
	default:
		return "none"
	}
}

// Message is the client-facing text for the transition.
func (t Transition) Message() string {
	switch t {
	case TransitionCast:
		return "Vote recorded"
	case TransitionRetract:
		return "Vote removed"
	case TransitionFlip:
		return "Vote updated"
	default:
		return "No change"
	}
}

// Classify reports which transition Apply(s, action) takes.
func Classify(s State, action Action) Transition {
	if !action.Valid() {
		return TransitionNone
	}
	from := s.Position()
	to := Apply(s, action).Position()
	switch {
	case from == to:
		return TransitionNone
	case from == Neutral:
		return TransitionCast
	case to == Neutral:
		return TransitionRetract
	default:
		return TransitionFlip
	}
}
