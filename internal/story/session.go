package story

// State is the phase of a session's chapter.
type State string

const (
	StateIntroduction       State = "introduction"
	StateInProgress         State = "in_progress"
	StateAwaitingResolution State = "awaiting_resolution"
	StateCompleted          State = "completed"
	StateFailed             State = "failed"
)

// Terminal reports whether the state ends the chapter.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Awaiting marks which resolver the session is blocked on. The flags are
// mutually exclusive: a session awaits at most one kind of resolution.
type Awaiting string

const (
	AwaitingNone      Awaiting = ""
	AwaitingAnswer    Awaiting = "answer"
	AwaitingGift      Awaiting = "gift"
	AwaitingDeduction Awaiting = "deduction"
)

// Session is the mutable record of one user's progress through one chapter in
// one channel. It is owned by the registry and mutated only while the engine
// processes an inbound event for its channel.
type Session struct {
	ChannelID   string
	UserID      string
	CharacterID string
	ChapterID   string

	State    State
	Awaiting Awaiting
	Turns    int
	Active   bool

	// RewardIssued guards the terminal transition: the reward engine does not
	// deduplicate across calls, so the session does.
	RewardIssued bool

	QuizAttempts     int
	GiftAttempts     int
	DeductionGuesses int

	ServingIndex     int
	ServingSuccesses int

	History *History
}

func NewSession(channelID, userID, characterID, chapterID string, historySize int) *Session {
	return &Session{
		ChannelID:   channelID,
		UserID:      userID,
		CharacterID: characterID,
		ChapterID:   chapterID,
		State:       StateIntroduction,
		Active:      true,
		History:     NewHistory(historySize),
	}
}
