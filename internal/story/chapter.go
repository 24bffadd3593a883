package story

import (
	"fmt"

	"storymode/internal/reward"
)

// WinCondition selects the resolver driving a chapter to its terminal state.
type WinCondition string

const (
	WinAffinityGoal     WinCondition = "affinity_goal"
	WinQuiz             WinCondition = "quiz"
	WinGiftResolution   WinCondition = "gift_resolution"
	WinServingGame      WinCondition = "serving_game"
	WinMysteryDeduction WinCondition = "mystery_deduction"
)

// Hint is a clue revealed when the session reaches the given turn.
type Hint struct {
	Turn int    `yaml:"turn"`
	Text string `yaml:"text"`
}

// Chapter is the static definition of one narrative unit for one character:
// its win condition, pacing, and reward table. Loaded once, immutable, shared
// read-only by every session playing it.
type Chapter struct {
	ID          string `yaml:"id"`
	CharacterID string `yaml:"character"`
	Character   string `yaml:"character_name"`
	Title       string `yaml:"title"`

	// Persona is the system-prompt voice the character speaks in.
	Persona string `yaml:"persona"`
	// Opening is sent when the chapter's channel is created; the user must
	// acknowledge it ("begin") before turns start accruing.
	Opening string `yaml:"opening"`
	// Farewell closes out a completed chapter.
	Farewell string `yaml:"farewell"`

	Win       WinCondition `yaml:"win_condition"`
	TurnLimit int          `yaml:"turn_limit"`
	Hints     []Hint       `yaml:"hints"`
	Rewards   reward.Spec  `yaml:"rewards"`

	Quiz     *QuizSpec     `yaml:"quiz,omitempty"`
	Gift     *GiftSpec     `yaml:"gift,omitempty"`
	Serving  *ServingSpec  `yaml:"serving,omitempty"`
	Mystery  *MysterySpec  `yaml:"mystery,omitempty"`
	Affinity *AffinitySpec `yaml:"affinity,omitempty"`
}

// QuizSpec is a single multiple-choice question with a bounded number of
// attempts.
type QuizSpec struct {
	Question    string   `yaml:"question"`
	Options     []string `yaml:"options"`
	Answer      int      `yaml:"answer"` // index into Options
	MaxAttempts int      `yaml:"max_attempts"`
}

// GiftSpec maps a gifted item's rarity to the reward band it earns. There is
// no wrong gift: any valid item completes the chapter at its band.
type GiftSpec struct {
	Prompt string                        `yaml:"prompt"`
	Bands  map[reward.Rarity]reward.Spec `yaml:"bands"`
}

// ServingCustomer is one order in the serving mini-game queue.
type ServingCustomer struct {
	Name        string   `yaml:"name"`
	Ingredients []string `yaml:"ingredients"`
}

// ServingSpec is the ordered customer queue and the success count required to
// complete the chapter once the queue is exhausted.
type ServingSpec struct {
	Customers     []ServingCustomer `yaml:"customers"`
	PassThreshold int               `yaml:"pass_threshold"`
}

// Suspect is one entry in a mystery chapter's accusation list.
type Suspect struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// MysterySpec is a whodunit: a budgeted number of questions, then an
// accusation with a bounded number of wrong guesses.
type MysterySpec struct {
	Setting    string    `yaml:"setting"`
	Suspects   []Suspect `yaml:"suspects"`
	Culprit    string    `yaml:"culprit"` // suspect id
	Solution   string    `yaml:"solution"`
	MaxGuesses int       `yaml:"max_guesses"`
}

// AffinitySpec completes the chapter once the user's affinity score with the
// character reaches the goal; the turn limit fails it otherwise.
type AffinitySpec struct {
	Goal int `yaml:"goal"`
}

// Validate checks the definition is playable. Called once at load time.
func (c *Chapter) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("chapter has no id")
	}
	if c.CharacterID == "" {
		return fmt.Errorf("chapter %s: no character", c.ID)
	}
	if c.TurnLimit <= 0 {
		return fmt.Errorf("chapter %s: turn_limit must be positive", c.ID)
	}
	for _, hint := range c.Hints {
		if hint.Turn <= 0 || hint.Turn >= c.TurnLimit {
			return fmt.Errorf("chapter %s: hint turn %d outside (0, %d)", c.ID, hint.Turn, c.TurnLimit)
		}
	}

	switch c.Win {
	case WinQuiz:
		if c.Quiz == nil {
			return fmt.Errorf("chapter %s: quiz win condition without quiz spec", c.ID)
		}
		if len(c.Quiz.Options) < 2 {
			return fmt.Errorf("chapter %s: quiz needs at least two options", c.ID)
		}
		if c.Quiz.Answer < 0 || c.Quiz.Answer >= len(c.Quiz.Options) {
			return fmt.Errorf("chapter %s: quiz answer index %d out of range", c.ID, c.Quiz.Answer)
		}
		if c.Quiz.MaxAttempts <= 0 {
			return fmt.Errorf("chapter %s: quiz max_attempts must be positive", c.ID)
		}
	case WinGiftResolution:
		if c.Gift == nil || len(c.Gift.Bands) == 0 {
			return fmt.Errorf("chapter %s: gift win condition without reward bands", c.ID)
		}
	case WinServingGame:
		if c.Serving == nil || len(c.Serving.Customers) == 0 {
			return fmt.Errorf("chapter %s: serving win condition without customers", c.ID)
		}
		if c.Serving.PassThreshold <= 0 || c.Serving.PassThreshold > len(c.Serving.Customers) {
			return fmt.Errorf("chapter %s: pass_threshold %d out of range", c.ID, c.Serving.PassThreshold)
		}
	case WinMysteryDeduction:
		if c.Mystery == nil || len(c.Mystery.Suspects) < 2 {
			return fmt.Errorf("chapter %s: mystery win condition needs at least two suspects", c.ID)
		}
		if c.Mystery.MaxGuesses <= 0 {
			return fmt.Errorf("chapter %s: mystery max_guesses must be positive", c.ID)
		}
		if _, ok := c.Mystery.SuspectByID(c.Mystery.Culprit); !ok {
			return fmt.Errorf("chapter %s: culprit %q not in suspect list", c.ID, c.Mystery.Culprit)
		}
	case WinAffinityGoal:
		if c.Affinity == nil || c.Affinity.Goal <= 0 {
			return fmt.Errorf("chapter %s: affinity win condition needs a positive goal", c.ID)
		}
	default:
		return fmt.Errorf("chapter %s: unknown win condition %q", c.ID, c.Win)
	}
	return nil
}

// SuspectByID resolves a suspect from the accusation list.
func (m *MysterySpec) SuspectByID(id string) (Suspect, bool) {
	for _, s := range m.Suspects {
		if s.ID == id {
			return s, true
		}
	}
	return Suspect{}, false
}
