package story

import (
	"context"
	"fmt"
	"strings"

	"storymode/internal/reward"
)

// Generator is the external text-generation collaborator. Retry and backoff
// are its own contract; the engine treats an error as transient and leaves
// session state untouched.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, history []string, userText string) (string, error)
}

// Input carries one inbound event into a resolver. Only the fields relevant
// to the chapter's win condition are populated.
type Input struct {
	Text        string
	Choice      int // quiz option index, -1 when absent
	GiftRarity  reward.Rarity
	SuspectID   string
	Ingredients []string
	Affinity    int // current affinity score, for affinity chapters
	// Forced is set when the turn limit pushed the chapter into its
	// resolution step.
	Forced bool
}

// Outcome is a resolver's pure decision: the next state, the flag it leaves
// behind, the reply to deliver, and the reward spec to draw from when the
// transition completes the chapter. The engine applies the side effects.
type Outcome struct {
	State    State
	Awaiting Awaiting
	Reply    string
	Reward   *reward.Spec
}

// resolver evaluates inbound events against a chapter's win condition. One
// implementation exists per win-condition type; the state machine picks it
// from the chapter definition, so no per-character control flow exists.
type resolver interface {
	Advance(ctx context.Context, sess *Session, ch *Chapter, in Input) (Outcome, error)
}

func resolverFor(ch *Chapter, gen Generator) (resolver, error) {
	switch ch.Win {
	case WinQuiz:
		return quizResolver{}, nil
	case WinGiftResolution:
		return giftResolver{}, nil
	case WinServingGame:
		return servingResolver{}, nil
	case WinMysteryDeduction:
		return mysteryResolver{gen: gen}, nil
	case WinAffinityGoal:
		return affinityResolver{}, nil
	default:
		return nil, fmt.Errorf("no resolver for win condition %q", ch.Win)
	}
}

// equalIngredientSets compares two ingredient lists as sets: order and
// duplicates are irrelevant, case and surrounding space are normalized away.
func equalIngredientSets(a, b []string) bool {
	return ingredientSet(a).equals(ingredientSet(b))
}

type stringSet map[string]bool

func ingredientSet(items []string) stringSet {
	set := make(stringSet, len(items))
	for _, item := range items {
		normalized := strings.ToLower(strings.TrimSpace(item))
		if normalized != "" {
			set[normalized] = true
		}
	}
	return set
}

func (s stringSet) equals(other stringSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other[k] {
			return false
		}
	}
	return true
}
