package story

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storymode/internal/reward"
)

// scriptedGenerator returns canned replies and records what it was asked.
type scriptedGenerator struct {
	reply string
	err   error
	calls []string
}

func (g *scriptedGenerator) Generate(_ context.Context, _ string, _ []string, userText string) (string, error) {
	g.calls = append(g.calls, userText)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func mysteryChapter() *Chapter {
	return &Chapter{
		ID:        "mystery-test",
		Character: "Vesper",
		Win:       WinMysteryDeduction,
		TurnLimit: 10,
		Mystery: &MysterySpec{
			Setting: "A theft during a private showing.",
			Suspects: []Suspect{
				{ID: "curator", Name: "The Curator", Description: "Insured the brush."},
				{ID: "restorer", Name: "The Restorer", Description: "Had the combination."},
			},
			Culprit:    "restorer",
			Solution:   "The restorer swapped the brush for a replica.",
			MaxGuesses: 2,
		},
		Rewards: reward.Spec{Count: 1, Weights: map[reward.Rarity]int{reward.RarityRare: 1}},
	}
}

func TestMysteryAnswersQuestionsThroughGenerator(t *testing.T) {
	gen := &scriptedGenerator{reply: "The courier left before the lights flickered."}
	sess := NewSession("chan-1", "user-1", "vesper", "mystery-test", 10)
	sess.State = StateInProgress

	out, err := mysteryResolver{gen: gen}.Advance(context.Background(), sess, mysteryChapter(), Input{Text: "Who left early?"})
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, out.State)
	assert.Equal(t, gen.reply, out.Reply)
	assert.Equal(t, []string{"Who left early?"}, gen.calls)
}

func TestMysteryGeneratorFailureSurfaces(t *testing.T) {
	gen := &scriptedGenerator{err: fmt.Errorf("upstream timeout")}
	sess := NewSession("chan-1", "user-1", "vesper", "mystery-test", 10)
	sess.State = StateInProgress

	_, err := mysteryResolver{gen: gen}.Advance(context.Background(), sess, mysteryChapter(), Input{Text: "hm?"})
	require.Error(t, err)
}

func TestMysteryForcedMovesToAccusationPhase(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "vesper", "mystery-test", 10)
	sess.State = StateInProgress

	out, err := mysteryResolver{}.Advance(context.Background(), sess, mysteryChapter(), Input{Forced: true})
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingResolution, out.State)
	assert.Equal(t, AwaitingDeduction, out.Awaiting)
	assert.Contains(t, out.Reply, "curator")
	assert.Contains(t, out.Reply, "restorer")
}

func TestMysteryUnknownSuspectDoesNotBurnAGuess(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "vesper", "mystery-test", 10)
	sess.State = StateInProgress

	out, err := mysteryResolver{}.Advance(context.Background(), sess, mysteryChapter(), Input{SuspectID: "butler"})
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, out.State)
	assert.Equal(t, 0, sess.DeductionGuesses)
}

func TestMysteryCorrectAccusationCompletes(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "vesper", "mystery-test", 10)
	sess.State = StateInProgress
	ch := mysteryChapter()

	out, err := mysteryResolver{}.Advance(context.Background(), sess, ch, Input{SuspectID: "restorer"})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, out.State)
	assert.Contains(t, out.Reply, "swapped the brush")
	require.NotNil(t, out.Reward)
}

func TestMysteryWrongGuessesExhaustTheBudget(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "vesper", "mystery-test", 10)
	sess.State = StateInProgress
	ch := mysteryChapter()

	out, err := mysteryResolver{}.Advance(context.Background(), sess, ch, Input{SuspectID: "curator"})
	require.NoError(t, err)
	// A wrong early accusation keeps the investigation open.
	assert.Equal(t, StateInProgress, out.State)
	assert.Equal(t, 1, sess.DeductionGuesses)
	assert.Contains(t, out.Reply, "1 guesses left")

	out, err = mysteryResolver{}.Advance(context.Background(), sess, ch, Input{SuspectID: "curator"})
	require.NoError(t, err)
	assert.Equal(t, StateFailed, out.State)
	assert.Nil(t, out.Reward)
	// The failure line names the culprit the same way the reveal does.
	assert.Contains(t, out.Reply, "The Restorer walks free")
}

func TestMysteryWrongGuessInAccusationPhaseStaysThere(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "vesper", "mystery-test", 10)
	sess.State = StateAwaitingResolution
	sess.Awaiting = AwaitingDeduction

	out, err := mysteryResolver{}.Advance(context.Background(), sess, mysteryChapter(), Input{SuspectID: "curator"})
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingResolution, out.State)
	assert.Equal(t, AwaitingDeduction, out.Awaiting)
}

func TestFormatSuspectList(t *testing.T) {
	list := FormatSuspectList(mysteryChapter().Mystery)
	assert.Contains(t, list, "curator — Insured the brush.")
	assert.Contains(t, list, "/accuse")
}
