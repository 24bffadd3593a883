package story

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storymode/internal/reward"
)

func affinityChapter() *Chapter {
	return &Chapter{
		ID:        "affinity-test",
		Character: "Mira",
		Win:       WinAffinityGoal,
		TurnLimit: 18,
		Affinity:  &AffinitySpec{Goal: 120},
		Rewards:   reward.Spec{Count: 1, Weights: map[reward.Rarity]int{reward.RarityCommon: 1}},
	}
}

func TestAffinityGoalReachedCompletes(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "mira", "affinity-test", 10)
	sess.State = StateInProgress

	out, err := affinityResolver{}.Advance(context.Background(), sess, affinityChapter(), Input{Affinity: 120})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, out.State)
	require.NotNil(t, out.Reward)
}

func TestAffinityBelowGoalKeepsChatting(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "mira", "affinity-test", 10)
	sess.State = StateInProgress

	out, err := affinityResolver{}.Advance(context.Background(), sess, affinityChapter(), Input{Affinity: 80})
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, out.State)
	assert.Nil(t, out.Reward)
}

func TestAffinityForcedWithoutGoalFails(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "mira", "affinity-test", 10)
	sess.State = StateInProgress

	out, err := affinityResolver{}.Advance(context.Background(), sess, affinityChapter(), Input{Affinity: 80, Forced: true})
	require.NoError(t, err)
	assert.Equal(t, StateFailed, out.State)
}

func TestAffinityGoalReachedOnFinalTurnStillWins(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "mira", "affinity-test", 10)
	sess.State = StateInProgress

	out, err := affinityResolver{}.Advance(context.Background(), sess, affinityChapter(), Input{Affinity: 121, Forced: true})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, out.State)
}
