package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turnChapter() *Chapter {
	return &Chapter{
		ID:        "test-chapter",
		TurnLimit: 5,
		Hints: []Hint{
			{Turn: 2, Text: "first clue"},
			{Turn: 4, Text: "second clue"},
		},
	}
}

func TestAdvanceTurnCountsAndRevealsHints(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "hana", "test-chapter", 10)
	ch := turnChapter()

	ev, err := AdvanceTurn(sess, ch)
	require.NoError(t, err)
	assert.Equal(t, 1, ev.Count)
	assert.Empty(t, ev.Hints)
	assert.False(t, ev.ForceResolution)

	ev, err = AdvanceTurn(sess, ch)
	require.NoError(t, err)
	assert.Equal(t, []string{"first clue"}, ev.Hints)
}

func TestAdvanceTurnForcesResolutionAtLimit(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "hana", "test-chapter", 10)
	ch := turnChapter()
	sess.Turns = 4

	ev, err := AdvanceTurn(sess, ch)
	require.NoError(t, err)
	assert.Equal(t, 5, ev.Count)
	assert.True(t, ev.ForceResolution)
	// The forcing turn reports no hints even if one lands on it.
	assert.Empty(t, ev.Hints)
}

func TestAdvanceTurnNeverExceedsLimit(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "hana", "test-chapter", 10)
	ch := turnChapter()
	sess.Turns = 5

	_, err := AdvanceTurn(sess, ch)
	require.ErrorIs(t, err, ErrTurnLimit)
	assert.Equal(t, 5, sess.Turns)
}

func TestAdvanceTurnUnlimitedChapterNeverForces(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "hana", "test-chapter", 10)
	ch := &Chapter{ID: "endless"}

	for i := 0; i < 100; i++ {
		ev, err := AdvanceTurn(sess, ch)
		require.NoError(t, err)
		assert.False(t, ev.ForceResolution)
	}
	assert.Equal(t, 100, sess.Turns)
}
