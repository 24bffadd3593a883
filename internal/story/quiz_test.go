package story

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storymode/internal/reward"
)

func quizChapter() *Chapter {
	return &Chapter{
		ID:        "quiz-test",
		Character: "Hana",
		Win:       WinQuiz,
		Quiz: &QuizSpec{
			Question:    "Which star?",
			Options:     []string{"Sirius", "Betelgeuse", "Vega"},
			Answer:      1,
			MaxAttempts: 2,
		},
		Rewards: reward.Spec{Count: 1, Weights: map[reward.Rarity]int{reward.RarityCommon: 1}},
	}
}

func awaitingQuizSession() *Session {
	sess := NewSession("chan-1", "user-1", "hana", "quiz-test", 10)
	sess.State = StateAwaitingResolution
	sess.Awaiting = AwaitingAnswer
	return sess
}

func TestQuizRejectsAnswerOutsideResolutionPhase(t *testing.T) {
	sess := NewSession("chan-1", "user-1", "hana", "quiz-test", 10)
	sess.State = StateInProgress

	_, err := quizResolver{}.Advance(context.Background(), sess, quizChapter(), Input{Choice: 1})
	require.ErrorIs(t, err, ErrWrongPhase)
}

func TestQuizCorrectAnswerCompletes(t *testing.T) {
	sess := awaitingQuizSession()
	ch := quizChapter()

	out, err := quizResolver{}.Advance(context.Background(), sess, ch, Input{Choice: 1})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, out.State)
	require.NotNil(t, out.Reward)
	assert.Equal(t, ch.Rewards, *out.Reward)
}

func TestQuizWrongAnswerRepromptsUntilAttemptsRunOut(t *testing.T) {
	sess := awaitingQuizSession()
	ch := quizChapter()

	out, err := quizResolver{}.Advance(context.Background(), sess, ch, Input{Choice: 0})
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingResolution, out.State)
	assert.Equal(t, AwaitingAnswer, out.Awaiting)
	assert.Contains(t, out.Reply, "1 left")
	assert.Equal(t, 1, sess.QuizAttempts)

	out, err = quizResolver{}.Advance(context.Background(), sess, ch, Input{Choice: 2})
	require.NoError(t, err)
	assert.Equal(t, StateFailed, out.State)
	assert.Nil(t, out.Reward)
}

func TestQuizCorrectOnLastAttemptStillCompletes(t *testing.T) {
	sess := awaitingQuizSession()
	sess.QuizAttempts = 1

	out, err := quizResolver{}.Advance(context.Background(), sess, quizChapter(), Input{Choice: 1})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, out.State)
}

func TestFormatQuizPrompt(t *testing.T) {
	prompt := FormatQuizPrompt(quizChapter().Quiz)
	assert.Contains(t, prompt, "Which star?")
	assert.Contains(t, prompt, "1) Sirius")
	assert.Contains(t, prompt, "2) Betelgeuse")
	assert.Contains(t, prompt, "3) Vega")
}

func TestParseQuizChoice(t *testing.T) {
	assert.Equal(t, 0, ParseQuizChoice("1", 3))
	assert.Equal(t, 2, ParseQuizChoice("  3  ", 3))
	assert.Equal(t, 1, ParseQuizChoice("2 please", 3))
	assert.Equal(t, -1, ParseQuizChoice("0", 3))
	assert.Equal(t, -1, ParseQuizChoice("4", 3))
	assert.Equal(t, -1, ParseQuizChoice("betelgeuse", 3))
	assert.Equal(t, -1, ParseQuizChoice("", 3))
}
