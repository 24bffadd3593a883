package story

import (
	"context"
	"fmt"
	"strings"
)

// quizResolver settles a single multiple-choice question with a bounded
// number of attempts. A wrong answer re-prompts with the same option set
// until attempts run out.
type quizResolver struct{}

func (quizResolver) Advance(_ context.Context, sess *Session, ch *Chapter, in Input) (Outcome, error) {
	if sess.Awaiting != AwaitingAnswer {
		return Outcome{}, fmt.Errorf("quiz answer in %s: %w", sess.ChannelID, ErrWrongPhase)
	}

	if in.Choice == ch.Quiz.Answer {
		return Outcome{
			State:  StateCompleted,
			Reply:  fmt.Sprintf("%s lights up. \"That's it. That's exactly it.\"", ch.Character),
			Reward: &ch.Rewards,
		}, nil
	}

	sess.QuizAttempts++
	if sess.QuizAttempts >= ch.Quiz.MaxAttempts {
		return Outcome{
			State: StateFailed,
			Reply: fmt.Sprintf("%s looks away. \"It's fine. Really. Maybe I expected too much.\"", ch.Character),
		}, nil
	}

	remaining := ch.Quiz.MaxAttempts - sess.QuizAttempts
	return Outcome{
		State:    StateAwaitingResolution,
		Awaiting: AwaitingAnswer,
		Reply: fmt.Sprintf("%s shakes their head. \"Not that one. Try again — %d left.\"\n\n%s",
			ch.Character, remaining, FormatQuizPrompt(ch.Quiz)),
	}, nil
}

// FormatQuizPrompt renders the question with numbered options the way the
// engine expects answers back (a number starting at 1).
func FormatQuizPrompt(q *QuizSpec) string {
	var b strings.Builder
	b.WriteString(q.Question)
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "\n  %d) %s", i+1, opt)
	}
	return b.String()
}

// ParseQuizChoice reads a 1-based option number from free text. Returns -1
// when the text is not a valid choice.
func ParseQuizChoice(text string, optionCount int) int {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return -1
	}
	var n int
	if _, err := fmt.Sscanf(fields[0], "%d", &n); err != nil {
		return -1
	}
	if n < 1 || n > optionCount {
		return -1
	}
	return n - 1
}
