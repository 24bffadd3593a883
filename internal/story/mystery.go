package story

import (
	"context"
	"fmt"
	"strings"
)

// mysteryResolver runs the whodunit: free-form questions answered by the
// generator while the question budget lasts, then an accusation against a
// fixed suspect list with a bounded number of wrong guesses.
type mysteryResolver struct {
	gen Generator
}

func (r mysteryResolver) Advance(ctx context.Context, sess *Session, ch *Chapter, in Input) (Outcome, error) {
	if in.SuspectID != "" {
		return r.accuse(sess, ch, in.SuspectID)
	}
	if in.Forced {
		return Outcome{
			State:    StateAwaitingResolution,
			Awaiting: AwaitingDeduction,
			Reply: fmt.Sprintf("%s holds up a hand. \"No more questions. Time to name a name.\"\n\n%s",
				ch.Character, FormatSuspectList(ch.Mystery)),
		}, nil
	}
	return r.answerQuestion(ctx, sess, ch, in.Text)
}

func (r mysteryResolver) answerQuestion(ctx context.Context, sess *Session, ch *Chapter, question string) (Outcome, error) {
	answer, err := r.gen.Generate(ctx, BuildMysteryPrompt(ch), sess.History.Entries(), question)
	if err != nil {
		return Outcome{}, fmt.Errorf("mystery question in %s: %w", sess.ChannelID, err)
	}
	return Outcome{
		State: StateInProgress,
		Reply: answer,
	}, nil
}

func (r mysteryResolver) accuse(sess *Session, ch *Chapter, suspectID string) (Outcome, error) {
	spec := ch.Mystery
	suspect, ok := spec.SuspectByID(suspectID)
	if !ok {
		// Not a guess, just a bad name: re-prompt without burning an attempt.
		return Outcome{
			State:    sess.State,
			Awaiting: sess.Awaiting,
			Reply: fmt.Sprintf("%s raises an eyebrow. \"Nobody by that name had a key.\"\n\n%s",
				ch.Character, FormatSuspectList(spec)),
		}, nil
	}

	if suspect.ID == spec.Culprit {
		return Outcome{
			State: StateCompleted,
			Reply: fmt.Sprintf("%s nods slowly. \"The %s. Well reasoned.\"\n\n%s",
				ch.Character, suspect.Name, strings.TrimSpace(spec.Solution)),
			Reward: &ch.Rewards,
		}, nil
	}

	sess.DeductionGuesses++
	if sess.DeductionGuesses >= spec.MaxGuesses {
		culprit, _ := spec.SuspectByID(spec.Culprit)
		return Outcome{
			State: StateFailed,
			Reply: fmt.Sprintf("%s shakes their head. \"%s walks free, then. The trail's gone cold.\"",
				ch.Character, culprit.Name),
		}, nil
	}

	// A wrong guess keeps the session in its current phase: questions stay
	// open while the budget lasts.
	remaining := spec.MaxGuesses - sess.DeductionGuesses
	return Outcome{
		State:    sess.State,
		Awaiting: sess.Awaiting,
		Reply: fmt.Sprintf("%s lets the silence stretch. \"No. Not %s. %d guesses left.\"",
			ch.Character, suspect.Name, remaining),
	}, nil
}

// FormatSuspectList renders the enumerated accusation list shown when the
// question budget runs out.
func FormatSuspectList(m *MysterySpec) string {
	var b strings.Builder
	b.WriteString("Suspects:")
	for _, s := range m.Suspects {
		fmt.Fprintf(&b, "\n  %s — %s", s.ID, s.Description)
	}
	b.WriteString("\nAccuse with /accuse <suspect>.")
	return b.String()
}
