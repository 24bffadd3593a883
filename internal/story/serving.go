package story

import (
	"context"
	"fmt"
	"strings"
)

// servingResolver runs the café mini-game: an ordered customer queue where
// each serve attempt is matched against the current order as a set. The queue
// always advances; the tally against the pass threshold decides the chapter
// when the last customer is served, or early when the turn limit ends the
// shift mid-queue.
type servingResolver struct{}

func (servingResolver) Advance(_ context.Context, sess *Session, ch *Chapter, in Input) (Outcome, error) {
	spec := ch.Serving
	if sess.ServingIndex >= len(spec.Customers) {
		return Outcome{}, fmt.Errorf("serve in %s: queue exhausted: %w", sess.ChannelID, ErrWrongPhase)
	}

	customer := spec.Customers[sess.ServingIndex]
	served := equalIngredientSets(in.Ingredients, customer.Ingredients)
	sess.ServingIndex++
	if served {
		sess.ServingSuccesses++
	}

	var line string
	if served {
		line = fmt.Sprintf("The %s takes the order and nods. (%d/%d served)",
			customer.Name, sess.ServingSuccesses, len(spec.Customers))
	} else {
		line = fmt.Sprintf("The %s frowns at the tray and waves it off. (%d/%d served)",
			customer.Name, sess.ServingSuccesses, len(spec.Customers))
	}

	if sess.ServingIndex < len(spec.Customers) {
		if !in.Forced {
			next := spec.Customers[sess.ServingIndex]
			return Outcome{
				State: StateInProgress,
				Reply: fmt.Sprintf("%s\nNext up, the %s: %s", line, next.Name, strings.Join(next.Ingredients, ", ")),
			}, nil
		}
		// Turn limit hit mid-queue: the shift ends and the tally so far
		// decides the chapter.
		line += "\nThe closing bell rings with customers still in line."
	}

	if sess.ServingSuccesses >= spec.PassThreshold {
		return Outcome{
			State:  StateCompleted,
			Reply:  fmt.Sprintf("%s\n%s unties the apron for you. \"Not bad. Not bad at all.\"", line, ch.Character),
			Reward: &ch.Rewards,
		}, nil
	}
	return Outcome{
		State: StateFailed,
		Reply: fmt.Sprintf("%s\n%s sighs at the ticket rail. \"Rush got the better of us today.\"", line, ch.Character),
	}, nil
}

// ParseIngredients splits free text into an ingredient list. Accepts commas
// or whitespace as separators.
func ParseIngredients(text string) []string {
	text = strings.ReplaceAll(text, ",", " ")
	return strings.Fields(text)
}
