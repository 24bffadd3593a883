package story

import "fmt"

// TurnEvent is the result of counting one inbound event against the chapter's
// turn limit.
type TurnEvent struct {
	Count int
	// Hints are the clue texts whose thresholds this turn crossed.
	Hints []string
	// ForceResolution is set when the count reached the chapter limit; the
	// chapter must move to its resolution step instead of chatting on.
	ForceResolution bool
}

// AdvanceTurn increments the session's turn counter. Counting past the limit
// is rejected with ErrTurnLimit, which callers treat as an ignorable state
// error: the counter never exceeds the limit.
func AdvanceTurn(sess *Session, ch *Chapter) (TurnEvent, error) {
	if ch.TurnLimit > 0 && sess.Turns >= ch.TurnLimit {
		return TurnEvent{}, fmt.Errorf("turn %d in %s: %w", sess.Turns+1, sess.ChannelID, ErrTurnLimit)
	}
	sess.Turns++

	ev := TurnEvent{Count: sess.Turns}
	if ch.TurnLimit > 0 && sess.Turns >= ch.TurnLimit {
		ev.ForceResolution = true
		return ev, nil
	}
	for _, hint := range ch.Hints {
		if hint.Turn == sess.Turns {
			ev.Hints = append(ev.Hints, hint.Text)
		}
	}
	return ev, nil
}
