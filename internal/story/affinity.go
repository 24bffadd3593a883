package story

import (
	"context"
	"fmt"
)

// affinityResolver closes out chapters won by relationship rather than play:
// each turn the externally-tracked affinity score is compared against the
// chapter goal. No quiz, gift, or deduction machinery is involved.
type affinityResolver struct{}

func (affinityResolver) Advance(_ context.Context, sess *Session, ch *Chapter, in Input) (Outcome, error) {
	if in.Affinity >= ch.Affinity.Goal {
		return Outcome{
			State:  StateCompleted,
			Reply:  fmt.Sprintf("%s goes quiet for a moment, then smiles like a door opening.", ch.Character),
			Reward: &ch.Rewards,
		}, nil
	}
	if in.Forced {
		return Outcome{
			State: StateFailed,
			Reply: fmt.Sprintf("%s glances at the clock and stands. \"It's late. Another time, maybe.\"", ch.Character),
		}, nil
	}
	return Outcome{State: StateInProgress}, nil
}
