package story

import (
	"context"
	"fmt"

	"storymode/internal/reward"
)

// giftResolver converts a validated inventory item into a rarity-proportional
// reward. Unlike the quiz there is no wrong gift: the first valid item always
// completes the chapter, and the attempt counter exists only for telemetry.
type giftResolver struct{}

func (giftResolver) Advance(_ context.Context, sess *Session, ch *Chapter, in Input) (Outcome, error) {
	if sess.State.Terminal() {
		return Outcome{}, fmt.Errorf("gift in %s: %w", sess.ChannelID, ErrWrongPhase)
	}

	sess.GiftAttempts++

	band := giftBand(ch.Gift, in.GiftRarity)
	return Outcome{
		State: StateCompleted,
		Reply: fmt.Sprintf("%s turns the gift over slowly, reading it like a letter. \"A %s thing. I'll keep it where I can see it.\"",
			ch.Character, in.GiftRarity),
		Reward: &band,
	}, nil
}

// giftBand picks the reward spec for the gifted item's rarity, stepping down
// to the nearest defined band when the exact one is missing.
func giftBand(spec *GiftSpec, rarity reward.Rarity) reward.Spec {
	if band, ok := spec.Bands[rarity]; ok {
		return band
	}
	for i := rarityIndex(rarity) - 1; i >= 0; i-- {
		if band, ok := spec.Bands[reward.Rarities[i]]; ok {
			return band
		}
	}
	for _, r := range reward.Rarities {
		if band, ok := spec.Bands[r]; ok {
			return band
		}
	}
	return reward.Spec{}
}

func rarityIndex(r reward.Rarity) int {
	for i, known := range reward.Rarities {
		if r == known {
			return i
		}
	}
	return 0
}
