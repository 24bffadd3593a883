package reward

import "fmt"

// Rarity labels the tier an item belongs to.
type Rarity string

const (
	RarityCommon Rarity = "common"
	RarityRare   Rarity = "rare"
	RarityEpic   Rarity = "epic"
)

// Rarities lists the known tiers from most to least frequent.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic}

// Pool is the full reward catalogue: every grantable item id grouped by tier.
// Loaded once at startup and read-only afterwards, shared by all sessions.
type Pool struct {
	tiers map[Rarity][]string
}

func NewPool(tiers map[Rarity][]string) (*Pool, error) {
	for rarity := range tiers {
		if !knownRarity(rarity) {
			return nil, fmt.Errorf("reward pool: unknown rarity %q", rarity)
		}
	}
	for _, rarity := range Rarities {
		if len(tiers[rarity]) == 0 {
			return nil, fmt.Errorf("reward pool: tier %q is empty", rarity)
		}
	}
	copied := make(map[Rarity][]string, len(tiers))
	for rarity, items := range tiers {
		copied[rarity] = append([]string(nil), items...)
	}
	return &Pool{tiers: copied}, nil
}

// Tier returns the item ids of one tier.
func (p *Pool) Tier(rarity Rarity) []string {
	return p.tiers[rarity]
}

// RarityOf reports the tier containing the given item id.
func (p *Pool) RarityOf(itemID string) (Rarity, bool) {
	for rarity, items := range p.tiers {
		for _, id := range items {
			if id == itemID {
				return rarity, true
			}
		}
	}
	return "", false
}

func knownRarity(r Rarity) bool {
	for _, known := range Rarities {
		if r == known {
			return true
		}
	}
	return false
}
