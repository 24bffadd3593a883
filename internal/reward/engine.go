// Package reward implements the gacha-style reward economy: weighted tier
// selection biased by affinity grade, with anti-duplicate draws that fall back
// to the full tier pool when a user already owns everything in it.
package reward

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
)

// Spec describes what a chapter grants on completion.
type Spec struct {
	// Count is the number of items to draw. Zero means one.
	Count int `yaml:"count"`
	// Weights are the base tier weights before affinity bias. A tier with no
	// entry (or weight zero) is never selected for this spec.
	Weights map[Rarity]int `yaml:"weights"`
	// UnownedOnly filters draws to items the user does not already own,
	// falling back to the full tier when the filter empties a pool.
	UnownedOnly bool `yaml:"unowned_only"`
}

// Grade is the user's affinity standing with a character, used to skew tier
// weights toward rarer drops as the relationship deepens.
type Grade int

const (
	GradeStranger Grade = iota
	GradeAcquaintance
	GradeFriend
	GradeConfidant
	GradeSoulmate
)

var gradeThresholds = []int{0, 50, 150, 400, 800}

// GradeFor maps a raw affinity score to a grade.
func GradeFor(score int) Grade {
	grade := GradeStranger
	for i, threshold := range gradeThresholds {
		if score >= threshold {
			grade = Grade(i)
		}
	}
	return grade
}

// rarityBias is the per-grade weight bump applied to each tier. Common drops
// never get rarer with affinity; epic drops benefit the most.
var rarityBias = map[Rarity]int{
	RarityCommon: 0,
	RarityRare:   2,
	RarityEpic:   3,
}

// Ownership exposes the set of items a user already owns.
type Ownership interface {
	OwnedItemIDs(ctx context.Context, userID string) (map[string]bool, error)
}

// Engine draws reward items from the pool. It performs no cross-call
// deduplication: callers guard terminal transitions so Grant runs at most
// once per session outcome.
type Engine struct {
	pool  *Pool
	owned Ownership
	rng   *rand.Rand
	log   *zap.Logger
}

// NewEngine creates a reward engine. The rand source is injected so tests can
// fix a seed and assert exact draws.
func NewEngine(pool *Pool, owned Ownership, rng *rand.Rand, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{pool: pool, owned: owned, rng: rng, log: log}
}

// Grant draws items for the user according to the spec, biased by grade.
// Draws within a single call are without replacement.
func (e *Engine) Grant(ctx context.Context, userID string, spec Spec, grade Grade) ([]string, error) {
	count := spec.Count
	if count <= 0 {
		count = 1
	}
	if len(spec.Weights) == 0 {
		return nil, fmt.Errorf("reward grant for %s: spec has no tier weights", userID)
	}

	owned := map[string]bool{}
	if spec.UnownedOnly && e.owned != nil {
		var err error
		owned, err = e.owned.OwnedItemIDs(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("reward grant for %s: load owned items: %w", userID, err)
		}
	}

	drawn := make(map[string]bool, count)
	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		rarity := e.pickTier(spec.Weights, grade)
		item, ok := e.pickItem(rarity, owned, drawn, spec.UnownedOnly)
		if !ok {
			// Every item of the tier was drawn this call already; tiny pools
			// can exhaust, so stop rather than loop forever.
			e.log.Debug("reward tier exhausted mid-grant",
				zap.String("user", userID), zap.String("tier", string(rarity)))
			break
		}
		drawn[item] = true
		items = append(items, item)
	}

	e.log.Debug("reward granted",
		zap.String("user", userID),
		zap.Int("grade", int(grade)),
		zap.Strings("items", items))
	return items, nil
}

func (e *Engine) pickTier(weights map[Rarity]int, grade Grade) Rarity {
	total := 0
	effective := make([]int, len(Rarities))
	for i, rarity := range Rarities {
		w := weights[rarity]
		if w <= 0 {
			continue
		}
		w += rarityBias[rarity] * int(grade)
		effective[i] = w
		total += w
	}
	if total == 0 {
		return RarityCommon
	}
	roll := e.rng.Intn(total)
	for i, rarity := range Rarities {
		roll -= effective[i]
		if roll < 0 {
			return rarity
		}
	}
	return Rarities[len(Rarities)-1]
}

// pickItem draws one item from the tier, preferring unowned items when asked.
// An empty unowned pool falls back to the full tier rather than failing.
func (e *Engine) pickItem(rarity Rarity, owned, drawn map[string]bool, unownedOnly bool) (string, bool) {
	tier := e.pool.Tier(rarity)

	candidates := make([]string, 0, len(tier))
	if unownedOnly {
		for _, id := range tier {
			if !owned[id] && !drawn[id] {
				candidates = append(candidates, id)
			}
		}
	}
	if len(candidates) == 0 {
		for _, id := range tier {
			if !drawn[id] {
				candidates = append(candidates, id)
			}
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[e.rng.Intn(len(candidates))], true
}
