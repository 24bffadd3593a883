package reward

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOwnership struct {
	owned map[string]bool
	err   error
}

func (f fakeOwnership) OwnedItemIDs(context.Context, string) (map[string]bool, error) {
	return f.owned, f.err
}

func testPool(t *testing.T) *Pool {
	t.Helper()
	pool, err := NewPool(map[Rarity][]string{
		RarityCommon: {"c1", "c2", "c3", "c4"},
		RarityRare:   {"r1", "r2"},
		RarityEpic:   {"e1", "e2"},
	})
	require.NoError(t, err)
	return pool
}

func TestNewPoolRejectsEmptyTier(t *testing.T) {
	_, err := NewPool(map[Rarity][]string{
		RarityCommon: {"c1"},
		RarityRare:   {"r1"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "epic")
}

func TestNewPoolRejectsUnknownRarity(t *testing.T) {
	_, err := NewPool(map[Rarity][]string{
		RarityCommon:     {"c1"},
		RarityRare:       {"r1"},
		RarityEpic:       {"e1"},
		Rarity("mythic"): {"m1"},
	})
	require.Error(t, err)
}

func TestRarityOf(t *testing.T) {
	pool := testPool(t)

	rarity, ok := pool.RarityOf("r2")
	require.True(t, ok)
	assert.Equal(t, RarityRare, rarity)

	_, ok = pool.RarityOf("nope")
	assert.False(t, ok)
}

func TestGradeFor(t *testing.T) {
	assert.Equal(t, GradeStranger, GradeFor(0))
	assert.Equal(t, GradeStranger, GradeFor(49))
	assert.Equal(t, GradeAcquaintance, GradeFor(50))
	assert.Equal(t, GradeFriend, GradeFor(150))
	assert.Equal(t, GradeConfidant, GradeFor(400))
	assert.Equal(t, GradeSoulmate, GradeFor(800))
	assert.Equal(t, GradeSoulmate, GradeFor(5000))
}

func TestGrantDeterministicForFixedSeed(t *testing.T) {
	spec := Spec{Count: 3, Weights: map[Rarity]int{RarityCommon: 5, RarityRare: 3, RarityEpic: 2}}

	first := NewEngine(testPool(t), nil, rand.New(rand.NewSource(42)), nil)
	second := NewEngine(testPool(t), nil, rand.New(rand.NewSource(42)), nil)

	a, err := first.Grant(context.Background(), "u1", spec, GradeFriend)
	require.NoError(t, err)
	b, err := second.Grant(context.Background(), "u1", spec, GradeFriend)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 3)
}

func TestGrantDrawsWithoutReplacement(t *testing.T) {
	engine := NewEngine(testPool(t), nil, rand.New(rand.NewSource(7)), nil)
	spec := Spec{Count: 4, Weights: map[Rarity]int{RarityCommon: 1}}

	items, err := engine.Grant(context.Background(), "u1", spec, GradeStranger)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"c1", "c2", "c3", "c4"}, items)
}

func TestGrantStopsWhenTierExhausted(t *testing.T) {
	engine := NewEngine(testPool(t), nil, rand.New(rand.NewSource(7)), nil)
	spec := Spec{Count: 10, Weights: map[Rarity]int{RarityRare: 1}}

	items, err := engine.Grant(context.Background(), "u1", spec, GradeStranger)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"r1", "r2"}, items)
}

func TestGrantPrefersUnownedItems(t *testing.T) {
	owned := fakeOwnership{owned: map[string]bool{"c1": true, "c2": true, "c3": true}}
	engine := NewEngine(testPool(t), owned, rand.New(rand.NewSource(3)), nil)
	spec := Spec{Count: 1, Weights: map[Rarity]int{RarityCommon: 1}, UnownedOnly: true}

	for i := 0; i < 10; i++ {
		items, err := engine.Grant(context.Background(), "u1", spec, GradeStranger)
		require.NoError(t, err)
		require.Equal(t, []string{"c4"}, items)
	}
}

func TestGrantFallsBackWhenEverythingOwned(t *testing.T) {
	owned := fakeOwnership{owned: map[string]bool{"c1": true, "c2": true, "c3": true, "c4": true}}
	engine := NewEngine(testPool(t), owned, rand.New(rand.NewSource(3)), nil)
	spec := Spec{Count: 1, Weights: map[Rarity]int{RarityCommon: 1}, UnownedOnly: true}

	items, err := engine.Grant(context.Background(), "u1", spec, GradeStranger)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, []string{"c1", "c2", "c3", "c4"}, items[0])
}

func TestGrantOwnershipErrorFailsTheDraw(t *testing.T) {
	owned := fakeOwnership{err: fmt.Errorf("store offline")}
	engine := NewEngine(testPool(t), owned, rand.New(rand.NewSource(3)), nil)
	spec := Spec{Count: 1, Weights: map[Rarity]int{RarityCommon: 1}, UnownedOnly: true}

	_, err := engine.Grant(context.Background(), "u1", spec, GradeStranger)
	require.Error(t, err)
}

func TestGrantRequiresWeights(t *testing.T) {
	engine := NewEngine(testPool(t), nil, rand.New(rand.NewSource(3)), nil)

	_, err := engine.Grant(context.Background(), "u1", Spec{Count: 1}, GradeStranger)
	require.Error(t, err)
}

func TestGrantGradeBiasSkewsTowardRareTiers(t *testing.T) {
	spec := Spec{Count: 1, Weights: map[Rarity]int{RarityCommon: 5, RarityEpic: 1}}

	countEpics := func(grade Grade) int {
		engine := NewEngine(testPool(t), nil, rand.New(rand.NewSource(99)), nil)
		epics := 0
		for i := 0; i < 2000; i++ {
			items, err := engine.Grant(context.Background(), "u1", spec, grade)
			require.NoError(t, err)
			rarity, ok := engine.pool.RarityOf(items[0])
			require.True(t, ok)
			if rarity == RarityEpic {
				epics++
			}
		}
		return epics
	}

	// Soulmate adds +12 effective epic weight against the same common base,
	// which is far outside sampling noise over 2000 draws.
	assert.Greater(t, countEpics(GradeSoulmate), countEpics(GradeStranger)+200)
}
