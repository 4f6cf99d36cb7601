package combat_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ropewar/internal/combat"
)

func TestTugOfWarDamagesWeakerSideOncePerSecond(t *testing.T) {
	f := newFixture(t, combat.MatchOptions{})
	r := f.rope(2)
	soldier := f.ally(r, "soldier", 0, combat.Left)
	brute := f.enemy(r, "brute", 0, combat.Left)

	f.ticks(9)
	allied, enemy := r.Totals()
	assert.Equal(t, 10, allied)
	assert.Equal(t, 25, enemy)
	assert.Equal(t, 120, soldier.HP())

	f.ticks(1)
	// max(1, floor(15*0.1)) = 1
	assert.Equal(t, 119, soldier.HP())
	assert.Equal(t, 500, brute.HP())
	assert.Empty(t, f.events("Damage"), "tug damage is not announced as a hit")

	f.ticks(10)
	assert.Equal(t, 118, soldier.HP())
}

func TestTugOfWarTimerRestartsWhenDominanceFlips(t *testing.T) {
	f := newFixture(t, combat.MatchOptions{})
	r := f.rope(2)
	five := f.ally(r, "five", 0, combat.Left)
	slime := f.enemy(r, "slime", 0, combat.Left)
	f.enemy(r, "slime", 0, combat.Right)

	f.ticks(5)
	slime.Die()
	// allies now lead 5 to 3; their timer starts from zero
	f.ticks(5)
	assert.Equal(t, 1000, five.HP())

	f.ticks(5)
	alive := r.Enemies()
	require.Len(t, alive, 1)
	// 5 - 3 = 2 -> max(1, 0) = 1 after a full second of dominance
	assert.Equal(t, 39, alive[0].HP())
}

func TestTotalsCountOnlyLivingCombatants(t *testing.T) {
	f := newFixture(t, combat.MatchOptions{})
	r := f.rope(3)
	f.ally(r, "soldier", 0, combat.Left)
	d := f.ally(r, "dummy", 1, combat.Right)
	s1 := f.enemy(r, "slime", 0, combat.Left)
	f.enemy(r, "slime", 2, combat.Right)

	f.ticks(1)
	allied, enemy := r.Totals()
	assert.Equal(t, 11, allied)
	assert.Equal(t, 6, enemy)

	d.Die()
	s1.Die()
	f.ticks(1)
	allied, enemy = r.Totals()
	assert.Equal(t, 10, allied)
	assert.Equal(t, 3, enemy)

	sum := 0
	for _, c := range r.Allies() {
		if c.Alive() {
			sum += c.EffectiveAtk()
		}
	}
	assert.Equal(t, sum, allied)
}

func TestMarkerMovesTowardEnemyBaseWhenEnemiesStronger(t *testing.T) {
	f := newFixture(t, combat.MatchOptions{})
	r := f.rope(2)
	f.ally(r, "soldier", 0, combat.Left)
	f.enemy(r, "brute", 0, combat.Left)

	f.ticks(10)
	want := math.Sqrt(15) * 0.1 * 1.0
	assert.InDelta(t, want, r.Marker(), 1e-9)
	assert.NotEmpty(t, f.events("RopeMove"))
}

func TestMarkerHoldsOnEqualTotals(t *testing.T) {
	f := newFixture(t, combat.MatchOptions{})
	r := f.rope(2)
	f.ally(r, "five", 0, combat.Left)
	f.enemy(r, "goblin", 0, combat.Left)
	f.ticks(5)
	assert.Zero(t, r.Marker())
	assert.Empty(t, f.events("RopeMove"))
}

func TestPlacementErrors(t *testing.T) {
	f := newFixture(t, combat.MatchOptions{})
	r := f.rope(2)
	f.ally(r, "soldier", 0, combat.Left)

	_, err := f.match.SpawnCombatant(combat.SpawnRequest{Name: "dummy", Level: 1, Side: combat.Allied, Rope: r.Index, Slot: combat.Slot{Row: 0, Column: combat.Left}})
	assert.ErrorIs(t, err, combat.ErrSlotOccupied)

	_, err = f.match.SpawnCombatant(combat.SpawnRequest{Name: "dummy", Level: 1, Side: combat.Allied, Rope: r.Index, Slot: combat.Slot{Row: 2}})
	assert.ErrorIs(t, err, combat.ErrSlotOutOfRange)

	_, err = f.match.SpawnCombatant(combat.SpawnRequest{Name: "dummy", Level: 1, Side: combat.Allied, Rope: 7})
	assert.ErrorIs(t, err, combat.ErrRopeNotFound)

	assert.Equal(t, 1, r.OccupiedHolders())
}
