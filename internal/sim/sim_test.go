package sim_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ropewar/internal/combat"
	"ropewar/internal/config"
	"ropewar/internal/sim"
)

func newRunner(t *testing.T) *sim.Runner {
	t.Helper()
	b, err := config.Default()
	require.NoError(t, err)
	r, err := sim.NewRunner(b)
	require.NoError(t, err)
	return r
}

func lane(enemies ...combat.EnemyPlacement) combat.RopeLayout {
	return combat.RopeLayout{HolderRows: 2, EnemyRows: 2, Enemies: enemies}
}

func at(name string, row int, col combat.Column) combat.EnemyPlacement {
	return combat.EnemyPlacement{Name: name, Slot: combat.Slot{Row: row, Column: col}}
}

func TestStrongerAlliesCaptureRope(t *testing.T) {
	r := newRunner(t)
	res, err := r.Run(sim.Input{
		BattleAt: 0.5,
		Layouts:  []combat.RopeLayout{lane(at("slime", 0, combat.Left))},
		Ops:      []sim.Op{{T: 0, Op: "place", Card: "soldier", Rope: 0, Row: 0, Column: "left"}},
	}, false)
	require.NoError(t, err)

	require.Len(t, res.Captures, 1)
	c := res.Captures[0]
	assert.Equal(t, "allied", c.Base)
	assert.Equal(t, 10, c.AlliedAtk)
	assert.Equal(t, 3, c.EnemyAtk, "totals are the ones that decided the wipe")
	assert.Equal(t, 1, res.AlliedRopes)
	assert.Zero(t, res.EnemyRopes)
	assert.True(t, res.Win)
	assert.Equal(t, 1, res.Deaths["enemy"])
	assert.Empty(t, res.Rejected)
	assert.Empty(t, res.Events, "events are only kept when recording")

	// 3.0 at sqrt(7) * 0.1 per second
	assert.InDelta(t, 11.4, res.Duration, 0.2)

	require.Len(t, res.Meta.Ropes, 1)
	assert.Equal(t, []string{"slime"}, res.Meta.Ropes[0].Enemies)
}

func TestBalancedRopeRunsToTimeLimit(t *testing.T) {
	r := newRunner(t)
	res, err := r.Run(sim.Input{
		TimeLimit: 5,
		Layouts:   []combat.RopeLayout{lane(at("goblin", 0, combat.Left), at("goblin", 0, combat.Right))},
		Ops:       []sim.Op{{Op: "place", Card: "soldier", Level: 1, Row: 1, Column: "right"}},
	}, true)
	require.NoError(t, err)

	assert.Empty(t, res.Captures)
	assert.False(t, res.Win)
	assert.InDelta(t, 5.0, res.Duration, 0.11)
	assert.Positive(t, res.Skills["goblin"])
	assert.NotEmpty(t, res.Events)
}

func TestRejectedOpsAreReported(t *testing.T) {
	r := newRunner(t)
	res, err := r.Run(sim.Input{
		TimeLimit: 1,
		Layouts:   []combat.RopeLayout{lane(at("slime", 0, combat.Left))},
		Ops: []sim.Op{
			{Op: "place", Card: "lich", Row: 0},
			{Op: "place", Card: "golem", Row: 0},
			{Op: "place", Card: "soldier", Row: 0},
			{Op: "place", Card: "archer", Row: 0},
			{Op: "place", Card: "archer", Row: 5},
			{Op: "dance", Row: 0},
			{Op: "release", Row: 1, Column: "right"},
		},
	}, false)
	require.NoError(t, err)

	var idx []int
	for _, rj := range res.Rejected {
		idx = append(idx, rj.Index)
		assert.NotEmpty(t, rj.Error)
	}
	assert.Equal(t, []int{0, 1, 3, 4, 5, 6}, idx)
	assert.Contains(t, res.Rejected[1].Error, "locked")
}

func TestMoveCarriesHP(t *testing.T) {
	r := newRunner(t)
	res, err := r.Run(sim.Input{
		TimeLimit: 8,
		Layouts: []combat.RopeLayout{
			lane(at("minotaur", 0, combat.Left)),
			lane(at("slime", 1, combat.Right)),
		},
		Ops: []sim.Op{
			{T: 0, Op: "place", Card: "archer", Rope: 0, Row: 0, Column: "left"},
			{T: 7, Op: "move", Rope: 0, Row: 0, Column: "left", ToRope: 1, ToRow: 0, ToColumn: "left"},
		},
	}, true)
	require.NoError(t, err)
	require.Empty(t, res.Rejected)

	var spawns []map[string]any
	for _, e := range res.Events {
		if e.Type == "Spawn" && e.Payload["name"] == "archer" {
			spawns = append(spawns, e.Payload)
		}
	}
	require.Len(t, spawns, 2)
	assert.Equal(t, 70, spawns[0]["hp"])
	hp := spawns[1]["hp"].(int)
	assert.Less(t, hp, 70)
	assert.Positive(t, hp)
}

func TestNegativeBattleStartIsBadInput(t *testing.T) {
	_, err := newRunner(t).Run(sim.Input{BattleAt: -1}, false)
	assert.ErrorIs(t, err, sim.ErrBadInput)
}

func TestGeneratedRunsAreDeterministicAndSafeInParallel(t *testing.T) {
	r := newRunner(t)
	in := sim.Input{Stage: 2, Seed: 7, Ops: []sim.Op{
		{Op: "place", Card: "soldier", Row: 0},
		{Op: "place", Card: "archer", Row: 0, Column: "right"},
		{Op: "place", Card: "monk", Row: 1},
	}}
	want, err := r.Run(in, false)
	require.NoError(t, err)
	assert.NotEmpty(t, want.Meta.Ropes)

	var wg sync.WaitGroup
	got := make([]sim.Result, 8)
	errs := make([]error, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], errs[i] = r.Run(in, false)
		}(i)
	}
	wg.Wait()
	for i := range got {
		require.NoError(t, errs[i])
		assert.Equal(t, want, got[i])
	}
}
