package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ropewar/internal/combat"
)

type deathWatch struct {
	combat.NopObserver
	deaths []combat.Vec2
}

func (d *deathWatch) OnDied(_ *combat.Combatant, at combat.Vec2) { d.deaths = append(d.deaths, at) }

func TestDieIsIdempotent(t *testing.T) {
	watch := &deathWatch{}
	f := newFixture(t, combat.MatchOptions{Observers: []combat.Observer{watch}})
	r, err := f.match.AddRope(combat.RopeLayout{HolderRows: 2, EnemyRows: 2, X: 2})
	require.NoError(t, err)
	c := f.ally(r, "soldier", 0, combat.Left)

	c.Die()
	first := struct {
		hp    int
		alive bool
	}{c.HP(), c.Alive()}
	c.Die()

	assert.Equal(t, 0, first.hp)
	assert.False(t, first.alive)
	assert.Equal(t, first.hp, c.HP())
	assert.Equal(t, first.alive, c.Alive())
	assert.Len(t, watch.deaths, 1)
	assert.Equal(t, 1, f.rec.Deaths[combat.Allied])
	assert.Nil(t, r.AllyAt(combat.Slot{Row: 0, Column: combat.Left}))
	assert.Nil(t, c.Rope())

	assert.InDelta(t, 1.3, watch.deaths[0].X, 1e-9)
	assert.InDelta(t, -1.0, watch.deaths[0].Y, 1e-9)
}

func TestDeadCombatantIgnoresDamageAndHeal(t *testing.T) {
	f := newFixture(t, combat.MatchOptions{})
	r := f.rope(2)
	c := f.ally(r, "soldier", 0, combat.Left)

	c.TakeDamage(500)
	require.False(t, c.Alive())
	assert.Equal(t, 0, c.HP())

	c.Heal(50)
	c.TakeDamage(5)
	c.SetAttackMultiplier(2)
	assert.Equal(t, 0, c.HP())
	assert.Equal(t, 1.0, c.AttackMultiplier())
	assert.Len(t, f.events("Damage"), 1)
	assert.Empty(t, f.events("Heal"))
}

func TestHealCapsAtMaxHP(t *testing.T) {
	f := newFixture(t, combat.MatchOptions{})
	r := f.rope(2)
	c := f.ally(r, "soldier", 0, combat.Left)

	c.TakeDamage(30)
	c.Heal(100)
	assert.Equal(t, c.MaxHP, c.HP())
}

func TestEffectiveAtkTruncates(t *testing.T) {
	f := newFixture(t, combat.MatchOptions{})
	r := f.rope(2)
	c := f.ally(r, "archer", 0, combat.Left)

	c.SetAttackMultiplier(1.3)
	assert.Equal(t, 7, c.EffectiveAtk())
	c.SetAttackMultiplier(-1)
	assert.Equal(t, 0, c.EffectiveAtk())
}

func TestPausedCombatantHoldsCooldown(t *testing.T) {
	f := newFixture(t, combat.MatchOptions{})
	r := f.rope(2)
	archer := f.ally(r, "archer", 0, combat.Left)
	f.enemy(r, "brute", 0, combat.Left)

	archer.SetPaused(true)
	f.ticks(15)
	assert.Zero(t, f.rec.Skills["archer"])
	assert.Zero(t, archer.CooldownElapsed())

	archer.SetPaused(false)
	f.ticks(10)
	assert.Equal(t, 1, f.rec.Skills["archer"])
}
