package combat

import "sort"

// Combatant is the runtime state of one placed character or enemy.
// Invariant: hp == 0 implies !alive; dead combatants are never targeted and
// never counted in rope totals.
type Combatant struct {
	ID       string
	Name     string
	Side     Side
	Level    int
	Skill    SkillKind
	Template *Template

	MaxHP            int
	BaseAtk          int
	HasCooldownSkill bool
	SkillCooldown    float64
	SkillText        string

	hp              int
	multiplier      float64
	cooldownElapsed float64
	alive           bool
	paused          bool
	buffs           map[string]bool

	rope   *Rope
	slot   Slot
	notify Observer
}

func newCombatant(id string, tpl *Template, level int, st Stats, notify Observer) *Combatant {
	if notify == nil {
		notify = NopObserver{}
	}
	return &Combatant{
		ID:               id,
		Name:             tpl.Name,
		Side:             tpl.Side,
		Level:            level,
		Skill:            tpl.Skill,
		Template:         tpl,
		MaxHP:            st.MaxHP,
		BaseAtk:          st.Atk,
		HasCooldownSkill: st.HasCooldownSkill,
		SkillCooldown:    st.SkillCooldown,
		SkillText:        st.SkillText,
		hp:               st.MaxHP,
		multiplier:       1,
		alive:            true,
		buffs:            map[string]bool{},
		notify:           notify,
	}
}

func (c *Combatant) HP() int                   { return c.hp }
func (c *Combatant) Alive() bool               { return c.alive }
func (c *Combatant) Paused() bool              { return c.paused }
func (c *Combatant) AttackMultiplier() float64 { return c.multiplier }
func (c *Combatant) CooldownElapsed() float64  { return c.cooldownElapsed }
func (c *Combatant) Rope() *Rope               { return c.rope }

// EffectiveAtk truncates toward zero like the integer ATK it replaces.
func (c *Combatant) EffectiveAtk() int {
	return int(float64(c.BaseAtk) * c.multiplier)
}

// Slot reports the holder or row slot the combatant occupies.
func (c *Combatant) Slot() (Slot, bool) {
	return c.slot, c.rope != nil
}

// Position is the world position used by death effects.
func (c *Combatant) Position() Vec2 {
	if c.rope == nil {
		return Vec2{}
	}
	return Vec2{X: c.rope.X}.Add(slotOffset(c.Side, c.slot))
}

func (c *Combatant) TakeDamage(amount int) {
	if !c.alive {
		return
	}
	c.loseHP(amount)
	c.notify.OnDamaged(c, amount)
	if c.hp == 0 {
		c.Die()
	}
}

// TakeTugOfWarDamage is TakeDamage without the damage notification.
func (c *Combatant) TakeTugOfWarDamage(amount int) {
	if !c.alive {
		return
	}
	c.loseHP(amount)
	if c.hp == 0 {
		c.Die()
	}
}

func (c *Combatant) loseHP(amount int) {
	if amount < 0 {
		amount = 0
	}
	c.hp -= amount
	if c.hp < 0 {
		c.hp = 0
	}
}

func (c *Combatant) Heal(amount int) {
	if !c.alive {
		return
	}
	if amount < 0 {
		amount = 0
	}
	c.hp += amount
	if c.hp > c.MaxHP {
		c.hp = c.MaxHP
	}
	c.notify.OnHealed(c, amount)
}

func (c *Combatant) SetAttackMultiplier(m float64) {
	if !c.alive {
		return
	}
	if m < 0 {
		m = 0
	}
	c.multiplier = m
}

// SetPaused freezes the cooldown while the combatant is being dragged.
func (c *Combatant) SetPaused(p bool) { c.paused = p }

// Die is terminal and idempotent. It frees the occupied slot before notifying.
func (c *Combatant) Die() {
	if !c.alive {
		return
	}
	c.alive = false
	c.hp = 0
	at := c.Position()
	if c.rope != nil {
		c.rope.vacate(c)
	}
	c.notify.OnDied(c, at)
}

// AdvanceCooldown reports true once per elapsed cooldown.
func (c *Combatant) AdvanceCooldown(dt float64) bool {
	if !c.alive || c.paused || !c.HasCooldownSkill || c.SkillCooldown <= 0 {
		return false
	}
	c.cooldownElapsed += dt
	if c.cooldownElapsed+timerEpsilon >= c.SkillCooldown {
		c.cooldownElapsed = 0
		return true
	}
	return false
}

func (c *Combatant) HasBuff(id string) bool { return c.buffs[id] }

func (c *Combatant) Buffs() []string {
	out := make([]string, 0, len(c.buffs))
	for id, on := range c.buffs {
		if on {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Combatant) setBuff(id string, on bool) {
	if id == "" || c.buffs[id] == on {
		return
	}
	if on {
		c.buffs[id] = true
	} else {
		delete(c.buffs, id)
	}
	c.notify.OnBuffChanged(c, id, on)
}
