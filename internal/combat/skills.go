package combat

import "ropewar/internal/config"

// SkillParams holds the per-class magnifications.
type SkillParams struct {
	ArcherMagnification   float64
	MonkMagnification     float64
	GolemMagnification    float64
	GoblinMagnification   float64
	MinotaurMagnification float64
	DragonMagnification   float64
	HealerMagnification   float64

	DemonHealAll      float64
	DemonDamageAll    float64
	DemonDamageSingle float64

	HeroThresholdPercent float64
	HeroMultiplier       float64
	HeroBuffID           string

	WarriorMinAllies  int
	WarriorMultiplier float64
	WarriorBuffID     string
}

func DefaultSkillParams() SkillParams {
	return SkillParams{
		ArcherMagnification:   0,
		MonkMagnification:     10,
		GolemMagnification:    5,
		GoblinMagnification:   2,
		MinotaurMagnification: 3,
		DragonMagnification:   2,
		HealerMagnification:   5,
		DemonHealAll:          3,
		DemonDamageAll:        3,
		DemonDamageSingle:     6,
		HeroThresholdPercent:  80,
		HeroMultiplier:        1.5,
		HeroBuffID:            "hero",
		WarriorMinAllies:      3,
		WarriorMultiplier:     1.3,
		WarriorBuffID:         "warrior",
	}
}

func SkillParamsFromConfig(sc *config.SkillsConfig) SkillParams {
	p := DefaultSkillParams()
	if sc == nil {
		return p
	}
	p.ArcherMagnification = sc.Archer.Magnification
	p.MonkMagnification = sc.Monk.Magnification
	p.GolemMagnification = sc.Golem.Magnification
	p.GoblinMagnification = sc.Goblin.Magnification
	p.MinotaurMagnification = sc.Minotaur.Magnification
	p.DragonMagnification = sc.Dragon.Magnification
	p.HealerMagnification = sc.Healer.Magnification
	p.DemonHealAll = sc.Demon.HealAll
	p.DemonDamageAll = sc.Demon.DamageAll
	p.DemonDamageSingle = sc.Demon.DamageSingle
	if sc.Hero.AttackMultiplier > 0 {
		p.HeroThresholdPercent = sc.Hero.HPThresholdPercent
		p.HeroMultiplier = sc.Hero.AttackMultiplier
	}
	if sc.Hero.BuffID != "" {
		p.HeroBuffID = sc.Hero.BuffID
	}
	if sc.Warrior.AttackMultiplier > 0 {
		p.WarriorMinAllies = sc.Warrior.MinAllies
		p.WarriorMultiplier = sc.Warrior.AttackMultiplier
	}
	if sc.Warrior.BuffID != "" {
		p.WarriorBuffID = sc.Warrior.BuffID
	}
	return p
}

// Rand is the slice of math/rand the skills need.
type Rand interface {
	Intn(n int) int
}

// Battlefield gives skills access beyond their own rope.
type Battlefield interface {
	AllAllies() []*Combatant
}

type skillContext struct {
	actor  *Combatant
	rope   *Rope
	field  Battlefield
	rng    Rand
	params *SkillParams
	log    Logger
}

type effectKind int

const (
	effectDamage effectKind = iota
	effectHeal
)

type targetRule func(sc *skillContext) []*Combatant

// skillEffect is one row of the dispatch table: who is hit and how hard.
type skillEffect struct {
	label         string
	kind          effectKind
	targets       targetRule
	magnification func(p *SkillParams) float64
	// rawAtkWhenUnset uses plain atk when the magnification is <= 0.
	rawAtkWhenUnset bool
}

var activeSkills = map[SkillKind][]skillEffect{
	SkillArcher: {{
		label: "rearmost shot", kind: effectDamage, targets: rearmostEnemyInColumn,
		magnification: func(p *SkillParams) float64 { return p.ArcherMagnification }, rawAtkWhenUnset: true,
	}},
	SkillMonk: {{
		label: "rope heal", kind: effectHeal, targets: alliesOnRope,
		magnification: func(p *SkillParams) float64 { return p.MonkMagnification },
	}},
	SkillGolem: {{
		label: "front smash", kind: effectDamage, targets: frontEnemyRow,
		magnification: func(p *SkillParams) float64 { return p.GolemMagnification },
	}},
	SkillGoblin: {{
		label: "stab", kind: effectDamage, targets: randomAllyOnRope,
		magnification: func(p *SkillParams) float64 { return p.GoblinMagnification },
	}},
	SkillMinotaur: {{
		label: "sweep", kind: effectDamage, targets: frontAllyRow,
		magnification: func(p *SkillParams) float64 { return p.MinotaurMagnification },
	}},
	SkillDragon: {{
		label: "breath", kind: effectDamage, targets: alliesEverywhere,
		magnification: func(p *SkillParams) float64 { return p.DragonMagnification },
	}},
	SkillHealer: {{
		label: "mend", kind: effectHeal, targets: otherEnemiesOnRope,
		magnification: func(p *SkillParams) float64 { return p.HealerMagnification },
	}},
	SkillDemon: {
		{
			label: "dark mend", kind: effectHeal, targets: otherEnemiesOnRope,
			magnification: func(p *SkillParams) float64 { return p.DemonHealAll },
		},
		{
			label: "cleave", kind: effectDamage, targets: alliesOnRope,
			magnification: func(p *SkillParams) float64 { return p.DemonDamageAll },
		},
		{
			label: "snipe", kind: effectDamage, targets: randomAllyOnRope,
			magnification: func(p *SkillParams) float64 { return p.DemonDamageSingle },
		},
	},
}

// activateSkill runs one cooldown activation of the actor's class.
func activateSkill(sc *skillContext) {
	effects := activeSkills[sc.actor.Skill]
	if len(effects) == 0 || !sc.actor.alive {
		return
	}
	eff := effects[0]
	if len(effects) > 1 {
		eff = effects[sc.rng.Intn(len(effects))]
	}
	actor := sc.actor
	actor.notify.OnSkillActivated(actor)

	atk := actor.EffectiveAtk()
	mag := eff.magnification(sc.params)
	amount := int(float64(atk) * mag)
	if eff.rawAtkWhenUnset && mag <= 0 {
		amount = atk
	}
	if amount <= 0 {
		sc.log.Logf("skill", actor.ID, "%s %s fizzles: amount %d", actor.Name, eff.label, amount)
		return
	}
	targets := eff.targets(sc)
	if len(targets) == 0 {
		sc.log.Logf("skill", actor.ID, "%s %s fizzles: no target", actor.Name, eff.label)
		return
	}
	verb := "damage"
	if eff.kind == effectHeal {
		verb = "heal"
	}
	sc.log.Logf("skill", actor.ID, "%s %s: %d %s to %d target(s)", actor.Name, eff.label, amount, verb, len(targets))
	for _, t := range targets {
		if !t.alive {
			continue
		}
		if eff.kind == effectHeal {
			t.Heal(amount)
		} else {
			t.TakeDamage(amount)
		}
	}
}

func rearmostEnemyInColumn(sc *skillContext) []*Combatant {
	col := sc.actor.slot.Column
	rows := sc.rope.enemies
	for i := len(rows) - 1; i >= 0; i-- {
		if e := rows[i].at(col); e != nil && e.alive {
			return []*Combatant{e}
		}
	}
	return nil
}

func frontEnemyRow(sc *skillContext) []*Combatant {
	for _, row := range sc.rope.enemies {
		var hit []*Combatant
		for _, e := range []*Combatant{row.Left, row.Right} {
			if e != nil && e.alive {
				hit = append(hit, e)
			}
		}
		if len(hit) > 0 {
			return hit
		}
	}
	return nil
}

func frontAllyRow(sc *skillContext) []*Combatant {
	r := sc.rope
	for row := 0; row < r.holderRows; row++ {
		var hit []*Combatant
		for _, col := range []Column{Left, Right} {
			if a := r.allies[Slot{Row: row, Column: col}]; a != nil && a.alive {
				hit = append(hit, a)
			}
		}
		if len(hit) > 0 {
			return hit
		}
	}
	return nil
}

func alliesOnRope(sc *skillContext) []*Combatant {
	var out []*Combatant
	for _, a := range sc.rope.Allies() {
		if a.alive {
			out = append(out, a)
		}
	}
	return out
}

func randomAllyOnRope(sc *skillContext) []*Combatant {
	allies := alliesOnRope(sc)
	if len(allies) == 0 {
		return nil
	}
	return []*Combatant{allies[sc.rng.Intn(len(allies))]}
}

func alliesEverywhere(sc *skillContext) []*Combatant {
	if sc.field == nil {
		return alliesOnRope(sc)
	}
	return sc.field.AllAllies()
}

func otherEnemiesOnRope(sc *skillContext) []*Combatant {
	var out []*Combatant
	for _, e := range sc.rope.Enemies() {
		if e != sc.actor {
			out = append(out, e)
		}
	}
	return out
}

// passiveRule is a continuously rechecked self buff.
type passiveRule struct {
	buffID     func(p *SkillParams) string
	multiplier func(p *SkillParams) float64
	active     func(c *Combatant, r *Rope, p *SkillParams) bool
}

var passiveSkills = map[SkillKind]passiveRule{
	SkillHero: {
		buffID:     func(p *SkillParams) string { return p.HeroBuffID },
		multiplier: func(p *SkillParams) float64 { return p.HeroMultiplier },
		active: func(c *Combatant, _ *Rope, p *SkillParams) bool {
			if c.MaxHP <= 0 {
				return false
			}
			return float64(c.hp)/float64(c.MaxHP)*100 >= p.HeroThresholdPercent
		},
	},
	SkillWarrior: {
		buffID:     func(p *SkillParams) string { return p.WarriorBuffID },
		multiplier: func(p *SkillParams) float64 { return p.WarriorMultiplier },
		active: func(_ *Combatant, r *Rope, p *SkillParams) bool {
			return r.OccupiedHolders() >= p.WarriorMinAllies
		},
	},
}

func applyPassive(c *Combatant, r *Rope, p *SkillParams, log Logger) {
	rule, ok := passiveSkills[c.Skill]
	if !ok || !c.alive {
		return
	}
	on := rule.active(c, r, p)
	m := 1.0
	if on {
		m = rule.multiplier(p)
	}
	if c.multiplier != m {
		c.SetAttackMultiplier(m)
		log.Logf("skill", c.ID, "%s %s buff %v: atk %d", c.Name, c.Skill, on, c.EffectiveAtk())
	}
	c.setBuff(rule.buffID(p), on)
}

// IsPassive reports whether the class buffs itself instead of using a cooldown.
func (k SkillKind) IsPassive() bool {
	_, ok := passiveSkills[k]
	return ok
}
