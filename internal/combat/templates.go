package combat

import (
	"errors"
	"fmt"
	"strings"

	"ropewar/internal/config"
)

var (
	ErrTemplateNotFound  = errors.New("template not found")
	ErrInvalidLevel      = errors.New("invalid level")
	ErrUnknownSkill      = errors.New("unknown skill")
	ErrSlotOccupied      = errors.New("slot occupied")
	ErrSlotOutOfRange    = errors.New("slot out of range")
	ErrRopeClosed        = errors.New("rope is captured")
	ErrRopeNotFound      = errors.New("rope not found")
	ErrCombatantNotFound = errors.New("combatant not found")
	ErrSideMismatch      = errors.New("template side mismatch")
	ErrNotReleasable     = errors.New("combatant cannot be released")
)

// MaxCardLevel bounds allied character levels.
const MaxCardLevel = 3

type Side int

const (
	Allied Side = iota
	Enemy
)

func (s Side) String() string {
	if s == Enemy {
		return "enemy"
	}
	return "allied"
}

func (s Side) Opponent() Side {
	if s == Enemy {
		return Allied
	}
	return Enemy
}

type SkillKind int

const (
	SkillNone SkillKind = iota
	SkillArcher
	SkillMonk
	SkillGolem
	SkillHero
	SkillWarrior
	SkillGoblin
	SkillMinotaur
	SkillDragon
	SkillHealer
	SkillDemon
)

var skillNames = map[SkillKind]string{
	SkillNone:     "none",
	SkillArcher:   "archer",
	SkillMonk:     "monk",
	SkillGolem:    "golem",
	SkillHero:     "hero",
	SkillWarrior:  "warrior",
	SkillGoblin:   "goblin",
	SkillMinotaur: "minotaur",
	SkillDragon:   "dragon",
	SkillHealer:   "healer",
	SkillDemon:    "demon",
}

func (k SkillKind) String() string {
	if n, ok := skillNames[k]; ok {
		return n
	}
	return fmt.Sprintf("skill(%d)", int(k))
}

func ParseSkillKind(s string) (SkillKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SkillNone, nil
	}
	for k, n := range skillNames {
		if n == s {
			return k, nil
		}
	}
	return SkillNone, fmt.Errorf("%w: %q", ErrUnknownSkill, s)
}

// Stats is one level of a template.
type Stats struct {
	MaxHP            int     `json:"max_hp"`
	Atk              int     `json:"atk"`
	HasCooldownSkill bool    `json:"has_cooldown_skill"`
	SkillCooldown    float64 `json:"skill_cooldown,omitempty"`
	SkillText        string  `json:"skill_text,omitempty"`
}

// Template is the immutable per-entity data, shared by every combatant
// spawned from it.
type Template struct {
	Name        string
	DisplayName string
	Side        Side
	Skill       SkillKind
	Cost        int
	Levels      []Stats
}

// LevelStats resolves a 1-based level. Enemies have a single fixed level and
// ignore the argument.
func (t *Template) LevelStats(level int) (Stats, error) {
	if t.Side == Enemy {
		return t.Levels[0], nil
	}
	if level < 1 || level > MaxCardLevel || level > len(t.Levels) {
		return Stats{}, fmt.Errorf("%w: %s level %d", ErrInvalidLevel, t.Name, level)
	}
	return t.Levels[level-1], nil
}

// TemplateProvider is the read-only stat lookup used at spawn time.
type TemplateProvider interface {
	Template(name string) (*Template, error)
	GetStats(name string, level int) (*Template, Stats, error)
}

type Catalog struct {
	byName map[string]*Template
	order  []string
}

func NewCatalog(templates ...Template) *Catalog {
	c := &Catalog{byName: map[string]*Template{}}
	for i := range templates {
		t := templates[i]
		if _, dup := c.byName[t.Name]; !dup {
			c.order = append(c.order, t.Name)
		}
		c.byName[t.Name] = &t
	}
	return c
}

// NewCatalogFromConfig converts character and enemy definitions.
func NewCatalogFromConfig(chars *config.CharactersConfig, enemies *config.EnemiesConfig) (*Catalog, error) {
	var tpls []Template
	if chars != nil {
		for _, cd := range chars.Characters {
			kind, err := ParseSkillKind(cd.Skill)
			if err != nil {
				return nil, fmt.Errorf("character %s: %w", cd.Name, err)
			}
			tpl := Template{Name: cd.Name, DisplayName: cd.DisplayName, Side: Allied, Skill: kind}
			for _, lv := range cd.Levels {
				tpl.Levels = append(tpl.Levels, statsFromDef(lv))
			}
			tpls = append(tpls, tpl)
		}
	}
	if enemies != nil {
		for _, ed := range enemies.Enemies {
			kind, err := ParseSkillKind(ed.Skill)
			if err != nil {
				return nil, fmt.Errorf("enemy %s: %w", ed.Name, err)
			}
			tpls = append(tpls, Template{
				Name: ed.Name, DisplayName: ed.DisplayName, Side: Enemy, Skill: kind, Cost: ed.Cost,
				Levels: []Stats{statsFromDef(ed.Stats)},
			})
		}
	}
	return NewCatalog(tpls...), nil
}

func statsFromDef(lv config.LevelDef) Stats {
	return Stats{
		MaxHP:            lv.HP,
		Atk:              lv.Atk,
		HasCooldownSkill: lv.HasCooldownSkill,
		SkillCooldown:    lv.SkillCooldown,
		SkillText:        lv.SkillText,
	}
}

func (c *Catalog) Template(name string) (*Template, error) {
	t, ok := c.byName[name]
	if !ok || len(t.Levels) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return t, nil
}

func (c *Catalog) GetStats(name string, level int) (*Template, Stats, error) {
	t, err := c.Template(name)
	if err != nil {
		return nil, Stats{}, err
	}
	st, err := t.LevelStats(level)
	if err != nil {
		return nil, Stats{}, err
	}
	return t, st, nil
}

// Templates lists templates of one side in definition order.
func (c *Catalog) Templates(side Side) []*Template {
	var out []*Template
	for _, n := range c.order {
		if t := c.byName[n]; t.Side == side {
			out = append(out, t)
		}
	}
	return out
}
