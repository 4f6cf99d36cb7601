package combat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ropewar/internal/combat"
)

func cd(hp, atk int) []combat.Stats {
	return []combat.Stats{{MaxHP: hp, Atk: atk, HasCooldownSkill: true, SkillCooldown: 1}}
}

func plain(hp, atk int) []combat.Stats {
	return []combat.Stats{{MaxHP: hp, Atk: atk}}
}

func testCatalog() *combat.Catalog {
	return combat.NewCatalog(
		combat.Template{Name: "soldier", Side: combat.Allied, Skill: combat.SkillWarrior, Levels: plain(120, 10)},
		combat.Template{Name: "hero", Side: combat.Allied, Skill: combat.SkillHero, Levels: plain(150, 12)},
		combat.Template{Name: "archer", Side: combat.Allied, Skill: combat.SkillArcher, Levels: cd(70, 6)},
		combat.Template{Name: "monk", Side: combat.Allied, Skill: combat.SkillMonk, Levels: cd(80, 3)},
		combat.Template{Name: "golem", Side: combat.Allied, Skill: combat.SkillGolem, Levels: cd(200, 5)},
		combat.Template{Name: "dummy", Side: combat.Allied, Levels: []combat.Stats{
			{MaxHP: 100, Atk: 1}, {MaxHP: 110, Atk: 2}, {MaxHP: 120, Atk: 3},
		}},
		combat.Template{Name: "five", Side: combat.Allied, Levels: plain(1000, 5)},
		combat.Template{Name: "goblin", Side: combat.Enemy, Skill: combat.SkillGoblin, Levels: cd(60, 5)},
		combat.Template{Name: "minotaur", Side: combat.Enemy, Skill: combat.SkillMinotaur, Levels: cd(160, 9)},
		combat.Template{Name: "dragon", Side: combat.Enemy, Skill: combat.SkillDragon, Levels: cd(260, 14)},
		combat.Template{Name: "healer", Side: combat.Enemy, Skill: combat.SkillHealer, Levels: cd(70, 3)},
		combat.Template{Name: "demon", Side: combat.Enemy, Skill: combat.SkillDemon, Levels: cd(200, 11)},
		combat.Template{Name: "brute", Side: combat.Enemy, Levels: plain(500, 25)},
		combat.Template{Name: "eight", Side: combat.Enemy, Levels: plain(1000, 8)},
		combat.Template{Name: "slime", Side: combat.Enemy, Levels: plain(40, 3)},
	)
}

// fixedRand always answers n, clamped to the range asked for.
type fixedRand struct{ n int }

func (f fixedRand) Intn(k int) int { return min(f.n, k-1) }

type fixture struct {
	t     *testing.T
	match *combat.Match
	rec   *combat.Recorder
}

func newFixture(t *testing.T, opts combat.MatchOptions) *fixture {
	t.Helper()
	rec := combat.NewRecorder(nil, true)
	if opts.Rand == nil {
		opts.Rand = fixedRand{}
	}
	opts.Logger = rec
	opts.Observers = append(opts.Observers, rec)
	return &fixture{t: t, match: combat.NewMatch(testCatalog(), opts), rec: rec}
}

func (f *fixture) rope(rows int) *combat.Rope {
	f.t.Helper()
	r, err := f.match.AddRope(combat.RopeLayout{HolderRows: rows, EnemyRows: rows})
	require.NoError(f.t, err)
	return r
}

func (f *fixture) ally(r *combat.Rope, name string, row int, col combat.Column) *combat.Combatant {
	f.t.Helper()
	c, err := f.match.SpawnCombatant(combat.SpawnRequest{
		Name: name, Level: 1, Side: combat.Allied, Rope: r.Index, Slot: combat.Slot{Row: row, Column: col},
	})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) enemy(r *combat.Rope, name string, row int, col combat.Column) *combat.Combatant {
	f.t.Helper()
	c, err := f.match.SpawnCombatant(combat.SpawnRequest{
		Name: name, Side: combat.Enemy, Rope: r.Index, Slot: combat.Slot{Row: row, Column: col},
	})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) ticks(n int) {
	for i := 0; i < n; i++ {
		f.match.Tick(0.1)
	}
}

func (f *fixture) events(typ string) []combat.Event {
	var out []combat.Event
	for _, e := range f.rec.Events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
