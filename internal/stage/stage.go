package stage

import (
	"fmt"
	"math/rand"

	"ropewar/internal/combat"
	"ropewar/internal/config"
	"ropewar/internal/util"
)

// Progress is the current stage number. It never drops below 1.
type Progress struct {
	defaultStage int
	current      int
}

func NewProgress(defaultStage int) *Progress {
	p := &Progress{defaultStage: max(1, defaultStage)}
	p.current = p.defaultStage
	return p
}

func (p *Progress) Current() int  { return p.current }
func (p *Progress) Increment()    { p.current++ }
func (p *Progress) Reset()        { p.current = p.defaultStage }
func (p *Progress) ResetTo(n int) { p.current = max(1, n) }

// EnemyOption is one enemy the generator may pick.
type EnemyOption struct {
	Name string
	Cost int
}

const (
	smallRopeSlots = 4
	largeRopeSlots = 6
)

// Generator builds rope layouts for a stage.
type Generator struct {
	Stages        []config.StageDef
	Enemies       []EnemyOption
	UpgradeChance float64
	MaxEnemies    int
	MinX, MaxX    float64
}

// NewGenerator takes stage rules from sc and enemy costs from the catalog.
func NewGenerator(sc *config.StagesConfig, enemies []*combat.Template) *Generator {
	g := &Generator{
		Stages:        sc.Stages,
		UpgradeChance: sc.UpgradeChance,
		MaxEnemies:    sc.MaxEnemiesPerRope,
		MinX:          sc.MinX,
		MaxX:          sc.MaxX,
	}
	if g.MaxEnemies <= 0 {
		g.MaxEnemies = largeRopeSlots
	}
	for _, t := range enemies {
		if t.Cost > 0 {
			g.Enemies = append(g.Enemies, EnemyOption{Name: t.Name, Cost: t.Cost})
		}
	}
	return g
}

// StageDef resolves stage n (1-based). Stages past the table reuse the last
// entry.
func (g *Generator) StageDef(n int) (config.StageDef, error) {
	if len(g.Stages) == 0 {
		return config.StageDef{}, fmt.Errorf("stage %d: no stage table", n)
	}
	n = max(1, n)
	if n > len(g.Stages) {
		return g.Stages[len(g.Stages)-1], nil
	}
	return g.Stages[n-1], nil
}

// Generate lays out every rope of stage n. A rope whose budget affords no
// enemy is skipped, so fewer layouts than the stage's rope count may return.
func (g *Generator) Generate(n int, rng *rand.Rand) ([]combat.RopeLayout, error) {
	def, err := g.StageDef(n)
	if err != nil {
		return nil, err
	}
	ropes := max(1, def.Ropes)
	var out []combat.RopeLayout
	for i := 0; i < ropes; i++ {
		picked := g.selectEnemies(max(0, def.MaxTotalCost), rng)
		if len(picked) == 0 {
			continue
		}
		slots := largeRopeSlots
		if len(picked) <= smallRopeSlots && rng.Float64() > g.UpgradeChance {
			slots = smallRopeSlots
		}
		x := (g.MinX + g.MaxX) / 2
		if ropes > 1 {
			x = util.Lerp(g.MinX, g.MaxX, float64(i)/float64(ropes-1))
		}
		out = append(out, g.place(picked, slots, x, rng))
	}
	return out, nil
}

// selectEnemies draws with replacement until the budget or the cap runs out.
func (g *Generator) selectEnemies(budget int, rng *rand.Rand) []EnemyOption {
	var picked []EnemyOption
	remaining := budget
	for len(picked) < g.MaxEnemies && len(picked) < largeRopeSlots && remaining > 0 {
		var candidates []EnemyOption
		for _, e := range g.Enemies {
			if e.Cost <= remaining {
				candidates = append(candidates, e)
			}
		}
		e, ok := util.Pick(rng, candidates)
		if !ok {
			break
		}
		picked = append(picked, e)
		remaining -= e.Cost
	}
	return picked
}

func (g *Generator) place(picked []EnemyOption, slots int, x float64, rng *rand.Rand) combat.RopeLayout {
	idx := make([]int, slots)
	for i := range idx {
		idx[i] = i
	}
	util.Shuffle(rng, idx)

	rows := slots / 2
	layout := combat.RopeLayout{HolderRows: rows, EnemyRows: rows, X: x}
	for i, e := range picked {
		col := combat.Right
		if idx[i]%2 == 0 {
			col = combat.Left
		}
		layout.Enemies = append(layout.Enemies, combat.EnemyPlacement{
			Name: e.Name,
			Slot: combat.Slot{Row: idx[i] / 2, Column: col},
		})
	}
	return layout
}
