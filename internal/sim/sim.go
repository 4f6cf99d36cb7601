package sim

import (
	"errors"
	"fmt"
	"sort"

	"ropewar/internal/combat"
	"ropewar/internal/config"
	"ropewar/internal/deck"
	"ropewar/internal/stage"
	"ropewar/internal/util"
)

// Op is one scripted placement action. Move, release, pause and resume
// address the combatant by the holder it stands on.
type Op struct {
	T        float64 `json:"t"`
	Op       string  `json:"op"`
	Card     string  `json:"card,omitempty"`
	Level    int     `json:"level,omitempty"`
	Rope     int     `json:"rope"`
	Row      int     `json:"row"`
	Column   string  `json:"column,omitempty"`
	ToRope   int     `json:"to_rope,omitempty"`
	ToRow    int     `json:"to_row,omitempty"`
	ToColumn string  `json:"to_column,omitempty"`
}

type Input struct {
	Stage     int                 `json:"stage"`
	Seed      int64               `json:"seed"`
	BattleAt  float64             `json:"battle_at"`
	TimeLimit float64             `json:"time_limit,omitempty"`
	Layouts   []combat.RopeLayout `json:"layouts,omitempty"`
	Ops       []Op                `json:"ops"`
}

type Capture struct {
	T         float64 `json:"t"`
	Rope      int     `json:"rope"`
	Base      string  `json:"base"`
	AlliedAtk int     `json:"allied_atk"`
	EnemyAtk  int     `json:"enemy_atk"`
}

type Rejected struct {
	Index int    `json:"index"`
	Op    string `json:"op"`
	Error string `json:"error"`
}

type Result struct {
	Win         bool           `json:"win"`
	Duration    float64        `json:"duration"`
	AlliedRopes int            `json:"allied_ropes"`
	EnemyRopes  int            `json:"enemy_ropes"`
	Captures    []Capture      `json:"captures"`
	Rejected    []Rejected     `json:"rejected,omitempty"`
	Deaths      map[string]int `json:"deaths"`
	Skills      map[string]int `json:"skills"`
	Events      []combat.Event `json:"events,omitempty"`
	Meta        Meta           `json:"meta"`
}

type Meta struct {
	Stage int        `json:"stage"`
	Seed  int64      `json:"seed"`
	Ropes []RopeMeta `json:"ropes"`
}

type RopeMeta struct {
	Index      int      `json:"index"`
	X          float64  `json:"x"`
	HolderRows int      `json:"holder_rows"`
	EnemyRows  int      `json:"enemy_rows"`
	Enemies    []string `json:"enemies"`
}

var ErrBadInput = errors.New("bad input")

// Runner holds the read-only data shared by every run; one Runner is safe
// for concurrent Run calls as long as Deck is not mutated meanwhile.
type Runner struct {
	Catalog      *combat.Catalog
	Generator    *stage.Generator
	Rules        combat.Rules
	Params       combat.SkillParams
	Tick         float64
	MatchTime    float64
	DefaultStage int
	// Deck resolves levels for placements that give none. Optional.
	Deck *deck.Deck
}

func NewRunner(b *config.Bundle) (*Runner, error) {
	cat, err := combat.NewCatalogFromConfig(&b.Characters, &b.Enemies)
	if err != nil {
		return nil, err
	}
	return &Runner{
		Catalog:      cat,
		Generator:    stage.NewGenerator(&b.Stages, cat.Templates(combat.Enemy)),
		Rules:        combat.RulesFromConfig(&b.Rules),
		Params:       combat.SkillParamsFromConfig(&b.Skills),
		Tick:         b.Rules.Tick,
		MatchTime:    b.Rules.MatchTime,
		DefaultStage: max(1, b.Stages.DefaultStage),
		Deck:         deck.New(&b.Deck),
	}, nil
}

// Layout generates the ropes of a stage for a seed.
func (r *Runner) Layout(stageNo int, seed int64) ([]combat.RopeLayout, error) {
	return r.Generator.Generate(stageNo, util.New(seed))
}

type captureLog struct {
	combat.NopObserver
	now  func() float64
	list []Capture
}

func (c *captureLog) OnRopeCaptured(r *combat.Rope, base combat.Side) {
	allied, enemy := r.Totals()
	c.list = append(c.list, Capture{T: c.now(), Rope: r.Index, Base: base.String(), AlliedAtk: allied, EnemyAtk: enemy})
}

// Run plays one scripted match. It stops at the time limit or once every
// rope is captured.
func (r *Runner) Run(in Input, record bool) (Result, error) {
	return r.run(in, record, r.Deck)
}

// run resolves placement levels from d, which may differ from r.Deck.
func (r *Runner) run(in Input, record bool, d *deck.Deck) (Result, error) {
	tick := r.Tick
	if tick <= 0 {
		tick = 0.1
	}
	limit := in.TimeLimit
	if limit <= 0 {
		limit = r.MatchTime
	}
	if limit <= 0 {
		limit = 60
	}
	stageNo := in.Stage
	if stageNo <= 0 {
		stageNo = r.DefaultStage
	}
	if in.BattleAt < 0 {
		return Result{}, fmt.Errorf("%w: battle_at %.2f", ErrBadInput, in.BattleAt)
	}

	rng := util.New(in.Seed)
	layouts := in.Layouts
	if len(layouts) == 0 {
		var err error
		if layouts, err = r.Generator.Generate(stageNo, rng); err != nil {
			return Result{}, err
		}
	}

	t := 0.0
	now := func() float64 { return t }
	rec := combat.NewRecorder(now, record)
	caps := &captureLog{now: now}
	signal := combat.NewBattleSignal(rec)
	rules, params := r.Rules, r.Params
	m := combat.NewMatch(r.Catalog, combat.MatchOptions{
		Rules:     &rules,
		Params:    &params,
		Rand:      rng,
		Gate:      signal,
		Logger:    rec,
		Observers: []combat.Observer{rec, caps},
	})

	res := Result{Meta: Meta{Stage: stageNo, Seed: in.Seed}}
	for _, l := range layouts {
		rope, err := m.AddRope(l)
		if err != nil {
			return Result{}, err
		}
		rm := RopeMeta{Index: rope.Index, X: rope.X, HolderRows: l.HolderRows, EnemyRows: l.EnemyRows}
		for _, e := range l.Enemies {
			rm.Enemies = append(rm.Enemies, e.Name)
		}
		res.Meta.Ropes = append(res.Meta.Ropes, rm)
	}

	ops := append([]Op(nil), in.Ops...)
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].T < ops[j].T })
	next := 0
	// the loop is bounded even if the battle never ends
	maxSteps := int((in.BattleAt+limit)/tick) + 2

	for step := 0; step < maxSteps; step++ {
		for next < len(ops) && ops[next].T <= t+1e-9 {
			if err := r.apply(m, ops[next], d); err != nil {
				rec.Logf("ops", "", "op %d %s rejected: %v", next, ops[next].Op, err)
				res.Rejected = append(res.Rejected, Rejected{Index: next, Op: ops[next].Op, Error: err.Error()})
			}
			next++
		}
		if !signal.InBattle() && t+1e-9 >= in.BattleAt {
			if err := signal.Begin(); err != nil {
				return Result{}, err
			}
		}
		m.Tick(tick)
		t += tick
		if m.Finished() || m.Elapsed()+1e-9 >= limit {
			break
		}
	}
	if signal.InBattle() {
		_ = signal.Finish()
	}

	res.AlliedRopes, res.EnemyRopes = m.Score().Snapshot()
	res.Win = res.AlliedRopes > res.EnemyRopes
	res.Duration = m.Elapsed()
	res.Captures = caps.list
	res.Deaths = map[string]int{}
	for side, n := range rec.Deaths {
		res.Deaths[side.String()] = n
	}
	res.Skills = rec.Skills
	if record {
		res.Events = rec.Events
	}
	return res, nil
}

func (r *Runner) apply(m *combat.Match, op Op, d *deck.Deck) error {
	switch op.Op {
	case "place":
		slot, err := slotOf(op.Row, op.Column)
		if err != nil {
			return err
		}
		level, err := levelFor(op, d)
		if err != nil {
			return err
		}
		_, err = m.SpawnCombatant(combat.SpawnRequest{Name: op.Card, Level: level, Side: combat.Allied, Rope: op.Rope, Slot: slot})
		return err
	case "move":
		c, err := holderAt(m, op.Rope, op.Row, op.Column)
		if err != nil {
			return err
		}
		to, err := slotOf(op.ToRow, op.ToColumn)
		if err != nil {
			return err
		}
		_, err = m.Relocate(c.ID, op.ToRope, to)
		return err
	case "release":
		c, err := holderAt(m, op.Rope, op.Row, op.Column)
		if err != nil {
			return err
		}
		_, err = m.ReleaseCombatant(c.ID)
		return err
	case "pause", "resume":
		c, err := holderAt(m, op.Rope, op.Row, op.Column)
		if err != nil {
			return err
		}
		c.SetPaused(op.Op == "pause")
		return nil
	}
	return fmt.Errorf("%w: unknown op %q", ErrBadInput, op.Op)
}

func levelFor(op Op, d *deck.Deck) (int, error) {
	if op.Level > 0 || d == nil {
		return max(op.Level, 1), nil
	}
	lv, err := d.Level(op.Card)
	if errors.Is(err, deck.ErrUnknownCard) {
		// not a deck card; let the catalog decide
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if lv == 0 {
		return 0, fmt.Errorf("%w: card %s is locked", ErrBadInput, op.Card)
	}
	return lv, nil
}

func slotOf(row int, column string) (combat.Slot, error) {
	col, err := combat.ParseColumn(column)
	if err != nil {
		return combat.Slot{}, err
	}
	return combat.Slot{Row: row, Column: col}, nil
}

func holderAt(m *combat.Match, rope, row int, column string) (*combat.Combatant, error) {
	rp, err := m.Rope(rope)
	if err != nil {
		return nil, err
	}
	slot, err := slotOf(row, column)
	if err != nil {
		return nil, err
	}
	c := rp.AllyAt(slot)
	if c == nil {
		return nil, fmt.Errorf("%w: rope %d holder %d/%s is empty", combat.ErrCombatantNotFound, rope, row, slot.Column)
	}
	return c, nil
}
