package combat

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/looplab/fsm"
)

type Column int

const (
	Left Column = iota
	Right
)

func (c Column) String() string {
	if c == Right {
		return "right"
	}
	return "left"
}

func ParseColumn(s string) (Column, error) {
	switch s {
	case "left", "l", "":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return Left, fmt.Errorf("%w: column %q", ErrSlotOutOfRange, s)
}

func (c Column) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Column) UnmarshalText(b []byte) error {
	v, err := ParseColumn(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Slot addresses a holder (allied) or an enemy row cell. Row 0 is the front.
type Slot struct {
	Row    int    `json:"row"`
	Column Column `json:"column"`
}

func (s Slot) less(o Slot) bool {
	if s.Row != o.Row {
		return s.Row < o.Row
	}
	return s.Column < o.Column
}

type EnemyRow struct {
	Left, Right *Combatant
}

func (er EnemyRow) at(col Column) *Combatant {
	if col == Right {
		return er.Right
	}
	return er.Left
}

type EnemyPlacement struct {
	Name string `json:"name"`
	Slot Slot   `json:"slot"`
}

// RopeLayout describes a rope before it is spawned into a match.
type RopeLayout struct {
	HolderRows int              `json:"holder_rows"`
	EnemyRows  int              `json:"enemy_rows"`
	X          float64          `json:"x"`
	Enemies    []EnemyPlacement `json:"enemies"`
}

const (
	RopeSpawned  = "spawned"
	RopeBattle   = "battle"
	RopeCaptured = "captured"

	eventStart   = "start"
	eventCapture = "capture"
)

// timerEpsilon absorbs float drift when summing fixed ticks into timers.
const timerEpsilon = 1e-9

// Rules are the tug-of-war tunables.
type Rules struct {
	TugMultiplier       float64
	TugInterval         float64
	MoveSpeedMultiplier float64
	CaptureLimit        float64
}

func DefaultRules() Rules {
	return Rules{TugMultiplier: 0.1, TugInterval: 1, MoveSpeedMultiplier: 0.1, CaptureLimit: 3}
}

// Rope owns both rosters of one lane. The stronger side pulls the marker
// toward its own base; enemies sit on the positive side.
type Rope struct {
	ID    string
	Index int
	X     float64

	holderRows int
	allies     map[Slot]*Combatant
	enemies    []EnemyRow

	totalAllied int
	totalEnemy  int
	marker      float64
	alliedTug   float64
	enemyTug    float64

	state *fsm.FSM
}

func newRope(id string, index int, layout RopeLayout, log Logger) *Rope {
	r := &Rope{
		ID:         id,
		Index:      index,
		X:          layout.X,
		holderRows: layout.HolderRows,
		allies:     map[Slot]*Combatant{},
		enemies:    make([]EnemyRow, layout.EnemyRows),
	}
	r.state = fsm.NewFSM(
		RopeSpawned,
		fsm.Events{
			{Name: eventStart, Src: []string{RopeSpawned}, Dst: RopeBattle},
			{Name: eventCapture, Src: []string{RopeBattle}, Dst: RopeCaptured},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Logf("rope", r.ID, "rope %d: %s -> %s", r.Index, e.Src, e.Dst)
			},
		},
	)
	return r
}

func (r *Rope) State() string      { return r.state.Current() }
func (r *Rope) InBattle() bool     { return r.state.Is(RopeBattle) }
func (r *Rope) Captured() bool     { return r.state.Is(RopeCaptured) }
func (r *Rope) Marker() float64    { return r.marker }
func (r *Rope) HolderRows() int    { return r.holderRows }
func (r *Rope) EnemyRowCount() int { return len(r.enemies) }

// Totals is the last computed aggregate ATK of each side.
func (r *Rope) Totals() (allied, enemy int) { return r.totalAllied, r.totalEnemy }

func (r *Rope) fire(event string) error {
	if !r.state.Can(event) {
		return fmt.Errorf("rope %d: %w: cannot %s from %s", r.Index, ErrRopeClosed, event, r.state.Current())
	}
	return r.state.Event(context.Background(), event)
}

// Allies returns the occupied holders front to back, left before right.
func (r *Rope) Allies() []*Combatant {
	slots := make([]Slot, 0, len(r.allies))
	for s := range r.allies {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].less(slots[j]) })
	out := make([]*Combatant, 0, len(slots))
	for _, s := range slots {
		out = append(out, r.allies[s])
	}
	return out
}

func (r *Rope) AllyAt(s Slot) *Combatant { return r.allies[s] }

func (r *Rope) OccupiedHolders() int { return len(r.allies) }

// Enemies returns the living enemies in row order.
func (r *Rope) Enemies() []*Combatant {
	var out []*Combatant
	for _, row := range r.enemies {
		for _, e := range []*Combatant{row.Left, row.Right} {
			if e != nil && e.alive {
				out = append(out, e)
			}
		}
	}
	return out
}

func (r *Rope) EnemyRows() []EnemyRow {
	return append([]EnemyRow(nil), r.enemies...)
}

// checkSlot reports why side could not take s right now.
func (r *Rope) checkSlot(side Side, s Slot) error {
	if r.Captured() {
		return fmt.Errorf("rope %d: %w", r.Index, ErrRopeClosed)
	}
	if s.Column != Left && s.Column != Right {
		return fmt.Errorf("rope %d: %w: column %d", r.Index, ErrSlotOutOfRange, s.Column)
	}
	switch side {
	case Allied:
		if s.Row < 0 || s.Row >= r.holderRows {
			return fmt.Errorf("rope %d: %w: holder row %d of %d", r.Index, ErrSlotOutOfRange, s.Row, r.holderRows)
		}
		if _, taken := r.allies[s]; taken {
			return fmt.Errorf("rope %d: %w: holder %d/%s", r.Index, ErrSlotOccupied, s.Row, s.Column)
		}
	case Enemy:
		if s.Row < 0 || s.Row >= len(r.enemies) {
			return fmt.Errorf("rope %d: %w: enemy row %d of %d", r.Index, ErrSlotOutOfRange, s.Row, len(r.enemies))
		}
		if cur := r.enemies[s.Row].at(s.Column); cur != nil && cur.alive {
			return fmt.Errorf("rope %d: %w: enemy cell %d/%s", r.Index, ErrSlotOccupied, s.Row, s.Column)
		}
	}
	return nil
}

func (r *Rope) place(c *Combatant, s Slot) error {
	if err := r.checkSlot(c.Side, s); err != nil {
		return err
	}
	if c.Side == Allied {
		r.allies[s] = c
	} else {
		row := &r.enemies[s.Row]
		if s.Column == Left {
			row.Left = c
		} else {
			row.Right = c
		}
	}
	c.rope = r
	c.slot = s
	return nil
}

// vacate frees the slot held by c; used by Die and by releases.
func (r *Rope) vacate(c *Combatant) {
	switch c.Side {
	case Allied:
		if r.allies[c.slot] == c {
			delete(r.allies, c.slot)
		}
	case Enemy:
		if c.slot.Row >= 0 && c.slot.Row < len(r.enemies) {
			row := &r.enemies[c.slot.Row]
			if row.Left == c {
				row.Left = nil
			}
			if row.Right == c {
				row.Right = nil
			}
		}
	}
	c.rope = nil
}

func (r *Rope) recomputeTotals() {
	allied, enemy := 0, 0
	for _, c := range r.allies {
		if c.alive {
			allied += c.EffectiveAtk()
		}
	}
	for _, c := range r.Enemies() {
		enemy += c.EffectiveAtk()
	}
	r.totalAllied, r.totalEnemy = allied, enemy
}

func tugDamage(diff int, multiplier float64) int {
	d := int(math.Floor(float64(diff) * multiplier))
	if d < 1 {
		d = 1
	}
	return d
}

// applyTugOfWar damages every member of the weaker side once per interval of
// sustained disadvantage.
func (r *Rope) applyTugOfWar(dt float64, rules Rules) {
	switch {
	case r.totalEnemy > r.totalAllied:
		r.enemyTug = 0
		r.alliedTug += dt
		if r.alliedTug+timerEpsilon >= rules.TugInterval {
			r.alliedTug -= rules.TugInterval
			if r.alliedTug < 0 {
				r.alliedTug = 0
			}
			dmg := tugDamage(r.totalEnemy-r.totalAllied, rules.TugMultiplier)
			for _, c := range r.Allies() {
				c.TakeTugOfWarDamage(dmg)
			}
		}
	case r.totalAllied > r.totalEnemy:
		r.alliedTug = 0
		r.enemyTug += dt
		if r.enemyTug+timerEpsilon >= rules.TugInterval {
			r.enemyTug -= rules.TugInterval
			if r.enemyTug < 0 {
				r.enemyTug = 0
			}
			dmg := tugDamage(r.totalAllied-r.totalEnemy, rules.TugMultiplier)
			for _, c := range r.Enemies() {
				c.TakeTugOfWarDamage(dmg)
			}
		}
	default:
		r.alliedTug, r.enemyTug = 0, 0
	}
}

// moveMarker returns false when the totals are balanced. A positive limit
// clamps the marker to [-limit, limit].
func (r *Rope) moveMarker(dt float64, rules Rules, limit float64) bool {
	diff := r.totalEnemy - r.totalAllied
	if diff == 0 {
		return false
	}
	dir := 1.0
	if diff < 0 {
		dir = -1.0
	}
	speed := math.Sqrt(math.Abs(float64(diff))) * rules.MoveSpeedMultiplier
	r.marker += dir * speed * dt
	if limit > 0 {
		r.marker = math.Max(-limit, math.Min(limit, r.marker))
	}
	return true
}
