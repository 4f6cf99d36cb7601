package combat

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// PhaseSource is the battle-active flag read once per tick.
type PhaseSource interface {
	InBattle() bool
}

const (
	PhasePlacement = "placement"
	PhaseBattle    = "battle"
	PhaseFinished  = "finished"
)

// BattleSignal is the match-phase controller: placement, then battle, then
// finished. Ropes only start once it reports battle.
type BattleSignal struct {
	phase *fsm.FSM
}

func NewBattleSignal(log Logger) *BattleSignal {
	if log == nil {
		log = NopObserver{}
	}
	return &BattleSignal{phase: fsm.NewFSM(
		PhasePlacement,
		fsm.Events{
			{Name: "begin", Src: []string{PhasePlacement}, Dst: PhaseBattle},
			{Name: "finish", Src: []string{PhaseBattle}, Dst: PhaseFinished},
			{Name: "reset", Src: []string{PhaseBattle, PhaseFinished}, Dst: PhasePlacement},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Logf("match", "", "phase %s -> %s", e.Src, e.Dst)
			},
		},
	)}
}

func (b *BattleSignal) Begin() error  { return b.fire("begin") }
func (b *BattleSignal) Finish() error { return b.fire("finish") }
func (b *BattleSignal) Reset() error  { return b.fire("reset") }

func (b *BattleSignal) Phase() string  { return b.phase.Current() }
func (b *BattleSignal) InBattle() bool { return b.phase.Is(PhaseBattle) }

func (b *BattleSignal) fire(event string) error {
	if !b.phase.Can(event) {
		return fmt.Errorf("match phase: cannot %s from %s", event, b.phase.Current())
	}
	return b.phase.Event(context.Background(), event)
}

// AlwaysBattle is a PhaseSource that is permanently in battle.
type AlwaysBattle struct{}

func (AlwaysBattle) InBattle() bool { return true }
