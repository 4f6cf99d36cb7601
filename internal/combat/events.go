package combat

import (
	"encoding/json"
	"fmt"
)

type Event struct {
	T       float64        `json:"t"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Observer receives fire-and-forget state notifications. The core never waits
// on an observer.
type Observer interface {
	OnSpawned(c *Combatant)
	OnDamaged(c *Combatant, amount int)
	OnHealed(c *Combatant, amount int)
	OnDied(c *Combatant, at Vec2)
	OnSkillActivated(c *Combatant)
	OnBuffChanged(c *Combatant, buffID string, active bool)
	OnRopeMarkerMoved(r *Rope, position float64)
	OnRopeCaptured(r *Rope, base Side)
}

// Logger takes diagnostic lines.
type Logger interface {
	Logf(source, id, format string, args ...any)
}

// NopObserver can be embedded to implement only part of Observer.
type NopObserver struct{}

func (NopObserver) OnSpawned(*Combatant)                   {}
func (NopObserver) OnDamaged(*Combatant, int)              {}
func (NopObserver) OnHealed(*Combatant, int)               {}
func (NopObserver) OnDied(*Combatant, Vec2)                {}
func (NopObserver) OnSkillActivated(*Combatant)            {}
func (NopObserver) OnBuffChanged(*Combatant, string, bool) {}
func (NopObserver) OnRopeMarkerMoved(*Rope, float64)       {}
func (NopObserver) OnRopeCaptured(*Rope, Side)             {}
func (NopObserver) Logf(string, string, string, ...any)    {}

// observerHub fans one notification out to every registered observer.
type observerHub struct {
	observers []Observer
}

func (h *observerHub) add(o Observer) {
	if o != nil {
		h.observers = append(h.observers, o)
	}
}

func (h *observerHub) OnSpawned(c *Combatant) {
	for _, o := range h.observers {
		o.OnSpawned(c)
	}
}

func (h *observerHub) OnDamaged(c *Combatant, amount int) {
	for _, o := range h.observers {
		o.OnDamaged(c, amount)
	}
}

func (h *observerHub) OnHealed(c *Combatant, amount int) {
	for _, o := range h.observers {
		o.OnHealed(c, amount)
	}
}

func (h *observerHub) OnDied(c *Combatant, at Vec2) {
	for _, o := range h.observers {
		o.OnDied(c, at)
	}
}

func (h *observerHub) OnSkillActivated(c *Combatant) {
	for _, o := range h.observers {
		o.OnSkillActivated(c)
	}
}

func (h *observerHub) OnBuffChanged(c *Combatant, buffID string, active bool) {
	for _, o := range h.observers {
		o.OnBuffChanged(c, buffID, active)
	}
}

func (h *observerHub) OnRopeMarkerMoved(r *Rope, position float64) {
	for _, o := range h.observers {
		o.OnRopeMarkerMoved(r, position)
	}
}

func (h *observerHub) OnRopeCaptured(r *Rope, base Side) {
	for _, o := range h.observers {
		o.OnRopeCaptured(r, base)
	}
}

// Recorder turns notifications into a timestamped Event log. With Record off
// it only counts.
type Recorder struct {
	Now    func() float64
	Record bool

	Events  []Event
	Deaths  map[Side]int
	Skills  map[string]int
	Damage  map[string]int
	Healing map[string]int
}

func NewRecorder(now func() float64, record bool) *Recorder {
	return &Recorder{
		Now:     now,
		Record:  record,
		Deaths:  map[Side]int{},
		Skills:  map[string]int{},
		Damage:  map[string]int{},
		Healing: map[string]int{},
	}
}

func (r *Recorder) emit(typ string, payload map[string]any) {
	if !r.Record {
		return
	}
	t := 0.0
	if r.Now != nil {
		t = r.Now()
	}
	r.Events = append(r.Events, Event{T: t, Type: typ, Payload: payload})
}

func (r *Recorder) Logf(source, id, format string, args ...any) {
	if !r.Record {
		return
	}
	payload := map[string]any{"text": fmt.Sprintf(format, args...)}
	if source != "" {
		payload["source"] = source
	}
	if id != "" {
		payload["id"] = id
	}
	r.emit("LogLine", payload)
}

func (r *Recorder) OnSpawned(c *Combatant) {
	r.emit("Spawn", map[string]any{
		"id": c.ID, "name": c.Name, "side": c.Side.String(), "level": c.Level,
		"hp": c.HP(), "max_hp": c.MaxHP, "atk": c.BaseAtk,
	})
}

func (r *Recorder) OnDamaged(c *Combatant, amount int) {
	r.Damage[c.Side.String()] += amount
	r.emit("Damage", map[string]any{"target": c.ID, "dmg": amount, "hp": c.HP()})
}

func (r *Recorder) OnHealed(c *Combatant, amount int) {
	r.Healing[c.Side.String()] += amount
	r.emit("Heal", map[string]any{"target": c.ID, "amount": amount, "hp": c.HP()})
}

func (r *Recorder) OnDied(c *Combatant, at Vec2) {
	r.Deaths[c.Side]++
	r.emit("Death", map[string]any{"id": c.ID, "name": c.Name, "side": c.Side.String(), "x": at.X, "y": at.Y})
}

func (r *Recorder) OnSkillActivated(c *Combatant) {
	r.Skills[c.Skill.String()]++
	r.emit("Skill", map[string]any{"caster": c.ID, "skill": c.Skill.String(), "atk": c.EffectiveAtk()})
}

func (r *Recorder) OnBuffChanged(c *Combatant, buffID string, active bool) {
	r.emit("Buff", map[string]any{"id": c.ID, "buff": buffID, "active": active, "atk": c.EffectiveAtk()})
}

func (r *Recorder) OnRopeMarkerMoved(rope *Rope, position float64) {
	r.emit("RopeMove", map[string]any{"rope": rope.Index, "pos": position})
}

func (r *Recorder) OnRopeCaptured(rope *Rope, base Side) {
	allied, enemy := rope.Totals()
	r.emit("RopeCaptured", map[string]any{
		"rope": rope.Index, "base": base.String(), "allied_atk": allied, "enemy_atk": enemy,
	})
}

func MarshalPretty(v any) []byte {
	b, _ := json.MarshalIndent(v, "", "  ")
	return b
}
