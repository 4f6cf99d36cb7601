package combat

import (
	"fmt"

	"github.com/google/uuid"

	"ropewar/internal/config"
	"ropewar/internal/util"
)

// RulesFromConfig fills zero values from DefaultRules.
func RulesFromConfig(rc *config.RulesConfig) Rules {
	r := DefaultRules()
	if rc == nil {
		return r
	}
	if rc.TugMultiplier > 0 {
		r.TugMultiplier = rc.TugMultiplier
	}
	if rc.TugInterval > 0 {
		r.TugInterval = rc.TugInterval
	}
	if rc.MoveSpeedMultiplier > 0 {
		r.MoveSpeedMultiplier = rc.MoveSpeedMultiplier
	}
	if rc.CaptureLimit > 0 {
		r.CaptureLimit = rc.CaptureLimit
	}
	return r
}

type MatchOptions struct {
	Rules     *Rules
	Params    *SkillParams
	Rand      Rand
	Gate      PhaseSource
	Boundary  BoundaryTrigger
	Score     *ScoreState
	Logger    Logger
	Observers []Observer
}

// Match owns every rope of one battle and runs the per-tick pipeline.
type Match struct {
	provider TemplateProvider
	rules    Rules
	params   SkillParams
	rng      Rand
	gate     PhaseSource
	boundary BoundaryTrigger
	score    *ScoreState
	log      Logger

	// markerLimit clamps marker travel; 0 leaves it unclamped.
	markerLimit float64

	hub      observerHub
	resolver *Resolver

	ropes      []*Rope
	combatants map[string]*Combatant
	elapsed    float64
}

func NewMatch(provider TemplateProvider, o MatchOptions) *Match {
	m := &Match{
		provider:   provider,
		rules:      DefaultRules(),
		params:     DefaultSkillParams(),
		rng:        o.Rand,
		gate:       o.Gate,
		boundary:   o.Boundary,
		score:      o.Score,
		log:        o.Logger,
		combatants: map[string]*Combatant{},
	}
	if o.Rules != nil {
		m.rules = *o.Rules
	}
	if o.Params != nil {
		m.params = *o.Params
	}
	if m.rng == nil {
		m.rng = util.New(1)
	}
	if m.gate == nil {
		m.gate = AlwaysBattle{}
	}
	if m.boundary == nil {
		m.boundary = FixedBoundary{Limit: m.rules.CaptureLimit}
	}
	if mr, ok := m.boundary.(MarkerRanger); ok {
		m.markerLimit = mr.MarkerRange()
	}
	if m.score == nil {
		m.score = &ScoreState{}
	}
	if m.log == nil {
		m.log = NopObserver{}
	}
	for _, ob := range o.Observers {
		m.hub.add(ob)
	}
	m.resolver = &Resolver{Score: m.score, Notify: &m.hub, Log: m.log}
	return m
}

func (m *Match) AddObserver(o Observer) { m.hub.add(o) }

func (m *Match) Score() *ScoreState { return m.score }
func (m *Match) Elapsed() float64   { return m.elapsed }
func (m *Match) Ropes() []*Rope     { return append([]*Rope(nil), m.ropes...) }

func (m *Match) Rope(index int) (*Rope, error) {
	if index < 0 || index >= len(m.ropes) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrRopeNotFound, index, len(m.ropes))
	}
	return m.ropes[index], nil
}

func (m *Match) Combatant(id string) (*Combatant, bool) {
	c, ok := m.combatants[id]
	return c, ok
}

// ActiveRopes counts ropes that are not captured yet.
func (m *Match) ActiveRopes() int {
	n := 0
	for _, r := range m.ropes {
		if !r.Captured() {
			n++
		}
	}
	return n
}

// Finished reports whether every rope has been captured.
func (m *Match) Finished() bool {
	return m.ActiveRopes() == 0
}

// AddRope spawns a rope and the enemies of its layout. A failing enemy spawn
// fails the whole rope: nothing is added and nobody is notified.
func (m *Match) AddRope(layout RopeLayout) (*Rope, error) {
	r := newRope(uuid.New().String(), len(m.ropes), layout, m.log)
	spawned := make([]*Combatant, 0, len(layout.Enemies))
	for _, ep := range layout.Enemies {
		c, err := m.build(r, SpawnRequest{Name: ep.Name, Side: Enemy, Rope: r.Index, Slot: ep.Slot}, spawnConfig{})
		if err != nil {
			return nil, fmt.Errorf("rope %d: %w", r.Index, err)
		}
		spawned = append(spawned, c)
	}
	m.ropes = append(m.ropes, r)
	for _, c := range spawned {
		m.register(c)
	}
	return r, nil
}

type SpawnRequest struct {
	Name  string
	Level int
	Side  Side
	Rope  int
	Slot  Slot
}

type spawnConfig struct {
	carriedHP int
}

type SpawnOption func(*spawnConfig)

// WithCarriedHP starts the combatant at hp instead of full health.
func WithCarriedHP(hp int) SpawnOption {
	return func(sc *spawnConfig) { sc.carriedHP = hp }
}

// SpawnCombatant instantiates a template into a slot. Configuration errors
// fail the spawn and leave nothing behind.
func (m *Match) SpawnCombatant(req SpawnRequest, opts ...SpawnOption) (*Combatant, error) {
	var sc spawnConfig
	for _, opt := range opts {
		opt(&sc)
	}
	r, err := m.Rope(req.Rope)
	if err != nil {
		return nil, err
	}
	c, err := m.build(r, req, sc)
	if err != nil {
		return nil, err
	}
	m.register(c)
	return c, nil
}

// build places a new combatant on r without announcing it.
func (m *Match) build(r *Rope, req SpawnRequest, sc spawnConfig) (*Combatant, error) {
	tpl, st, err := m.provider.GetStats(req.Name, req.Level)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", req.Name, err)
	}
	if tpl.Side != req.Side {
		return nil, fmt.Errorf("spawn %s: %w: template is %s", req.Name, ErrSideMismatch, tpl.Side)
	}
	level := req.Level
	if tpl.Side == Enemy {
		level = 1
	}
	c := newCombatant(uuid.New().String(), tpl, level, st, &m.hub)
	if err := r.place(c, req.Slot); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", req.Name, err)
	}
	if sc.carriedHP > 0 {
		c.hp = min(max(sc.carriedHP, 1), c.MaxHP)
	}
	return c, nil
}

func (m *Match) register(c *Combatant) {
	m.combatants[c.ID] = c
	m.hub.OnSpawned(c)
	m.log.Logf("spawn", c.ID, "%s %s lv%d on rope %d %d/%s hp %d/%d",
		c.Side, c.Name, c.Level, c.rope.Index, c.slot.Row, c.slot.Column, c.hp, c.MaxHP)
}

// ReleaseCombatant picks an allied combatant back up and returns its hp for
// a later WithCarriedHP spawn. The released combatant stays alive but is no
// longer on any rope or known to the match.
func (m *Match) ReleaseCombatant(id string) (int, error) {
	c, ok := m.combatants[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCombatantNotFound, id)
	}
	if c.Side != Allied || !c.alive || c.rope == nil {
		return 0, fmt.Errorf("%w: %s", ErrNotReleasable, id)
	}
	c.rope.vacate(c)
	delete(m.combatants, id)
	m.log.Logf("spawn", id, "%s released with hp %d", c.Name, c.hp)
	return c.hp, nil
}

// Relocate moves an allied combatant to another holder, carrying its hp. The
// destination is checked before the combatant leaves its slot.
func (m *Match) Relocate(id string, rope int, slot Slot) (*Combatant, error) {
	c, ok := m.combatants[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCombatantNotFound, id)
	}
	dst, err := m.Rope(rope)
	if err != nil {
		return nil, err
	}
	if err := dst.checkSlot(c.Side, slot); err != nil {
		return nil, err
	}
	hp, err := m.ReleaseCombatant(id)
	if err != nil {
		return nil, err
	}
	return m.SpawnCombatant(SpawnRequest{Name: c.Name, Level: c.Level, Side: c.Side, Rope: rope, Slot: slot}, WithCarriedHP(hp))
}

// AllAllies lists living allies on every rope in battle.
func (m *Match) AllAllies() []*Combatant {
	var out []*Combatant
	for _, r := range m.ropes {
		if !r.InBattle() {
			continue
		}
		for _, a := range r.Allies() {
			if a.alive {
				out = append(out, a)
			}
		}
	}
	return out
}

// Tick advances every rope by dt. Nothing moves while the gate is not in
// battle.
func (m *Match) Tick(dt float64) {
	if !m.gate.InBattle() {
		return
	}
	m.elapsed += dt
	// every rope joins the battle before any skill looks across ropes
	for _, r := range m.ropes {
		if !r.Captured() && !r.InBattle() {
			if err := r.fire(eventStart); err != nil {
				m.log.Logf("rope", r.ID, "start failed: %v", err)
			}
		}
	}
	for _, r := range m.ropes {
		if r.InBattle() {
			m.tickRope(r, dt)
		}
	}
}

func (m *Match) tickRope(r *Rope, dt float64) {
	sc := skillContext{rope: r, field: m, rng: m.rng, params: &m.params, log: m.log}

	// cooldowns and active skills
	for _, c := range r.Allies() {
		if c.AdvanceCooldown(dt) {
			sc.actor = c
			activateSkill(&sc)
		}
	}
	for _, c := range r.Enemies() {
		if c.AdvanceCooldown(dt) {
			sc.actor = c
			activateSkill(&sc)
		}
	}

	// passives see this tick's roster
	for _, c := range r.Allies() {
		applyPassive(c, r, &m.params, m.log)
	}
	for _, c := range r.Enemies() {
		applyPassive(c, r, &m.params, m.log)
	}

	r.recomputeTotals()
	r.applyTugOfWar(dt, m.rules)
	if r.moveMarker(dt, m.rules, m.markerLimit) {
		m.hub.OnRopeMarkerMoved(r, r.marker)
	}
	r.recomputeTotals()

	if base, hit := m.boundary.Reached(r.marker); hit {
		if err := m.resolver.Resolve(r, base); err != nil {
			m.log.Logf("rope", r.ID, "capture failed: %v", err)
		}
	}
}
