package sim

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"

	"ropewar/internal/deck"
	"ropewar/internal/stage"
	"ropewar/internal/util"
)

type BenefitKind string

const (
	BenefitUnlock  BenefitKind = "unlock"
	BenefitLevelUp BenefitKind = "level_up"
	BenefitAdd     BenefitKind = "add"
)

// Benefit is one reward offered after a won stage.
type Benefit struct {
	Kind BenefitKind `json:"kind"`
	Card string      `json:"card"`
}

var ErrBenefitUnavailable = errors.New("benefit not available")

const (
	offerTarget  = 3
	offerRerolls = 20

	// cards above these are no longer offered a level up or an extra copy
	levelUpMaxLevel = 2
	addMaxCount     = 5
)

// OfferBenefits draws up to three distinct rewards. An unlock is offered
// with probability locked/total cards.
func OfferBenefits(d *deck.Deck, rng *rand.Rand) []Benefit {
	total := len(d.Names())
	if total == 0 {
		return nil
	}
	pools := map[BenefitKind][]string{BenefitUnlock: d.Locked()}
	for _, n := range d.Unlocked() {
		c, err := d.Card(n)
		if err != nil {
			continue
		}
		if c.Level <= levelUpMaxLevel {
			pools[BenefitLevelUp] = append(pools[BenefitLevelUp], n)
		}
		if c.Count <= addMaxCount {
			pools[BenefitAdd] = append(pools[BenefitAdd], n)
		}
	}
	unlockChance := float64(len(pools[BenefitUnlock])) / float64(total)

	var out []Benefit
	offer := func(kind BenefitKind) bool {
		if kind == BenefitUnlock && rng.Float64() >= unlockChance {
			return false
		}
		name, ok := util.Pick(rng, pools[kind])
		if !ok {
			return false
		}
		b := Benefit{Kind: kind, Card: name}
		if slices.Contains(out, b) {
			return false
		}
		out = append(out, b)
		return true
	}

	offer(BenefitUnlock)
	kinds := []BenefitKind{BenefitLevelUp, BenefitAdd}
	util.Shuffle(rng, kinds)
	for _, k := range kinds {
		offer(k)
	}
	for i := 0; len(out) < offerTarget && i < offerRerolls; i++ {
		kinds := []BenefitKind{BenefitUnlock, BenefitLevelUp, BenefitAdd}
		util.Shuffle(rng, kinds)
		for _, k := range kinds {
			if offer(k) {
				break
			}
		}
	}
	return out
}

// ApplyBenefit grants b on d.
func ApplyBenefit(d *deck.Deck, b Benefit) error {
	var ok bool
	var err error
	switch b.Kind {
	case BenefitUnlock:
		var c deck.Card
		if c, err = d.Card(b.Card); err == nil && !c.Unlocked() {
			ok, err = true, d.Unlock(b.Card)
		}
	case BenefitLevelUp:
		ok, err = d.LevelUp(b.Card)
	case BenefitAdd:
		ok, err = d.Add(b.Card)
	default:
		return fmt.Errorf("%w: benefit kind %q", ErrBadInput, b.Kind)
	}
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrBenefitUnavailable, b.Kind, b.Card)
	}
	return nil
}

// Chooser picks one offered benefit by index; an out of range index skips
// the reward.
type Chooser func(offers []Benefit) int

type Round struct {
	Stage    int       `json:"stage"`
	Result   Result    `json:"result"`
	Offers   []Benefit `json:"offers,omitempty"`
	Chosen   *Benefit  `json:"chosen,omitempty"`
	Unlocked []string  `json:"unlocked,omitempty"`
	Next     int       `json:"next_stage"`
}

// Campaign plays stages back to back with its own deck. A win advances the
// stage and grants one chosen benefit; a loss starts over at the default
// stage with the default deck. The state is saved after every round.
type Campaign struct {
	mu       sync.Mutex
	runner   *Runner
	deck     *deck.Deck
	progress *stage.Progress
	store    deck.Store
	key      string
	unlocked []string
}

// NewCampaign copies the runner's deck and resumes from store when a save
// exists under key. A nil store keeps the campaign in memory only.
func NewCampaign(r *Runner, store deck.Store, key string) (*Campaign, error) {
	if r.Deck == nil {
		return nil, fmt.Errorf("%w: campaign needs a deck", ErrBadInput)
	}
	c := &Campaign{
		runner:   r,
		deck:     r.Deck.Clone(),
		progress: stage.NewProgress(r.DefaultStage),
		store:    store,
		key:      key,
	}
	c.deck.OnUnlock(func(name string) { c.unlocked = append(c.unlocked, name) })
	if store != nil {
		n, err := deck.Restore(store, key, c.deck)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			c.progress.ResetTo(n)
		}
	}
	return c, nil
}

func (c *Campaign) Stage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress.Current()
}

func (c *Campaign) Deck() deck.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.deck.State()
	st.Stage = c.progress.Current()
	return st
}

// Play runs the current stage. in.Stage is ignored.
func (c *Campaign) Play(in Input, record bool, choose Chooser) (Round, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	in.Stage = c.progress.Current()
	res, err := c.runner.run(in, record, c.deck)
	if err != nil {
		return Round{}, err
	}
	round := Round{Stage: in.Stage, Result: res}
	c.unlocked = nil
	if res.Win {
		c.progress.Increment()
		round.Offers = OfferBenefits(c.deck, util.New(in.Seed+int64(in.Stage)))
		if choose != nil {
			if i := choose(round.Offers); i >= 0 && i < len(round.Offers) {
				b := round.Offers[i]
				if err := ApplyBenefit(c.deck, b); err != nil {
					return Round{}, err
				}
				round.Chosen = &b
			}
		}
	} else {
		c.restart()
	}
	round.Unlocked = c.unlocked
	round.Next = c.progress.Current()
	return round, c.save()
}

// Reset starts the campaign over and saves it.
func (c *Campaign) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restart()
	return c.save()
}

func (c *Campaign) restart() {
	c.progress.Reset()
	c.deck.ResetToDefaults()
}

func (c *Campaign) save() error {
	if c.store == nil {
		return nil
	}
	return deck.Persist(c.store, c.key, c.deck, c.progress.Current())
}
