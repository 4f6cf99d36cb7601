// Package deck tracks owned cards: their level, copy count and the order in
// which they were unlocked.
package deck

import (
	"errors"
	"fmt"
	"slices"

	"ropewar/internal/config"
)

var ErrUnknownCard = errors.New("unknown card")

const MaxLevel = 3

type Card struct {
	Name  string `yaml:"name" json:"name"`
	Level int    `yaml:"level" json:"level"`
	Count int    `yaml:"count" json:"count"`
}

// Unlocked reports whether at least one copy is owned.
func (c Card) Unlocked() bool { return c.Count > 0 }

// State is the persisted form of a Deck. Stage is the campaign stage the
// deck was saved at; 0 when no campaign owns the save.
type State struct {
	Stage int      `yaml:"stage,omitempty" json:"stage"`
	Cards []Card   `yaml:"cards" json:"cards"`
	Order []string `yaml:"order" json:"order"`
}

// UnlockListener is told about each card the first time it is unlocked.
type UnlockListener func(name string)

type Deck struct {
	cards     map[string]*Card
	names     []string
	order     []string
	defaults  []string
	listeners []UnlockListener
}

// New builds a deck from the data file. Cards with a count start unlocked in
// definition order.
func New(dc *config.DeckConfig) *Deck {
	d := &Deck{cards: map[string]*Card{}, defaults: slices.Clone(dc.Defaults)}
	for _, cd := range dc.Cards {
		if cd.Name == "" || d.cards[cd.Name] != nil {
			continue
		}
		c := &Card{Name: cd.Name, Level: min(max(cd.Level, 1), MaxLevel), Count: max(cd.Count, 0)}
		d.cards[c.Name] = c
		d.names = append(d.names, c.Name)
		if c.Unlocked() {
			d.order = append(d.order, c.Name)
		}
	}
	return d
}

// Clone copies cards, order and defaults. Listeners are not copied.
func (d *Deck) Clone() *Deck {
	out := &Deck{
		cards:    make(map[string]*Card, len(d.cards)),
		names:    slices.Clone(d.names),
		order:    slices.Clone(d.order),
		defaults: slices.Clone(d.defaults),
	}
	for n, c := range d.cards {
		cp := *c
		out.cards[n] = &cp
	}
	return out
}

// Names lists every card in definition order.
func (d *Deck) Names() []string { return slices.Clone(d.names) }

func (d *Deck) OnUnlock(l UnlockListener) {
	if l != nil {
		d.listeners = append(d.listeners, l)
	}
}

func (d *Deck) card(name string) (*Card, error) {
	c, ok := d.cards[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCard, name)
	}
	return c, nil
}

func (d *Deck) Card(name string) (Card, error) {
	c, err := d.card(name)
	if err != nil {
		return Card{}, err
	}
	return *c, nil
}

// Level returns the card level, or 0 for a locked card.
func (d *Deck) Level(name string) (int, error) {
	c, err := d.card(name)
	if err != nil {
		return 0, err
	}
	if !c.Unlocked() {
		return 0, nil
	}
	return c.Level, nil
}

// Unlock grants the first copy. Already unlocked cards are left alone.
func (d *Deck) Unlock(name string) error {
	c, err := d.card(name)
	if err != nil {
		return err
	}
	if c.Unlocked() {
		return nil
	}
	c.Count = 1
	if !slices.Contains(d.order, name) {
		d.order = append(d.order, name)
		for _, l := range d.listeners {
			l(name)
		}
	}
	return nil
}

// LevelUp raises an unlocked card by one level. It reports false at MaxLevel
// or for a locked card.
func (d *Deck) LevelUp(name string) (bool, error) {
	c, err := d.card(name)
	if err != nil {
		return false, err
	}
	if !c.Unlocked() || c.Level >= MaxLevel {
		return false, nil
	}
	c.Level++
	return true, nil
}

// Add grants one more copy of an unlocked card.
func (d *Deck) Add(name string) (bool, error) {
	c, err := d.card(name)
	if err != nil {
		return false, err
	}
	if !c.Unlocked() {
		return false, nil
	}
	c.Count++
	return true, nil
}

func (d *Deck) Unlocked() []string { return slices.Clone(d.order) }

// Locked lists locked cards in definition order.
func (d *Deck) Locked() []string {
	var out []string
	for _, n := range d.names {
		if !d.cards[n].Unlocked() {
			out = append(out, n)
		}
	}
	return out
}

// ResetToDefaults puts every card back to level 1 with only the default cards
// owned, in their listed order.
func (d *Deck) ResetToDefaults() {
	for _, n := range d.names {
		c := d.cards[n]
		c.Level = 1
		c.Count = 0
		if slices.Contains(d.defaults, n) {
			c.Count = 1
		}
	}
	d.order = d.order[:0]
	for _, n := range d.defaults {
		if c, ok := d.cards[n]; ok && c.Unlocked() && !slices.Contains(d.order, n) {
			d.order = append(d.order, n)
		}
	}
}

func (d *Deck) State() State {
	st := State{Order: slices.Clone(d.order)}
	for _, n := range d.names {
		st.Cards = append(st.Cards, *d.cards[n])
	}
	return st
}

// Apply overwrites the deck with a saved state. Unknown cards are ignored so
// that an old save survives a trimmed card list.
func (d *Deck) Apply(st State) {
	for _, sc := range st.Cards {
		if c, ok := d.cards[sc.Name]; ok {
			c.Level = min(max(sc.Level, 1), MaxLevel)
			c.Count = max(sc.Count, 0)
		}
	}
	d.order = d.order[:0]
	for _, n := range st.Order {
		if c, ok := d.cards[n]; ok && c.Unlocked() && !slices.Contains(d.order, n) {
			d.order = append(d.order, n)
		}
	}
	for _, n := range d.names {
		if d.cards[n].Unlocked() && !slices.Contains(d.order, n) {
			d.order = append(d.order, n)
		}
	}
}
