package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed assets/*.yaml
var defaultAssets embed.FS

// Bundle is every data file the simulation needs.
type Bundle struct {
	Characters CharactersConfig
	Enemies    EnemiesConfig
	Skills     SkillsConfig
	Rules      RulesConfig
	Stages     StagesConfig
	Deck       DeckConfig
}

func loadYAML(fsys fs.FS, name string, out any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// LoadAll reads the data files from dir and validates them.
func LoadAll(dir string) (*Bundle, error) {
	return LoadFS(os.DirFS(dir))
}

// Default returns the data set shipped with the binary.
func Default() (*Bundle, error) {
	sub, err := fs.Sub(defaultAssets, "assets")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

func LoadFS(fsys fs.FS) (*Bundle, error) {
	var b Bundle
	files := []struct {
		name string
		out  any
	}{
		{"characters.yaml", &b.Characters},
		{"enemies.yaml", &b.Enemies},
		{"skills.yaml", &b.Skills},
		{"rules.yaml", &b.Rules},
		{"stages.yaml", &b.Stages},
		{"deck.yaml", &b.Deck},
	}
	for _, f := range files {
		if err := loadYAML(fsys, f.name, f.out); err != nil {
			return nil, err
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate reports every problem found, joined.
func (b *Bundle) Validate() error {
	var errs []error
	seen := map[string]bool{}
	for _, c := range b.Characters.Characters {
		if c.Name == "" {
			errs = append(errs, errors.New("character with empty name"))
			continue
		}
		if seen[c.Name] {
			errs = append(errs, fmt.Errorf("duplicate name %q", c.Name))
		}
		seen[c.Name] = true
		if len(c.Levels) == 0 || len(c.Levels) > 3 {
			errs = append(errs, fmt.Errorf("character %q: want 1..3 levels, got %d", c.Name, len(c.Levels)))
		}
		for i, lv := range c.Levels {
			if err := lv.validate(); err != nil {
				errs = append(errs, fmt.Errorf("character %q level %d: %w", c.Name, i+1, err))
			}
		}
	}
	for _, e := range b.Enemies.Enemies {
		if e.Name == "" {
			errs = append(errs, errors.New("enemy with empty name"))
			continue
		}
		if seen[e.Name] {
			errs = append(errs, fmt.Errorf("duplicate name %q", e.Name))
		}
		seen[e.Name] = true
		if err := e.Stats.validate(); err != nil {
			errs = append(errs, fmt.Errorf("enemy %q: %w", e.Name, err))
		}
		if e.Cost <= 0 {
			errs = append(errs, fmt.Errorf("enemy %q: cost must be positive", e.Name))
		}
	}
	r := b.Rules
	if r.Tick <= 0 {
		errs = append(errs, errors.New("rules: tick must be positive"))
	}
	if r.CaptureLimit <= 0 {
		errs = append(errs, errors.New("rules: capture_limit must be positive"))
	}
	if r.TugInterval <= 0 {
		errs = append(errs, errors.New("rules: tug_interval must be positive"))
	}
	if len(b.Stages.Stages) == 0 {
		errs = append(errs, errors.New("stages: at least one stage required"))
	}
	for i, st := range b.Stages.Stages {
		if st.Ropes <= 0 {
			errs = append(errs, fmt.Errorf("stage %d: ropes must be positive", i+1))
		}
	}
	return errors.Join(errs...)
}

func (lv LevelDef) validate() error {
	switch {
	case lv.HP <= 0:
		return errors.New("hp must be positive")
	case lv.Atk < 0:
		return errors.New("atk must not be negative")
	case lv.HasCooldownSkill && lv.SkillCooldown <= 0:
		return errors.New("cooldown skill needs a positive skill_cooldown")
	}
	return nil
}
