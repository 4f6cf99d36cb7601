package deck

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNoState is returned by Load before anything was saved.
var ErrNoState = errors.New("no saved deck")

// Store persists deck state under a key (one save slot per key).
type Store interface {
	Load(key string) (State, error)
	Save(key string, st State) error
}

type MemoryStore struct {
	mu    sync.Mutex
	saves map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{saves: map[string]State{}}
}

func (m *MemoryStore) Load(key string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.saves[key]
	if !ok {
		return State{}, fmt.Errorf("%s: %w", key, ErrNoState)
	}
	return st, nil
}

func (m *MemoryStore) Save(key string, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[key] = st
	return nil
}

// FileStore keeps one YAML file per key in Dir.
type FileStore struct {
	Dir string
}

func (f FileStore) path(key string) string {
	return filepath.Join(f.Dir, key+".yaml")
}

func (f FileStore) Load(key string) (State, error) {
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return State{}, fmt.Errorf("%s: %w", key, ErrNoState)
	}
	if err != nil {
		return State{}, err
	}
	var st State
	if err := yaml.Unmarshal(b, &st); err != nil {
		return State{}, fmt.Errorf("%s: %w", f.path(key), err)
	}
	return st, nil
}

func (f FileStore) Save(key string, st State) error {
	b, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path(key))
}

// Restore loads key into d and returns the saved stage. A missing save
// leaves d untouched and reports stage 0.
func Restore(s Store, key string, d *Deck) (int, error) {
	st, err := s.Load(key)
	if errors.Is(err, ErrNoState) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	d.Apply(st)
	return st.Stage, nil
}

// Persist saves d under key together with the campaign stage.
func Persist(s Store, key string, d *Deck, stage int) error {
	st := d.State()
	st.Stage = stage
	return s.Save(key, st)
}
