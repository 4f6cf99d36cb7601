package deck_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ropewar/internal/deck"
)

func TestStoresRoundTrip(t *testing.T) {
	stores := map[string]deck.Store{
		"memory": deck.NewMemoryStore(),
		"file":   deck.FileStore{Dir: filepath.Join(t.TempDir(), "saves")},
	}
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			d := newDeck(t)
			require.NoError(t, d.Unlock("golem"))
			_, _ = d.LevelUp("golem")
			require.NoError(t, deck.Persist(s, "slot1", d, 4))

			fresh := newDeck(t)
			stage, err := deck.Restore(s, "slot1", fresh)
			require.NoError(t, err)
			assert.Equal(t, 4, stage)
			assert.Equal(t, d.State(), fresh.State())
		})
	}
}

func TestRestoreWithoutSaveKeepsDeck(t *testing.T) {
	s := deck.FileStore{Dir: t.TempDir()}
	_, err := s.Load("none")
	assert.ErrorIs(t, err, deck.ErrNoState)

	d := newDeck(t)
	before := d.State()
	stage, err := deck.Restore(s, "none", d)
	require.NoError(t, err)
	assert.Zero(t, stage)
	assert.Equal(t, before, d.State())
}

func TestFileStoreRejectsCorruptSave(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("cards: {not: [a list"), 0o644))

	_, err := deck.Restore(deck.FileStore{Dir: dir}, "bad", newDeck(t))
	require.Error(t, err)
	assert.NotErrorIs(t, err, deck.ErrNoState)
}
