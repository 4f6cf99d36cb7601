package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ropewar/internal/config"
)

func TestDefaultBundle(t *testing.T) {
	b, err := config.Default()
	require.NoError(t, err)

	require.NotEmpty(t, b.Stages.Stages)
	assert.Equal(t, 3, b.Stages.Stages[0].Ropes)
	assert.Equal(t, 6, b.Stages.Stages[0].MaxTotalCost)
	assert.Equal(t, 0.1, b.Rules.Tick)
	assert.Equal(t, 3.0, b.Rules.CaptureLimit)
	assert.Equal(t, []string{"soldier", "archer", "monk"}, b.Deck.Defaults)
	assert.Equal(t, 80.0, b.Skills.Hero.HPThresholdPercent)
}

func TestLoadAllFromDir(t *testing.T) {
	b, err := config.LoadAll("assets")
	require.NoError(t, err)
	assert.NotEmpty(t, b.Characters.Characters)
	assert.NotEmpty(t, b.Enemies.Enemies)
}

func copyAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := os.ReadDir("assets")
	require.NoError(t, err)
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join("assets", e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, e.Name()), b, 0o644))
	}
	return dir
}

func TestLoadAllNamesBrokenFile(t *testing.T) {
	dir := copyAssets(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte("tick: 0.1\nbogus_field: 1\n"), 0o644))

	_, err := config.LoadAll(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules.yaml")
}

func TestLoadAllMissingFile(t *testing.T) {
	dir := copyAssets(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "stages.yaml")))

	_, err := config.LoadAll(dir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	b := &config.Bundle{
		Characters: config.CharactersConfig{Characters: []config.CharacterDef{
			{Name: "soldier", Levels: []config.LevelDef{{HP: 10, Atk: 1}}},
			{Name: "soldier", Levels: []config.LevelDef{{HP: 0, Atk: 1}}},
			{Name: "archer", Levels: []config.LevelDef{{HP: 10, Atk: 1, HasCooldownSkill: true}}},
		}},
		Enemies: config.EnemiesConfig{Enemies: []config.EnemyDef{
			{Name: "goblin", Stats: config.LevelDef{HP: 10, Atk: -1}},
		}},
		Rules: config.RulesConfig{Tick: 0.1, TugInterval: 1},
	}

	err := b.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		`duplicate name "soldier"`,
		`character "soldier" level 1: hp must be positive`,
		"positive skill_cooldown",
		`enemy "goblin": atk must not be negative`,
		`enemy "goblin": cost must be positive`,
		"capture_limit must be positive",
		"at least one stage required",
	} {
		assert.Contains(t, msg, want)
	}
}
