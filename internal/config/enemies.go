package config

type EnemiesConfig struct {
	Enemies []EnemyDef `yaml:"enemies"`
}

// EnemyDef has a single fixed level. Cost is spent from a rope's enemy budget
// by the stage generator.
type EnemyDef struct {
	Name        string   `yaml:"name"`
	DisplayName string   `yaml:"display_name"`
	Skill       string   `yaml:"skill"`
	Cost        int      `yaml:"cost"`
	Stats       LevelDef `yaml:",inline"`
	Note        string   `yaml:"note"`
}
