package config

type RulesConfig struct {
	Tick                float64 `yaml:"tick"`
	MatchTime           float64 `yaml:"match_time"`
	TugMultiplier       float64 `yaml:"tug_multiplier"`
	TugInterval         float64 `yaml:"tug_interval"`
	MoveSpeedMultiplier float64 `yaml:"move_speed_multiplier"`
	CaptureLimit        float64 `yaml:"capture_limit"`
}

type StagesConfig struct {
	DefaultStage      int        `yaml:"default_stage"`
	UpgradeChance     float64    `yaml:"upgrade_chance"`
	MaxEnemiesPerRope int        `yaml:"max_enemies_per_rope"`
	MinX              float64    `yaml:"min_x"`
	MaxX              float64    `yaml:"max_x"`
	Stages            []StageDef `yaml:"stages"`
}

type StageDef struct {
	Ropes        int    `yaml:"ropes"`
	MaxTotalCost int    `yaml:"max_total_cost"`
	Note         string `yaml:"note"`
}

type DeckConfig struct {
	Defaults []string  `yaml:"defaults"`
	Cards    []CardDef `yaml:"cards"`
}

type CardDef struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
	Count int    `yaml:"count"`
}
