package config

type CharactersConfig struct {
	Characters []CharacterDef `yaml:"characters"`
}

// CharacterDef is a card-bound allied character; Levels[0] is level 1.
type CharacterDef struct {
	Name        string     `yaml:"name"`
	DisplayName string     `yaml:"display_name"`
	Skill       string     `yaml:"skill"`
	Levels      []LevelDef `yaml:"levels"`
	Note        string     `yaml:"note"`
}

type LevelDef struct {
	HP               int     `yaml:"hp"`
	Atk              int     `yaml:"atk"`
	HasCooldownSkill bool    `yaml:"has_cooldown_skill"`
	SkillCooldown    float64 `yaml:"skill_cooldown"`
	SkillText        string  `yaml:"skill_text"`
}
