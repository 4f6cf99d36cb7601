package config

type SkillsConfig struct {
	Archer   DamageSkill  `yaml:"archer"`
	Monk     DamageSkill  `yaml:"monk"`
	Golem    DamageSkill  `yaml:"golem"`
	Hero     HeroSkill    `yaml:"hero"`
	Warrior  WarriorSkill `yaml:"warrior"`
	Goblin   DamageSkill  `yaml:"goblin"`
	Minotaur DamageSkill  `yaml:"minotaur"`
	Dragon   DamageSkill  `yaml:"dragon"`
	Healer   DamageSkill  `yaml:"healer"`
	Demon    DemonSkill   `yaml:"demon"`
}

// DamageSkill covers both damage and heal skills: amount = atk * magnification.
type DamageSkill struct {
	Magnification float64 `yaml:"magnification"`
	Note          string  `yaml:"note"`
}

type HeroSkill struct {
	HPThresholdPercent float64 `yaml:"hp_threshold_percent"`
	AttackMultiplier   float64 `yaml:"attack_multiplier"`
	BuffID             string  `yaml:"buff_id"`
}

type WarriorSkill struct {
	MinAllies        int     `yaml:"min_allies"`
	AttackMultiplier float64 `yaml:"attack_multiplier"`
	BuffID           string  `yaml:"buff_id"`
}

type DemonSkill struct {
	HealAll      float64 `yaml:"heal_all"`
	DamageAll    float64 `yaml:"damage_all"`
	DamageSingle float64 `yaml:"damage_single"`
}
