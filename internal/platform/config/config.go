package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const FileName = "dojo.yaml"

type Config struct {
	KataRoot     string `yaml:"-"`
	NotesRoot    string `yaml:"-"`
	StateDir     string `yaml:"-"`
	ProgressPath string `yaml:"-"`
	LockPath     string `yaml:"-"`
	DBPath       string `yaml:"-"`
	LogPath      string `yaml:"-"`

	Watch       WatchConfig       `yaml:"watch"`
	Harness     HarnessConfig     `yaml:"harness"`
	Progression ProgressionConfig `yaml:"progression"`
	Generator   GeneratorConfig   `yaml:"generator"`
}

type WatchConfig struct {
	Debounce    time.Duration `yaml:"debounce"`
	TestTimeout time.Duration `yaml:"test_timeout"`
	Grace       time.Duration `yaml:"grace"`
	HintTimeout time.Duration `yaml:"hint_timeout"`
	Ignore      []string      `yaml:"ignore"`
}

type HarnessConfig struct {
	Command []string          `yaml:"command"`
	Env     map[string]string `yaml:"env"`
}

type LevelThreshold struct {
	Name  string `yaml:"name"`
	MinXP int    `yaml:"min_xp"`
}

type ProgressionConfig struct {
	BaseAward   int                `yaml:"base_award"`
	Multipliers map[string]float64 `yaml:"multipliers"`
	Levels      []LevelThreshold   `yaml:"levels"`
	Difficulty  map[string]string  `yaml:"difficulty"`
}

type GeneratorConfig struct {
	Provider    string        `yaml:"provider"`
	Plugin      string        `yaml:"plugin"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	Timeout     time.Duration `yaml:"timeout"`
	HintsPerMin int           `yaml:"hints_per_minute"`
}

// QualityOrder lists quality tiers from least to most friction. Multipliers
// must be non-increasing along it.
var QualityOrder = []string{"first-try", "after-failures", "unverified"}

// New builds the configuration for the given roots. configPath may be empty,
// in which case <notesRoot>/dojo.yaml is read when present.
func New(kataRoot, notesRoot, configPath string) (Config, error) {
	if kataRoot == "" {
		return Config{}, fmt.Errorf("kata root is required")
	}
	if notesRoot == "" {
		return Config{}, fmt.Errorf("notes root is required")
	}
	cfg := Default()
	cfg.KataRoot = kataRoot
	cfg.NotesRoot = notesRoot
	cfg.StateDir = filepath.Join(notesRoot, ".dojo")
	cfg.ProgressPath = filepath.Join(cfg.StateDir, "progress.json")
	cfg.LockPath = filepath.Join(cfg.StateDir, "progress.lock")
	cfg.DBPath = filepath.Join(cfg.StateDir, "dojo.db")
	cfg.LogPath = filepath.Join(cfg.StateDir, "dojo.log")

	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(notesRoot, FileName)
	}
	raw, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Default() Config {
	return Config{
		Watch: WatchConfig{
			Debounce:    400 * time.Millisecond,
			TestTimeout: 20 * time.Second,
			Grace:       2 * time.Second,
			HintTimeout: 3 * time.Second,
			Ignore:      []string{".git", ".dojo", "__pycache__", ".pytest_cache", "*.swp", "*.tmp", "*~", "LOG.md"},
		},
		Harness: HarnessConfig{
			Command: []string{"python3", "-m", "unittest"},
		},
		Progression: ProgressionConfig{
			BaseAward: 25,
			Multipliers: map[string]float64{
				"first-try":      1.0,
				"after-failures": 0.6,
				"unverified":     0.4,
			},
			Levels: []LevelThreshold{
				{Name: "Novice", MinXP: 0},
				{Name: "Apprentice", MinXP: 100},
				{Name: "Journeyman", MinXP: 300},
				{Name: "Expert", MinXP: 600},
				{Name: "Master", MinXP: 1000},
			},
			Difficulty: map[string]string{
				"Novice":     "foundation",
				"Apprentice": "foundation",
				"Journeyman": "intermediate",
				"Expert":     "advanced",
				"Master":     "advanced",
			},
		},
		Generator: GeneratorConfig{
			Provider:    "offline",
			Plugin:      "sensei",
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			Timeout:     8 * time.Second,
			HintsPerMin: 6,
		},
	}
}

func (c Config) Validate() error {
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive")
	}
	if c.Watch.TestTimeout <= 0 || c.Watch.HintTimeout <= 0 {
		return fmt.Errorf("watch timeouts must be positive")
	}
	if c.Watch.Grace < 0 {
		return fmt.Errorf("watch.grace must not be negative")
	}
	if len(c.Harness.Command) == 0 {
		return fmt.Errorf("harness.command is required")
	}
	if err := c.Progression.Validate(); err != nil {
		return err
	}
	switch c.Generator.Provider {
	case "offline", "plugin", "openai":
	default:
		return fmt.Errorf("unknown generator provider %q", c.Generator.Provider)
	}
	if c.Generator.Timeout <= 0 {
		return fmt.Errorf("generator.timeout must be positive")
	}
	return nil
}

func (p ProgressionConfig) Validate() error {
	if p.BaseAward < 0 {
		return fmt.Errorf("progression.base_award must not be negative")
	}
	if len(p.Levels) != 5 {
		return fmt.Errorf("progression.levels must define five tiers, got %d", len(p.Levels))
	}
	if p.Levels[0].MinXP != 0 {
		return fmt.Errorf("progression.levels must start at 0 xp")
	}
	for i := 1; i < len(p.Levels); i++ {
		if p.Levels[i].MinXP <= p.Levels[i-1].MinXP {
			return fmt.Errorf("progression.levels must be strictly increasing: %s", p.Levels[i].Name)
		}
	}
	prev := -1.0
	for i, tier := range QualityOrder {
		m, ok := p.Multipliers[tier]
		if !ok {
			return fmt.Errorf("progression.multipliers missing %q", tier)
		}
		if m < 0 {
			return fmt.Errorf("progression.multipliers[%s] must not be negative", tier)
		}
		if i > 0 && m > prev {
			return fmt.Errorf("progression.multipliers[%s] exceeds a lower-friction tier", tier)
		}
		prev = m
	}
	return nil
}
