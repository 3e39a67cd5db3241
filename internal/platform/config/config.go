package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "ascend"

type Rank struct {
	Title         string `yaml:"title"`
	MinExperience int    `yaml:"min_experience"`
}

// Settings are overridable from ASCEND_* environment variables.
type Settings struct {
	UserID   string `envconfig:"USER_ID" default:"me"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	FocusDuration time.Duration `envconfig:"FOCUS_DURATION" default:"25m"`
	RestDuration  time.Duration `envconfig:"REST_DURATION" default:"90s"`
	TickUnit      time.Duration `envconfig:"TICK_UNIT" default:"1s"`

	// Generation service (optional; suggestions degrade to none without it)
	GeneratorPlugin  string        `envconfig:"GENERATOR_PLUGIN"`
	OpenAIAPIKey     string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel      string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	GeneratorTimeout time.Duration `envconfig:"GENERATOR_TIMEOUT" default:"8s"`

	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

type Config struct {
	DataDir string
	// JournalDir is the root for workout notes.
	JournalDir        string
	DBPath            string
	ActiveSessionPath string
	ConfigFile        string
	LogFile           string
	Settings
	Ranks []Rank
}

type fileConfig struct {
	Ranks []Rank `yaml:"ranks"`
}

func DefaultRanks() []Rank {
	return []Rank{
		{Title: "Recruit", MinExperience: 0},
		{Title: "Apprentice", MinExperience: 500},
		{Title: "Adept", MinExperience: 1500},
		{Title: "Veteran", MinExperience: 4000},
		{Title: "Master", MinExperience: 10000},
		{Title: "Legend", MinExperience: 25000},
	}
}

// New derives every path from the data directory and applies defaults.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	stateDir := filepath.Join(dataDir, ".ascend")
	cfg := Config{
		DataDir:           dataDir,
		JournalDir:        dataDir,
		DBPath:            filepath.Join(stateDir, "ascend.db"),
		ActiveSessionPath: filepath.Join(stateDir, "active-session.json"),
		ConfigFile:        filepath.Join(stateDir, "config.yaml"),
		LogFile:           filepath.Join(stateDir, "ascend.log"),
		Ranks:             DefaultRanks(),
	}
	if err := envconfig.Process(envPrefix, &cfg.Settings); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	return cfg, nil
}

// Load is New plus the optional rank table in .ascend/config.yaml.
func Load(dataDir string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	raw, err := os.ReadFile(cfg.ConfigFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config file: %w", err)
	default:
		file := fileConfig{}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("decode config file: %w", err)
		}
		if len(file.Ranks) > 0 {
			cfg.Ranks = file.Ranks
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.FocusDuration <= 0 {
		return fmt.Errorf("focus duration must be positive")
	}
	if c.RestDuration <= 0 {
		return fmt.Errorf("rest duration must be positive")
	}
	if c.TickUnit <= 0 {
		return fmt.Errorf("tick unit must be positive")
	}
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if len(c.Ranks) == 0 {
		return fmt.Errorf("at least one rank is required")
	}
	sort.SliceStable(c.Ranks, func(i, j int) bool { return c.Ranks[i].MinExperience < c.Ranks[j].MinExperience })
	for _, rank := range c.Ranks {
		if strings.TrimSpace(rank.Title) == "" {
			return fmt.Errorf("rank title is required")
		}
		if rank.MinExperience < 0 {
			return fmt.Errorf("rank %q threshold must be non-negative", rank.Title)
		}
	}
	if c.Ranks[0].MinExperience != 0 {
		return fmt.Errorf("lowest rank must start at 0 experience")
	}
	return nil
}
