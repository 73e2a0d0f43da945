// Package config loads Muse configuration from YAML with environment
// overrides for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Muse configuration.
type Config struct {
	Name string `yaml:"name"`

	// StateDir is where identity files, stories, logs, and the run
	// ledger live.
	StateDir string `yaml:"state_dir"`

	LLM       LLMConfig       `yaml:"llm"`
	Moltbook  MoltbookConfig  `yaml:"moltbook"`
	Search    SearchConfig    `yaml:"search"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Skills    SkillsConfig    `yaml:"skills"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LLMConfig configures the model gateway.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, anthropic, gemini
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	Timeout     string  `yaml:"timeout"`
}

// MoltbookConfig configures the social platform client.
type MoltbookConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`

	// Submolt is where stories are shared by default.
	Submolt string `yaml:"submolt"`
}

// SearchConfig configures the web search provider.
type SearchConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	MaxSearches int    `yaml:"max_searches"`
	MaxResults  int    `yaml:"max_results"`
}

// HeartbeatConfig configures the wake cadence.
type HeartbeatConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"`
}

// SkillsConfig configures the writing skills directory.
type SkillsConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:     "Muse",
		StateDir: ".muse",

		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.4,
			Timeout:     "60s",
		},

		Moltbook: MoltbookConfig{
			BaseURL: "https://www.moltbook.com/api/v1",
			Timeout: "15s",
			Submolt: "stories",
		},

		Search: SearchConfig{
			BaseURL:     "https://api.tavily.com",
			MaxSearches: 3,
			MaxResults:  5,
		},

		Heartbeat: HeartbeatConfig{
			IntervalMinutes: 30,
		},

		Skills: SkillsConfig{
			Dir:   "skills",
			Watch: true,
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides. Provider keys
// are checked in priority order; the last one found wins.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "anthropic"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}

	if model := os.Getenv("MUSE_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if key := os.Getenv("MOLTBOOK_API_KEY"); key != "" {
		c.Moltbook.APIKey = key
	}
	if key := os.Getenv("TAVILY_API_KEY"); key != "" {
		c.Search.APIKey = key
	}
	if dir := os.Getenv("MUSE_STATE_DIR"); dir != "" {
		c.StateDir = dir
	}
	if os.Getenv("MUSE_DEBUG") == "1" {
		c.Logging.DebugMode = true
	}
}

// GetLLMTimeout returns the model call timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetMoltbookTimeout returns the platform HTTP timeout as a duration.
func (c *Config) GetMoltbookTimeout() time.Duration {
	d, err := time.ParseDuration(c.Moltbook.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GetHeartbeatInterval returns the beat interval as a duration.
func (c *Config) GetHeartbeatInterval() time.Duration {
	if c.Heartbeat.IntervalMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Heartbeat.IntervalMinutes) * time.Minute
}

// ValidProviders lists supported model providers.
var ValidProviders = []string{"openai", "anthropic", "gemini"}

// Validate checks the configuration for required settings.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set OPENAI_API_KEY, ANTHROPIC_API_KEY, or GEMINI_API_KEY)")
	}

	valid := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}
	return nil
}

// LedgerPath returns the run ledger database path under the state dir.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.StateDir, "muse.db")
}
