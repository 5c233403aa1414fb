// Package config holds the EVO runtime configuration. It is loaded once at
// startup and passed by value into each component; nothing reads it globally.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PowerOffPolicy values accepted for the generic "power off" phrase.
const (
	PowerOffHibernate = "hibernate"
	PowerOffAsk       = "ask"
	PowerOffRefuse    = "refuse"
)

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type Config struct {
	AppName string `yaml:"app_name"`
	Version string `yaml:"version"`

	// Seconds EVO stays in conversation mode after waking.
	ConversationTimeoutS int `yaml:"conversation_timeout_s"`

	// Seconds a pending confirmation stays valid. This is the single TTL
	// source for the brain's pending slot.
	ConfirmTimeoutS int `yaml:"confirm_timeout_s"`

	// Text input in standby must be prefixed with the operator name.
	WakeWordRequired bool `yaml:"wake_word_required"`

	// Power actions ask for verbal confirmation before being relayed.
	RequireConfirmForPower bool `yaml:"require_confirm_for_power"`

	// hibernate | ask | refuse
	PowerOffPolicy string `yaml:"power_off_policy"`

	DataDir string  `yaml:"data_dir"`
	Logging Logging `yaml:"logging"`
}

func Default() Config {
	return Config{
		AppName:                "EVO",
		Version:                "1.0.0",
		ConversationTimeoutS:   20,
		ConfirmTimeoutS:        20,
		WakeWordRequired:       true,
		RequireConfirmForPower: true,
		PowerOffPolicy:         PowerOffHibernate,
		DataDir:                defaultDataDir(),
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load returns the defaults overlaid with an optional YAML file and EVO_*
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("EVO_DATA_DIR")); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("EVO_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("EVO_POWER_OFF_POLICY")); v != "" {
		c.PowerOffPolicy = strings.ToLower(v)
	}
}

func (c Config) Validate() error {
	switch c.PowerOffPolicy {
	case PowerOffHibernate, PowerOffAsk, PowerOffRefuse:
	default:
		return fmt.Errorf("invalid power_off_policy: %q", c.PowerOffPolicy)
	}
	if c.ConversationTimeoutS <= 0 {
		return fmt.Errorf("conversation_timeout_s must be positive")
	}
	if c.ConfirmTimeoutS <= 0 {
		return fmt.Errorf("confirm_timeout_s must be positive")
	}
	return nil
}

func (c Config) ConversationTimeout() time.Duration {
	return time.Duration(c.ConversationTimeoutS) * time.Second
}

func (c Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutS) * time.Second
}

// MemoryPath is the JSON fact store location.
func (c Config) MemoryPath() string {
	return filepath.Join(c.DataDir, "memory.json")
}

// StatePath is the sqlite database holding notes and the transcript.
func (c Config) StatePath() string {
	return filepath.Join(c.DataDir, "evo.sqlite")
}

func defaultDataDir() string {
	base := os.Getenv("LOCALAPPDATA")
	if base == "" {
		base = os.Getenv("APPDATA")
	}
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, ".local", "share")
		} else {
			base, _ = os.Getwd()
		}
	}
	return filepath.Join(base, "EVO")
}
