// Package config loads match configuration from YAML via the
// viper-then-yaml.v3 two-stage decode used elsewhere in this codebase:
// viper reads the file into a generic outer envelope, which is
// re-marshaled and decoded into a precisely typed inner struct. Keeping
// the two stages separate lets the outer envelope carry a "kind"
// selector without viper's own mapstructure tags leaking into the
// match config's shape.
//
// Grounded on reinforcement/learning.go's FromYaml/OuterConfig/TrainingConfig.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// OuterConfig is the generic envelope every match config file is
// wrapped in, letting future config kinds (tournament, exhibition)
// share one file format without changing this package's public type.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// BotConfig describes one seat in the match.
type BotConfig struct {
	Image   string `yaml:"image"`
	Name    string `yaml:"name"`
	Args    []string `yaml:"args"`
}

// MatchConfig holds everything needed to run a single match.
type MatchConfig struct {
	Width      int         `yaml:"width"`
	Height     int         `yaml:"height"`
	Seed       int64       `yaml:"seed"`
	Bots       []BotConfig `yaml:"bots"`
	// viper lowercases every key it reads, so the multi-word tags below
	// are lowercase; a file may still spell them frameTimeout etc.
	InitTimeout    string `yaml:"inittimeout"`
	FrameTimeout   string `yaml:"frametimeout"`
	ReplayPath string      `yaml:"replaypath"`
	// TimeoutPolicy selects how a bot's unresponsive turn is handled:
	// "fatal" aborts the match immediately (the default, matching the
	// original engine), "demote_dead" lets the offending bot play out
	// the match as a dead (all-Still) participant instead.
	TimeoutPolicy string `yaml:"timeoutpolicy"`
}

// InitTimeoutDuration parses InitTimeout, defaulting to 30s like the
// original bot-adapter init handshake.
func (c *MatchConfig) InitTimeoutDuration() (time.Duration, error) {
	return parseDurationOrDefault(c.InitTimeout, 30*time.Second)
}

// FrameTimeoutDuration parses FrameTimeout, defaulting to 5s like the
// original per-turn bot-adapter timeout.
func (c *MatchConfig) FrameTimeoutDuration() (time.Duration, error) {
	return parseDurationOrDefault(c.FrameTimeout, 5*time.Second)
}

func parseDurationOrDefault(val string, def time.Duration) (time.Duration, error) {
	if val == "" {
		return def, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("config: invalid duration %q: %w", val, err)
	}
	return d, nil
}

// FromYaml loads a MatchConfig from path, following the outer-envelope
// decode pattern: viper unmarshals into OuterConfig, then the Def
// field is re-marshaled and decoded with yaml.v3 into MatchConfig.
func FromYaml(path string) (*MatchConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))

	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	outer := &OuterConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, fmt.Errorf("config: unmarshal envelope: %w", err)
	}

	spec, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, fmt.Errorf("config: remarshal def: %w", err)
	}

	match := &MatchConfig{}
	if err := yaml.Unmarshal(spec, match); err != nil {
		return nil, fmt.Errorf("config: unmarshal match config: %w", err)
	}

	return match, nil
}
