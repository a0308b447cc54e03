// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game      GameConfig      `toml:"game"`
	Narration NarrationConfig `toml:"narration"`
}

// GameConfig maps game-related settings.
type GameConfig struct {
	Learner *string `toml:"learner"`
	Words   *string `toml:"words"`
}

// NarrationConfig maps the speech command settings.
type NarrationConfig struct {
	Command       *string `toml:"command"`
	Rate          *int    `toml:"rate"`
	Pitch         *int    `toml:"pitch"`
	Voice         *string `toml:"voice"`
	RepeatAfterMs *int    `toml:"repeat-after-ms"`
	Mute          *bool   `toml:"mute"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
