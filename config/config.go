// Package config loads quizvoice settings from a YAML file with environment
// overrides. Flags still win; the file only replaces defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type SpeechConfig struct {
	// Backend selects the synthesis transport: auto, live, grpc or mock.
	// auto picks live for live-capable models and grpc otherwise.
	Backend string `yaml:"backend"`
	Model   string `yaml:"model"`
	Voice   string `yaml:"voice"`
}

type PlaybackConfig struct {
	// Player is "auto" or an explicit player command such as "ffplay".
	Player   string `yaml:"player"`
	AutoPlay bool   `yaml:"auto_play"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path of the SQLite database. Empty means the per-user default.
	Path string `yaml:"path"`
}

type ExportConfig struct {
	// Dir receives exported WAV files. Empty means the working directory.
	Dir string `yaml:"dir"`
}

type Config struct {
	Speech   SpeechConfig   `yaml:"speech"`
	Playback PlaybackConfig `yaml:"playback"`
	Cache    CacheConfig    `yaml:"cache"`
	Export   ExportConfig   `yaml:"export"`
	LogFile  string         `yaml:"log_file"`
}

// Default returns the built-in configuration. Empty model and voice mean
// the speech package defaults.
func Default() Config {
	return Config{
		Speech: SpeechConfig{
			Backend: "auto",
		},
		Playback: PlaybackConfig{
			Player: "auto",
		},
		Cache: CacheConfig{
			Enabled: true,
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "quizvoice", "config.yaml"), nil
}

// Load reads the config file at path over the defaults. An empty path means
// defaults only; a named file that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDefault loads the per-user config file when it exists, and plain
// defaults when it does not.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		applyEnvOverrides(&cfg)
		if err := validate(cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	return Load(path)
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Speech.Backend, "QUIZVOICE_BACKEND")
	overrideString(&cfg.Speech.Model, "QUIZVOICE_MODEL")
	overrideString(&cfg.Speech.Voice, "QUIZVOICE_VOICE")
	overrideString(&cfg.Playback.Player, "QUIZVOICE_PLAYER")
	overrideBool(&cfg.Playback.AutoPlay, "QUIZVOICE_AUTO_PLAY")
	overrideBool(&cfg.Cache.Enabled, "QUIZVOICE_CACHE_ENABLED")
	overrideString(&cfg.Cache.Path, "QUIZVOICE_CACHE_PATH")
	overrideString(&cfg.Export.Dir, "QUIZVOICE_EXPORT_DIR")
	overrideString(&cfg.LogFile, "QUIZVOICE_LOG_FILE")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func validate(cfg Config) error {
	switch cfg.Speech.Backend {
	case "auto", "live", "grpc", "mock":
		// ok
	default:
		return errors.New("speech.backend must be one of auto|live|grpc|mock")
	}
	if cfg.Playback.Player == "" {
		return errors.New("playback.player must not be empty (use \"auto\")")
	}
	return nil
}
