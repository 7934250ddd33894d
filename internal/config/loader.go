package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadTetris loads Tetris configuration.
// Search order: customPath -> ~/.arcade/configs/tetris.yaml -> ./configs/tetris.yaml -> embedded default
// Files only need to set the values they change; the rest keep their defaults.
func LoadTetris(customPath string) (TetrisConfig, error) {
	// Try custom path first
	if customPath != "" {
		cfg := DefaultTetrisConfig()
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		if err := cfg.Validate(); err != nil {
			return cfg, fmt.Errorf("config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	candidates := []string{userConfigPath("tetris.yaml"), filepath.Join("configs", "tetris.yaml")}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if cfg, ok := tryLoad(path); ok {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg := DefaultTetrisConfig()
	if err := yaml.Unmarshal(defaultTetrisYAML, &cfg); err != nil || cfg.Validate() != nil {
		return DefaultTetrisConfig(), nil // Fallback to hardcoded if embed is broken
	}
	return cfg, nil
}

// tryLoad reads an optional config file. Missing or broken files are skipped.
func tryLoad(path string) (TetrisConfig, bool) {
	cfg := DefaultTetrisConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, false
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false
	}
	if err := cfg.Validate(); err != nil {
		return cfg, false
	}
	return cfg, true
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}

// ApplyTetrisPreset modifies the config based on a difficulty preset.
// The fixed preset leaves the config untouched.
func ApplyTetrisPreset(cfg *TetrisConfig, preset DifficultyPreset) {
	if IsFixedPreset(preset) {
		return
	}
	cfg.Timing.InitialFallMs = InitialFallForPreset(preset)
	if cfg.Timing.MinFallMs > cfg.Timing.InitialFallMs {
		cfg.Timing.MinFallMs = cfg.Timing.InitialFallMs
	}
}
