// Package config provides YAML-based game configuration loading and
// difficulty presets for the arcade.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// TetrisConfig contains all configuration for the Tetris game.
type TetrisConfig struct {
	Board   TetrisBoard   `yaml:"board"`
	Timing  TetrisTiming  `yaml:"timing"`
	Scoring TetrisScoring `yaml:"scoring"`
}

// TetrisBoard defines the well size in cells.
type TetrisBoard struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// TetrisTiming defines the gravity curve, in milliseconds.
type TetrisTiming struct {
	InitialFallMs int `yaml:"initial_fall_ms"`
	MinFallMs     int `yaml:"min_fall_ms"`
	FallStepMs    int `yaml:"fall_step_ms"`
}

// TetrisScoring defines points and level progression.
type TetrisScoring struct {
	LinePoints    int `yaml:"line_points"`
	LinesPerLevel int `yaml:"lines_per_level"`
}

// Validate checks that every value is usable by the engine.
func (c TetrisConfig) Validate() error {
	var errs []error
	check := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}

	check("board.width", c.Board.Width)
	check("board.height", c.Board.Height)
	check("timing.initial_fall_ms", c.Timing.InitialFallMs)
	check("timing.min_fall_ms", c.Timing.MinFallMs)
	if c.Timing.FallStepMs < 0 {
		errs = append(errs, fmt.Errorf("timing.fall_step_ms must not be negative, got %d", c.Timing.FallStepMs))
	}
	check("scoring.line_points", c.Scoring.LinePoints)
	check("scoring.lines_per_level", c.Scoring.LinesPerLevel)

	if c.Timing.MinFallMs > c.Timing.InitialFallMs {
		errs = append(errs, fmt.Errorf("timing.min_fall_ms (%d) exceeds timing.initial_fall_ms (%d)",
			c.Timing.MinFallMs, c.Timing.InitialFallMs))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid tetris config: %w", errors.Join(errs...))
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// IsFixedPreset returns true if the preset keeps the configured timing.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ParsePreset validates a preset name. An empty name means fixed, so the
// config file's timing is used as is.
func ParsePreset(name string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return DifficultyFixed, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", name)
	}
}

// InitialFallForPreset returns the level-1 fall threshold for a preset.
func InitialFallForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyEasy:
		return 700
	case DifficultyHard:
		return 300
	default:
		return 500
	}
}
