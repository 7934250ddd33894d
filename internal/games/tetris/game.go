package tetris

import (
	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/registry"
)

// GameID is the registry identifier of the game.
const GameID = "tetris"

// gameplayActions are the actions that reach the simulation, in the order
// they are applied within one tick.
var gameplayActions = []core.Action{
	core.ActionRestart,
	core.ActionRotate,
	core.ActionLeft,
	core.ActionRight,
	core.ActionDown,
	core.ActionDrop,
}

// Game adapts the Engine to the arcade platform: it maps input frames to
// engine commands, advances gravity once per tick and draws the well.
type Game struct {
	engine *Engine
	cfg    config.TetrisConfig
	preset config.DifficultyPreset
	seed   int64
	tick   uint64 // Simulated ticks; paused ticks are not counted
	dt     int    // Milliseconds per tick
	rate   int

	events []ReplayEvent

	screenW int
	screenH int

	paused   bool
	tooSmall bool

	fixedConfig bool // Skip config loading (replays)
	configErr   error
}

// Package-level variables for config/difficulty
var (
	configPath       string
	difficultyPreset string
)

// SetConfigPath sets a custom config file for games created afterwards.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset for games created afterwards.
func SetDifficultyPreset(preset string) {
	difficultyPreset = preset
}

// NewGame creates a Tetris game that loads its configuration on Reset.
func NewGame() *Game {
	return &Game{}
}

// NewWithConfig creates a game with an explicit configuration. Config
// files and presets are ignored.
func NewWithConfig(cfg config.TetrisConfig) *Game {
	return &Game{cfg: cfg, fixedConfig: true}
}

func init() {
	registry.Register(GameID, func() registry.Game {
		return NewGame()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return GameID
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Tetris"
}

// Reset builds a fresh engine for a new session.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	if !g.fixedConfig {
		g.loadConfig()
	}

	g.rate = cfg.TickRate
	g.dt = cfg.TickMillis()
	g.paused = false
	g.start(cfg.Seed)

	g.Resize(cfg.ScreenW, cfg.ScreenH)
}

// start begins a new game from seed. Each game gets its own engine and an
// empty event log, so a recording always covers exactly one game.
func (g *Game) start(seed int64) {
	g.seed = seed
	g.tick = 0
	g.events = nil

	g.engine = MustNew(g.cfg.Board.Width, g.cfg.Board.Height,
		WithSource(NewSource(seed)),
		WithRules(RulesFromConfig(g.cfg)),
	)
}

// loadConfig reads the YAML config and applies the difficulty preset.
// Errors fall back to defaults and are kept for ConfigError.
func (g *Game) loadConfig() {
	g.configErr = nil

	cfg, err := config.LoadTetris(configPath)
	if err != nil {
		g.configErr = err
		cfg = config.DefaultTetrisConfig()
	}

	preset, err := config.ParsePreset(difficultyPreset)
	if err != nil {
		if g.configErr == nil {
			g.configErr = err
		}
		preset = config.DifficultyFixed
	}
	config.ApplyTetrisPreset(&cfg, preset)

	g.cfg = cfg
	g.preset = preset
}

// ConfigError returns the error from the last config load, if any.
func (g *Game) ConfigError() error {
	return g.configErr
}

// RulesFromConfig converts the YAML configuration into engine rules.
func RulesFromConfig(cfg config.TetrisConfig) Rules {
	return Rules{
		InitialFallSpeed: cfg.Timing.InitialFallMs,
		MinFallSpeed:     cfg.Timing.MinFallMs,
		FallSpeedStep:    cfg.Timing.FallStepMs,
		LinesPerLevel:    cfg.Scoring.LinesPerLevel,
		LinePoints:       cfg.Scoring.LinePoints,
	}
}

// Resize updates the screen size. A screen too small for the well pauses
// the simulation until it grows again.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	minW, minH := g.minScreenSize()
	g.tooSmall = w < minW || h < minH
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && !g.engine.GameOver() {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.tick++

	frame := core.NewInputFrame()
	for _, a := range gameplayActions {
		if in.Has(a) {
			frame.Set(a)
		}
	}
	if !frame.Empty() {
		g.events = append(g.events, ReplayEvent{Tick: g.tick, Actions: frame.List()})
	}

	g.apply(frame)

	return core.StepResult{State: g.State()}
}

// apply runs one simulated tick: player commands first, then gravity.
func (g *Game) apply(frame core.InputFrame) {
	if g.engine.GameOver() {
		if frame.Has(core.ActionRestart) {
			// The next seed is derived so a session stays reproducible
			g.start(g.seed + 1)
		}
		return
	}

	if frame.Has(core.ActionRotate) {
		g.engine.Rotate()
	}
	if frame.Has(core.ActionLeft) {
		g.engine.Move(-1, 0)
	}
	if frame.Has(core.ActionRight) {
		g.engine.Move(1, 0)
	}
	if frame.Has(core.ActionDown) {
		g.engine.Move(0, 1)
	}
	if frame.Has(core.ActionDrop) {
		g.engine.HardDrop()
	}

	g.engine.Update(g.dt)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.engine == nil {
		return core.GameState{}
	}
	return core.GameState{
		Score:    g.engine.Score(),
		GameOver: g.engine.GameOver(),
		Paused:   g.paused || g.tooSmall,
	}
}

// Engine exposes the underlying engine for hosts that need direct access.
func (g *Game) Engine() *Engine {
	return g.engine
}

// Tick returns the number of simulated ticks since Reset.
func (g *Game) Tick() uint64 {
	return g.tick
}

// Snapshot returns the engine state for determinism checks.
func (g *Game) Snapshot() GameState {
	return g.engine.Snapshot()
}
