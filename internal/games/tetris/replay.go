package tetris

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
)

// ReplayEvent is the set of gameplay actions applied on one simulated tick.
type ReplayEvent struct {
	Tick    uint64
	Actions []core.Action
}

// Recording is everything needed to re-simulate a session: the seed, the
// rules, the tick rate and the inputs, plus the state it ended in.
type Recording struct {
	Seed     int64
	TickRate int
	Preset   string
	Config   config.TetrisConfig
	Ticks    uint64
	Events   []ReplayEvent
	Final    GameState
}

// Recording returns the session so far.
func (g *Game) Recording() Recording {
	events := make([]ReplayEvent, len(g.events))
	for i, ev := range g.events {
		events[i] = ReplayEvent{Tick: ev.Tick, Actions: append([]core.Action(nil), ev.Actions...)}
	}

	return Recording{
		Seed:     g.seed,
		TickRate: g.rate,
		Preset:   string(g.preset),
		Config:   g.cfg,
		Ticks:    g.tick,
		Events:   events,
		Final:    g.engine.Snapshot(),
	}
}

// ErrReplayMismatch is returned when a re-simulated session does not end in
// the recorded state.
var ErrReplayMismatch = errors.New("tetris: replay diverged from recording")

// Replay re-simulates a recording from scratch and returns the final state.
// It fails if the events are out of order or the result differs from the
// recorded final score, lines or level.
func Replay(rec Recording) (GameState, error) {
	if err := rec.Config.Validate(); err != nil {
		return GameState{}, fmt.Errorf("tetris: replay: %w", err)
	}

	g := NewWithConfig(rec.Config)
	g.Reset(core.RuntimeConfig{
		TickRate: rec.TickRate,
		Seed:     rec.Seed,
	})
	// Headless: no screen, never too small
	g.tooSmall = false

	next := 0
	for tick := uint64(1); tick <= rec.Ticks; tick++ {
		frame := core.NewInputFrame()
		if next < len(rec.Events) {
			ev := rec.Events[next]
			if ev.Tick < tick {
				return GameState{}, fmt.Errorf("tetris: replay: event %d at tick %d is out of order", next, ev.Tick)
			}
			if ev.Tick == tick {
				frame = core.FrameOf(ev.Actions...)
				next++
			}
		}
		g.Step(frame)
	}
	if next < len(rec.Events) {
		return GameState{}, fmt.Errorf("tetris: replay: event at tick %d is past the end (%d ticks)",
			rec.Events[next].Tick, rec.Ticks)
	}

	got := g.Snapshot()
	want := rec.Final
	if got.Score != want.Score || got.Lines != want.Lines || got.Level != want.Level {
		return got, fmt.Errorf("%w: score %d/%d lines %d/%d level %d/%d", ErrReplayMismatch,
			got.Score, want.Score, got.Lines, want.Lines, got.Level, want.Level)
	}
	return got, nil
}
