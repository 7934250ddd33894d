package tetris

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/registry"
)

func testRuntime(seed int64) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     seed,
	}
}

func newTestGame(seed int64) *Game {
	g := NewWithConfig(config.DefaultTetrisConfig())
	g.Reset(testRuntime(seed))
	return g
}

// scriptedInput returns the frame played at tick i of the test sessions.
func scriptedInput(i int) core.InputFrame {
	switch i % 45 {
	case 3:
		return core.FrameOf(core.ActionLeft)
	case 9:
		return core.FrameOf(core.ActionRotate, core.ActionRight)
	case 15:
		return core.FrameOf(core.ActionRight)
	case 20:
		return core.FrameOf(core.ActionDown)
	case 30:
		return core.FrameOf(core.ActionDrop)
	default:
		return core.NewInputFrame()
	}
}

func TestRegistered(t *testing.T) {
	require.True(t, registry.Exists(GameID))

	g, err := registry.Create(GameID)
	require.NoError(t, err)
	assert.Equal(t, "Tetris", g.Title())
}

func TestDeterminism(t *testing.T) {
	g1 := newTestGame(12345)
	g2 := newTestGame(12345)

	for i := range 3000 {
		in := scriptedInput(i)
		g1.Step(in)
		g2.Step(in)
	}

	assert.Equal(t, g1.Tick(), g2.Tick())
	assert.Equal(t, g1.Snapshot(), g2.Snapshot())
}

func TestGravityPerTick(t *testing.T) {
	g := newTestGame(1)
	startY := g.Engine().Current().Y

	// 16ms per tick at 60fps: 500ms threshold is crossed on tick 32
	for range 31 {
		g.Step(core.NewInputFrame())
	}
	assert.Equal(t, startY, g.Engine().Current().Y)

	g.Step(core.NewInputFrame())
	assert.Equal(t, startY+1, g.Engine().Current().Y)
}

func TestInputMapping(t *testing.T) {
	g := newTestGame(1)
	start := g.Engine().Current()

	g.Step(core.FrameOf(core.ActionLeft))
	assert.Equal(t, start.X-1, g.Engine().Current().X)

	g.Step(core.FrameOf(core.ActionRight))
	g.Step(core.FrameOf(core.ActionRight))
	assert.Equal(t, start.X+1, g.Engine().Current().X)

	g.Step(core.FrameOf(core.ActionDown))
	assert.Equal(t, start.Y+1, g.Engine().Current().Y)

	g.Step(core.FrameOf(core.ActionDrop))
	assert.Equal(t, g.Engine().GhostY(), g.Engine().Current().Y)
	assert.Equal(t, start.Kind, g.Engine().Current().Kind, "hard drop alone does not lock")
}

func TestPauseFreezesSimulation(t *testing.T) {
	g := newTestGame(9)

	g.Step(core.FrameOf(core.ActionPause))
	require.True(t, g.State().Paused)
	tick := g.Tick()
	before := g.Snapshot()

	for range 200 {
		g.Step(core.FrameOf(core.ActionLeft))
	}
	assert.Equal(t, tick, g.Tick())
	assert.Equal(t, before, g.Snapshot())

	g.Step(core.FrameOf(core.ActionPause))
	assert.False(t, g.State().Paused)
	assert.Empty(t, g.Recording().Events, "paused input is not recorded")
}

func TestRestartAfterGameOver(t *testing.T) {
	g := newTestGame(5)
	for i := 0; i < 20000 && !g.State().GameOver; i++ {
		g.Step(core.FrameOf(core.ActionDrop))
	}
	require.True(t, g.State().GameOver)

	// Restart is honored once the game is over
	g.Step(core.FrameOf(core.ActionRestart))
	st := g.Snapshot()
	assert.False(t, st.GameOver)
	assert.Equal(t, 0, st.Score)
	assert.Equal(t, 1, st.Level)

	// The new game starts its own recording from the next seed
	assert.Equal(t, uint64(0), g.Tick())
	rec := g.Recording()
	assert.Equal(t, int64(6), rec.Seed)
	assert.Empty(t, rec.Events)
}

func TestRecordingAfterRestartCoversOneGame(t *testing.T) {
	g := newTestGame(5)
	for i := 0; i < 20000 && !g.State().GameOver; i++ {
		g.Step(core.FrameOf(core.ActionDrop))
	}
	require.True(t, g.State().GameOver)
	g.Step(core.FrameOf(core.ActionRestart))

	for i := range 600 {
		g.Step(scriptedInput(i))
	}

	rec := g.Recording()
	assert.Equal(t, uint64(600), rec.Ticks)
	for _, ev := range rec.Events {
		assert.NotContains(t, ev.Actions, core.ActionRestart)
	}

	final, err := Replay(rec)
	require.NoError(t, err)
	assert.Equal(t, g.Snapshot().Grid, final.Grid)
}

func TestReplayRoundTrip(t *testing.T) {
	g := newTestGame(777)
	for i := range 4000 {
		g.Step(scriptedInput(i))
	}

	rec := g.Recording()
	require.NotEmpty(t, rec.Events)
	assert.Equal(t, uint64(4000), rec.Ticks)

	final, err := Replay(rec)
	require.NoError(t, err)
	assert.Equal(t, g.Snapshot(), final)
}

func TestReplayDetectsMismatch(t *testing.T) {
	g := newTestGame(3)
	for i := range 500 {
		g.Step(scriptedInput(i))
	}

	rec := g.Recording()
	rec.Final.Score += 100

	_, err := Replay(rec)
	assert.ErrorIs(t, err, ErrReplayMismatch)
}

func TestReplayRejectsBadEvents(t *testing.T) {
	rec := newTestGame(3).Recording()
	rec.Ticks = 10
	rec.Events = []ReplayEvent{
		{Tick: 5, Actions: []core.Action{core.ActionLeft}},
		{Tick: 4, Actions: []core.Action{core.ActionLeft}},
	}
	_, err := Replay(rec)
	assert.ErrorContains(t, err, "out of order")

	rec.Events = []ReplayEvent{{Tick: 11, Actions: []core.Action{core.ActionDrop}}}
	_, err = Replay(rec)
	assert.ErrorContains(t, err, "past the end")
}

func TestNewLoadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetris.yaml")
	require.NoError(t, os.WriteFile(path, []byte("board:\n  width: 12\n  height: 18\n"), 0o600))

	SetConfigPath(path)
	SetDifficultyPreset("hard")
	t.Cleanup(func() {
		SetConfigPath("")
		SetDifficultyPreset("")
	})

	g := NewGame()
	g.Reset(testRuntime(1))

	require.NoError(t, g.ConfigError())
	assert.Equal(t, 12, g.Engine().Width())
	assert.Equal(t, 18, g.Engine().Height())
	assert.Equal(t, 300, g.Engine().FallSpeed())
	assert.Equal(t, 4, g.Engine().Current().X)
}

func TestConfigTimingUsedWithoutPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetris.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timing:\n  initial_fall_ms: 800\n"), 0o600))

	SetConfigPath(path)
	t.Cleanup(func() { SetConfigPath("") })

	g := NewGame()
	g.Reset(testRuntime(1))

	require.NoError(t, g.ConfigError())
	assert.Equal(t, 800, g.Engine().FallSpeed())
}

func TestNewReportsBadPreset(t *testing.T) {
	SetConfigPath(filepath.Join(t.TempDir(), "missing.yaml"))
	SetDifficultyPreset("nightmare")
	t.Cleanup(func() {
		SetConfigPath("")
		SetDifficultyPreset("")
	})

	g := NewGame()
	g.Reset(testRuntime(1))

	assert.Error(t, g.ConfigError())
	assert.Equal(t, 10, g.Engine().Width(), "falls back to defaults")
	assert.Equal(t, 500, g.Engine().FallSpeed())
}

func TestRender(t *testing.T) {
	g := newTestGame(11)
	screen := core.NewScreen(80, 24)

	g.Render(screen)
	out := screen.String()
	assert.Contains(t, out, "NEXT")
	assert.Contains(t, out, "Score")
	assert.Contains(t, out, "Level")
	assert.Contains(t, out, "Lines")

	// The falling piece is drawn in its kind's color
	well := g.wellRect()
	cur := g.Engine().Current()
	cell := cur.Cells()[0]
	sx, sy := cellPos(well, cell.X, cell.Y)
	assert.Equal(t, ColorOf(cur.Color()), screen.GetCell(sx, sy).Color)
	assert.Equal(t, '█', screen.GetCell(sx, sy).Rune)
}

func TestRenderOverlays(t *testing.T) {
	g := newTestGame(11)
	screen := core.NewScreen(80, 24)

	g.Step(core.FrameOf(core.ActionPause))
	g.Render(screen)
	assert.Contains(t, screen.String(), "PAUSED")

	g.Resize(20, 10)
	assert.True(t, g.State().Paused)
	small := core.NewScreen(20, 10)
	g.Render(small)
	assert.True(t, strings.Contains(small.String(), "too small"))
}

func TestColorOf(t *testing.T) {
	assert.Equal(t, core.ColorCyan, ColorOf(int(KindI)))
	assert.Equal(t, core.ColorOrange, ColorOf(int(KindL)))
	assert.Equal(t, core.ColorDefault, ColorOf(42))
}
