package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource returns a fixed cycle of values for piece selection.
type scriptedSource struct {
	seq []int
	pos int
}

func (s *scriptedSource) Intn(n int) int {
	v := s.seq[s.pos%len(s.seq)] % n
	s.pos++
	return v
}

// kinds builds a source that spawns the given kinds in order, repeating.
func kinds(ks ...Kind) *scriptedSource {
	seq := make([]int, len(ks))
	for i, k := range ks {
		seq[i] = int(k) - 1
	}
	return &scriptedSource{seq: seq}
}

func newTestEngine(t *testing.T, src Source) *Engine {
	t.Helper()
	e, err := New(DefaultWidth, DefaultHeight, WithSource(src))
	require.NoError(t, err)
	return e
}

func fillRow(e *Engine, y, color int) {
	for x := range e.Width() {
		e.SetCell(x, y, color)
	}
}

func TestShapeTable(t *testing.T) {
	wantRotations := map[Kind]int{
		KindI: 2, KindO: 1, KindT: 4, KindS: 2, KindZ: 2, KindJ: 4, KindL: 4,
	}

	for k, want := range wantRotations {
		assert.Equal(t, want, k.RotationCount(), "rotation count of %s", k)
		for r := range want {
			cells := Piece{Kind: k, Rotation: r}.Cells()
			assert.Len(t, cells, 4, "%s rotation %d should have four cells", k, r)
		}
	}

	assert.Equal(t, 0, KindNone.RotationCount())
	assert.Equal(t, Mask{}, KindNone.Mask(0))
	assert.Equal(t, KindT.Mask(3), KindT.Mask(-1), "negative rotations wrap")
	assert.Equal(t, KindT.Mask(1), KindT.Mask(5))
}

func TestNewDefaults(t *testing.T) {
	e := newTestEngine(t, NewSource(7))

	assert.Equal(t, 10, e.Width())
	assert.Equal(t, 20, e.Height())
	assert.Equal(t, 0, e.Score())
	assert.Equal(t, 1, e.Level())
	assert.Equal(t, 0, e.Lines())
	assert.Equal(t, 500, e.FallSpeed())
	assert.False(t, e.GameOver())

	state := e.Snapshot()
	require.Len(t, state.Grid, 20)
	for _, row := range state.Grid {
		require.Len(t, row, 10)
		for _, v := range row {
			assert.Zero(t, v)
		}
	}
	assert.True(t, e.IsValid(e.Current(), 0, 0))
	assert.True(t, e.Next().Kind.Valid())
}

func TestNewRejectsInvalidDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 20}, {10, 0}, {-1, 5}} {
		_, err := New(dims[0], dims[1])
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	}

	assert.Panics(t, func() { MustNew(0, 0) })
}

func TestSpawnPiece(t *testing.T) {
	e := newTestEngine(t, NewSource(42))

	for range 50 {
		p := e.SpawnPiece()
		assert.Equal(t, 3, p.X)
		assert.Equal(t, 0, p.Y)
		assert.Equal(t, 0, p.Rotation)
		assert.GreaterOrEqual(t, p.Color(), 1)
		assert.LessOrEqual(t, p.Color(), 7)
	}
}

func TestSpawnPieceUsesSource(t *testing.T) {
	e := newTestEngine(t, kinds(KindI, KindO, KindL))

	// New consumed I and O for current/next
	assert.Equal(t, KindI, e.Current().Kind)
	assert.Equal(t, KindO, e.Next().Kind)
	assert.Equal(t, KindL, e.SpawnPiece().Kind)
	assert.Equal(t, 7, Piece{Kind: KindL}.Color())
}

func TestSpawnColumnFollowsWidth(t *testing.T) {
	e, err := New(7, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, e.SpawnPiece().X)
}

func TestIsValidBounds(t *testing.T) {
	e := newTestEngine(t, NewSource(1))

	for k := KindI; k <= KindL; k++ {
		for r := range k.RotationCount() {
			for x := -6; x <= 12; x++ {
				for y := -6; y <= 22; y++ {
					p := Piece{Kind: k, Rotation: r, X: x, Y: y}

					inBounds := true
					for _, c := range p.Cells() {
						if c.X < 0 || c.X >= 10 || c.Y >= 20 {
							inBounds = false
						}
					}
					require.Equal(t, inBounds, e.IsValid(p, 0, 0), "%s r%d at (%d,%d)", k, r, x, y)
				}
			}
		}
	}
}

func TestIsValidAboveTopIsExempt(t *testing.T) {
	e := newTestEngine(t, NewSource(1))
	fillRow(e, 0, 1)

	// Vertical I occupying rows -4..-1 sits entirely above the field
	p := Piece{Kind: KindI, X: 3, Y: -5}
	assert.True(t, e.IsValid(p, 0, 0), "rows above the field are not checked")
	assert.False(t, e.IsValid(p, 0, 1))
}

func TestIsValidOccupied(t *testing.T) {
	e := newTestEngine(t, NewSource(1))
	e.SetCell(4, 5, 3)

	p := Piece{Kind: KindO, X: 3, Y: 2} // cells (4,4) (5,4) (4,5) (5,5)
	assert.False(t, e.IsValid(p, 0, 0))
	assert.True(t, e.IsValid(p, 0, -1))
	assert.False(t, e.IsValid(p, -1, 0), "(4,5) is still covered one column left")
	assert.True(t, e.IsValid(p, 2, 0))
}

func TestMoveAllOrNothing(t *testing.T) {
	e := newTestEngine(t, kinds(KindT))
	before := e.Current()

	assert.True(t, e.Move(1, 0))
	after := e.Current()
	assert.Equal(t, before.X+1, after.X)
	assert.Equal(t, before.Y, after.Y)
	assert.Equal(t, before.Rotation, after.Rotation)

	assert.True(t, e.Move(0, 1))
	assert.Equal(t, before.Y+1, e.Current().Y)

	e.SetCell(after.X+1, 5, 1) // just below the T's bottom row
	blocked := e.Current()
	assert.False(t, e.Move(0, 1))
	assert.Equal(t, blocked, e.Current())
}

func TestMoveLeftWall(t *testing.T) {
	e := newTestEngine(t, kinds(KindT))

	for range 10 {
		e.Move(-1, 0)
	}
	assert.Equal(t, 0, e.Current().X)
	assert.False(t, e.Move(-1, 0))
	assert.Equal(t, 0, e.Current().X)
}

func TestMoveRightWall(t *testing.T) {
	e := newTestEngine(t, kinds(KindO))

	moves := 0
	for e.Move(1, 0) {
		moves++
	}
	// O occupies mask columns 1-2, so its right cell stops at column 9
	assert.Equal(t, 7, e.Current().X)
	assert.Equal(t, 4, moves)
}

func TestRotateSquareNeverChanges(t *testing.T) {
	e := newTestEngine(t, kinds(KindO))

	for range 5 {
		assert.True(t, e.Rotate())
		assert.Equal(t, 0, e.Current().Rotation)
	}
}

func TestRotateCycles(t *testing.T) {
	e := newTestEngine(t, kinds(KindT))
	e.Move(0, 2)

	for _, want := range []int{1, 2, 3, 0} {
		require.True(t, e.Rotate())
		assert.Equal(t, want, e.Current().Rotation)
	}
}

func TestRotateNoWallKick(t *testing.T) {
	e := newTestEngine(t, kinds(KindI))
	e.Move(0, 3)
	for e.Move(-1, 0) {
	}
	// Vertical I in column 0; the horizontal state would start at column -2
	require.Equal(t, -2, e.Current().X)

	before := e.Current()
	assert.False(t, e.Rotate())
	assert.Equal(t, before, e.Current())
}

func TestRotateBlockedBySettledCells(t *testing.T) {
	e := newTestEngine(t, kinds(KindI))
	e.Move(0, 3)
	p := e.Current()

	// Horizontal I would cover row y+2, columns x..x+3
	e.SetCell(p.X, p.Y+2, 5)
	assert.False(t, e.Rotate())
	assert.Equal(t, p, e.Current())
}

func TestHardDropIsIdempotentAndDoesNotLock(t *testing.T) {
	e := newTestEngine(t, kinds(KindT, KindO))

	rows := e.HardDrop()
	// T rotation 0 fills mask rows 2-3, so it rests at y=16
	assert.Equal(t, 16, rows)
	assert.Equal(t, 16, e.Current().Y)

	assert.Equal(t, 0, e.HardDrop())
	assert.Equal(t, 16, e.Current().Y)

	// Not placed yet
	for x := range 10 {
		assert.Zero(t, e.Cell(x, 19))
	}
	assert.Equal(t, KindT, e.Current().Kind)
}

func TestHardDropLocksOnNextTick(t *testing.T) {
	e := newTestEngine(t, kinds(KindT, KindO, KindS))
	dropped := e.Current()
	e.HardDrop()

	e.Update(e.FallSpeed())

	for _, c := range (Piece{Kind: dropped.Kind, X: dropped.X, Y: 16}).Cells() {
		assert.Equal(t, int(KindT), e.Cell(c.X, c.Y))
	}
	assert.Equal(t, KindO, e.Current().Kind, "next piece is promoted")
	assert.Equal(t, KindS, e.Next().Kind, "a new next piece is spawned")
	assert.Equal(t, 0, e.Current().Y)
}

func TestGhostYMatchesHardDrop(t *testing.T) {
	e := newTestEngine(t, kinds(KindJ))
	e.SetCell(3, 12, 2)

	ghost := e.GhostY()
	e.HardDrop()
	assert.Equal(t, ghost, e.Current().Y)
}

func TestUpdateAccumulatesTime(t *testing.T) {
	e := newTestEngine(t, kinds(KindT))

	e.Update(499)
	assert.Equal(t, 0, e.Current().Y)

	e.Update(1)
	assert.Equal(t, 1, e.Current().Y)

	// Timer restarted after the drop
	e.Update(499)
	assert.Equal(t, 1, e.Current().Y)
	e.Update(600)
	assert.Equal(t, 2, e.Current().Y, "one row per threshold crossing")
}

func TestPlaceSkipsRowsAboveTop(t *testing.T) {
	e := newTestEngine(t, NewSource(1))

	e.Place(Piece{Kind: KindI, X: 0, Y: -3}) // rows -2..1 in column 2
	assert.Equal(t, int(KindI), e.Cell(2, 0))
	assert.Equal(t, int(KindI), e.Cell(2, 1))
	assert.Zero(t, e.Cell(2, 2))
}

func TestClearLinesEmptyGrid(t *testing.T) {
	e := newTestEngine(t, NewSource(1))

	assert.Equal(t, 0, e.ClearLines())
	assert.Equal(t, 0, e.Score())
	assert.Equal(t, 0, e.Lines())
	assert.Equal(t, 1, e.Level())
}

func TestClearLinesBottomRow(t *testing.T) {
	e := newTestEngine(t, NewSource(1))
	fillRow(e, 19, 1)

	assert.Equal(t, 1, e.ClearLines())
	assert.Equal(t, 1, e.Lines())
	assert.Equal(t, 100, e.Score())
	for x := range 10 {
		assert.Zero(t, e.Cell(x, 19))
	}
}

func TestClearLinesKeepsRowOrder(t *testing.T) {
	e := newTestEngine(t, NewSource(1))
	e.SetCell(0, 16, 4)
	fillRow(e, 17, 1)
	e.SetCell(1, 18, 5)
	fillRow(e, 19, 2)

	assert.Equal(t, 2, e.ClearLines())
	assert.Equal(t, 200, e.Score())

	// Row 18 drops to 19, row 16 drops to 18
	assert.Equal(t, 5, e.Cell(1, 19))
	assert.Equal(t, 4, e.Cell(0, 18))
	assert.Zero(t, e.Cell(0, 19))
	for y := range 18 {
		for x := range 10 {
			assert.Zero(t, e.Cell(x, y), "cell (%d,%d)", x, y)
		}
	}
}

func TestClearLinesLevelProgression(t *testing.T) {
	e := newTestEngine(t, NewSource(1))
	e.lines = 9

	fillRow(e, 19, 1)
	assert.Equal(t, 1, e.ClearLines())
	assert.Equal(t, 100, e.Score(), "scored at the level before the clear")
	assert.Equal(t, 2, e.Level())
	assert.Equal(t, 450, e.FallSpeed())

	fillRow(e, 19, 1)
	e.ClearLines()
	assert.Equal(t, 300, e.Score(), "level 2 doubles line points")
	assert.Equal(t, e.Lines()/10+1, e.Level())
}

func TestFallSpeedFloor(t *testing.T) {
	r := DefaultRules()
	assert.Equal(t, 500, r.FallSpeedFor(1))
	assert.Equal(t, 100, r.FallSpeedFor(9))
	assert.Equal(t, 50, r.FallSpeedFor(10))
	assert.Equal(t, 50, r.FallSpeedFor(30))
}

func TestWithRules(t *testing.T) {
	e, err := New(10, 20, WithRules(Rules{InitialFallSpeed: 800, LinePoints: 40}))
	require.NoError(t, err)
	assert.Equal(t, 800, e.FallSpeed())

	fillRow(e, 19, 1)
	e.ClearLines()
	assert.Equal(t, 40, e.Score())
	assert.Equal(t, 800, e.FallSpeed(), "level 1 keeps the initial speed")
}

// buildDeadEnd fills the board so the next spawn collides while no row is
// full, and parks an O above the left edge ready to lock.
func buildDeadEnd(e *Engine) {
	for y := range 20 {
		for x := 3; x <= 8; x++ {
			e.SetCell(x, y, 6)
		}
		if y >= 2 {
			e.SetCell(0, y, 6)
			e.SetCell(1, y, 6)
		}
	}
	e.current = Piece{Kind: KindO, X: -1, Y: -2}
}

func TestGameOverOnBlockedSpawn(t *testing.T) {
	e := newTestEngine(t, kinds(KindT, KindL))
	buildDeadEnd(e)

	e.Update(e.FallSpeed())
	require.True(t, e.GameOver())

	frozen := e.Snapshot()
	e.Update(10_000)
	assert.Equal(t, frozen, e.Snapshot(), "Update is a no-op after game over")
}

func TestReset(t *testing.T) {
	src := kinds(KindT, KindL, KindS, KindZ)
	e := newTestEngine(t, src)
	buildDeadEnd(e)
	e.score = 1000
	e.lines = 50
	e.level = 6
	e.Update(e.FallSpeed())
	require.True(t, e.GameOver())
	consumed := src.pos

	e.Reset()

	assert.Equal(t, 0, e.Score())
	assert.Equal(t, 1, e.Level())
	assert.Equal(t, 0, e.Lines())
	assert.Equal(t, 500, e.FallSpeed())
	assert.False(t, e.GameOver())
	for y := range 20 {
		for x := range 10 {
			require.Zero(t, e.Cell(x, y))
		}
	}
	assert.True(t, e.IsValid(e.Current(), 0, 0))
	assert.True(t, e.IsValid(e.Next(), 0, 0))
	assert.Equal(t, consumed+2, src.pos, "reset keeps drawing from the same source")
}

func TestSnapshotIsACopy(t *testing.T) {
	e := newTestEngine(t, NewSource(3))

	state := e.Snapshot()
	state.Grid[19][0] = 7
	state.Current.X = 99

	assert.Zero(t, e.Cell(0, 19))
	assert.Equal(t, 3, e.Current().X)
}

func TestFullGameCycleInvariants(t *testing.T) {
	e := newTestEngine(t, NewSource(2024))

	prev := e.Snapshot()
	for i := 0; i < 5000 && !e.GameOver(); i++ {
		switch i % 7 {
		case 0:
			e.Move(-1, 0)
		case 2:
			e.Rotate()
		case 4:
			e.Move(1, 0)
		case 5:
			e.HardDrop()
		}
		e.Update(100)

		cur := e.Snapshot()
		require.GreaterOrEqual(t, cur.Score, prev.Score)
		require.GreaterOrEqual(t, cur.Lines, prev.Lines)
		require.GreaterOrEqual(t, cur.Level, prev.Level)
		require.Equal(t, cur.Lines/10+1, cur.Level)
		require.LessOrEqual(t, cur.FallSpeed, prev.FallSpeed)
		if !cur.GameOver {
			require.True(t, e.IsValid(cur.Current, 0, 0))
		}
		prev = cur
	}
	assert.True(t, e.GameOver(), "a game without line planning ends eventually")
}
