package tetris

import (
	"errors"
	"fmt"
)

// Default well dimensions.
const (
	DefaultWidth  = 10
	DefaultHeight = 20
)

// ErrInvalidDimensions is returned when a well is not at least 1x1.
var ErrInvalidDimensions = errors.New("tetris: width and height must be positive")

// Engine is the game state machine. It owns the grid, the current and next
// pieces and the counters, and is advanced by Update and the move commands.
// It is not safe for concurrent use; callers serialize access.
type Engine struct {
	width  int
	height int
	grid   [][]int
	rng    Source
	rules  Rules

	current Piece
	next    Piece

	score     int
	level     int
	lines     int
	fallTime  int
	fallSpeed int
	gameOver  bool
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithSource sets the random source used for piece selection.
func WithSource(src Source) Option {
	return func(e *Engine) {
		if src != nil {
			e.rng = src
		}
	}
}

// WithRules overrides the timing and scoring constants.
// Zero fields keep their defaults.
func WithRules(r Rules) Option {
	return func(e *Engine) {
		e.rules = r.withDefaults()
	}
}

// New creates an engine for a width x height well and spawns the first two
// pieces. Without WithSource the engine uses a source seeded with 1.
func New(width, height int, opts ...Option) (*Engine, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}

	e := &Engine{
		width:  width,
		height: height,
		rules:  DefaultRules(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = NewSource(1)
	}

	e.Reset()
	return e, nil
}

// MustNew is like New but panics on invalid dimensions.
func MustNew(width, height int, opts ...Option) *Engine {
	e, err := New(width, height, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Reset starts a new game in the same well. The random source is left as is.
func (e *Engine) Reset() {
	e.grid = newGrid(e.width, e.height)
	e.current = e.SpawnPiece()
	e.next = e.SpawnPiece()
	e.score = 0
	e.lines = 0
	e.level = 1
	e.fallTime = 0
	e.fallSpeed = e.rules.InitialFallSpeed
	e.gameOver = false
}

func newGrid(width, height int) [][]int {
	grid := make([][]int, height)
	for y := range grid {
		grid[y] = make([]int, width)
	}
	return grid
}

// SpawnPiece returns a fresh piece of a uniformly random kind at the spawn
// position: rotation 0, column width/2-2, row 0. It only consumes randomness.
func (e *Engine) SpawnPiece() Piece {
	return Piece{
		Kind:     Kind(e.rng.Intn(KindCount) + 1),
		Rotation: 0,
		X:        e.width/2 - 2,
		Y:        0,
	}
}

// IsValid reports whether p, translated by (dx, dy), fits in the well.
func (e *Engine) IsValid(p Piece, dx, dy int) bool {
	return e.IsValidRotation(p, dx, dy, p.Rotation)
}

// IsValidRotation reports whether p in the given rotation, translated by
// (dx, dy), fits: every occupied cell must be inside the side walls, above
// the floor, and on an empty grid cell. Rows above the top (y < 0) are not
// checked for occupancy.
func (e *Engine) IsValidRotation(p Piece, dx, dy, rotation int) bool {
	mask := p.Kind.Mask(rotation)
	for my := range MaskSize {
		for mx := range MaskSize {
			if !mask[my][mx] {
				continue
			}
			x := p.X + mx + dx
			y := p.Y + my + dy
			if x < 0 || x >= e.width || y >= e.height {
				return false
			}
			if y >= 0 && e.grid[y][x] != 0 {
				return false
			}
		}
	}
	return true
}

// Move shifts the current piece by (dx, dy) if the target position is
// valid. It returns false and changes nothing otherwise.
func (e *Engine) Move(dx, dy int) bool {
	if !e.IsValid(e.current, dx, dy) {
		return false
	}
	e.current.X += dx
	e.current.Y += dy
	return true
}

// Rotate advances the current piece to its next rotation state. There is
// no wall kick: if the rotated piece collides in place, nothing changes.
func (e *Engine) Rotate() bool {
	next := (e.current.Rotation + 1) % e.current.Kind.RotationCount()
	if !e.IsValidRotation(e.current, 0, 0, next) {
		return false
	}
	e.current.Rotation = next
	return true
}

// HardDrop moves the current piece straight down as far as it goes and
// returns the number of rows it fell. The piece is not locked here; it
// locks on the next Update that reaches the fall threshold.
func (e *Engine) HardDrop() int {
	rows := 0
	for e.Move(0, 1) {
		rows++
	}
	return rows
}

// GhostY returns the row the current piece would rest at after a hard drop.
func (e *Engine) GhostY() int {
	dy := 0
	for e.IsValid(e.current, 0, dy+1) {
		dy++
	}
	return e.current.Y + dy
}

// Place writes the piece's color into every grid cell it occupies that is
// on screen. It does not check validity.
func (e *Engine) Place(p Piece) {
	color := p.Color()
	for _, c := range p.Cells() {
		if c.Y < 0 || c.Y >= e.height || c.X < 0 || c.X >= e.width {
			continue
		}
		e.grid[c.Y][c.X] = color
	}
}

// ClearLines removes every full row, shifts the rows above it down and
// fills the top with empty rows. It updates lines, score, level and fall
// speed and returns the number of rows removed.
func (e *Engine) ClearLines() int {
	kept := make([][]int, 0, e.height)
	for _, row := range e.grid {
		if !rowFull(row) {
			kept = append(kept, row)
		}
	}
	cleared := e.height - len(kept)

	if cleared > 0 {
		grid := make([][]int, 0, e.height)
		for range cleared {
			grid = append(grid, make([]int, e.width))
		}
		e.grid = append(grid, kept...)
	}

	e.lines += cleared
	e.score += cleared * e.rules.LinePoints * e.level
	e.level = e.rules.LevelFor(e.lines)
	e.fallSpeed = e.rules.FallSpeedFor(e.level)

	return cleared
}

func rowFull(row []int) bool {
	for _, v := range row {
		if v == 0 {
			return false
		}
	}
	return true
}

// Update advances the fall timer by dt. Once the timer reaches the fall
// speed the current piece drops a row; if it cannot, it is locked, full
// lines are cleared and the next piece takes its place. A piece that is
// blocked at its spawn position ends the game. Update does nothing after
// game over.
func (e *Engine) Update(dt int) {
	if e.gameOver {
		return
	}

	e.fallTime += dt
	if e.fallTime < e.fallSpeed {
		return
	}

	if !e.Move(0, 1) {
		e.lock()
	}
	e.fallTime = 0
}

func (e *Engine) lock() {
	e.Place(e.current)
	e.ClearLines()

	e.current = e.next
	e.next = e.SpawnPiece()

	if !e.IsValid(e.current, 0, 0) {
		e.gameOver = true
	}
}

// Width returns the number of columns.
func (e *Engine) Width() int { return e.width }

// Height returns the number of rows.
func (e *Engine) Height() int { return e.height }

// Score returns the current score.
func (e *Engine) Score() int { return e.score }

// Level returns the current level, starting at 1.
func (e *Engine) Level() int { return e.level }

// Lines returns the total number of cleared lines.
func (e *Engine) Lines() int { return e.lines }

// FallSpeed returns the current fall threshold.
func (e *Engine) FallSpeed() int { return e.fallSpeed }

// GameOver reports whether the game has ended.
func (e *Engine) GameOver() bool { return e.gameOver }

// Current returns a copy of the falling piece.
func (e *Engine) Current() Piece { return e.current }

// Next returns a copy of the queued piece.
func (e *Engine) Next() Piece { return e.next }

// Cell returns the grid value at (x, y), or 0 outside the grid.
func (e *Engine) Cell(x, y int) int {
	if x < 0 || x >= e.width || y < 0 || y >= e.height {
		return 0
	}
	return e.grid[y][x]
}

// SetCell writes a color id directly into the grid, bypassing the piece
// flow. It is a test seam for building boards; out-of-range writes are
// ignored.
func (e *Engine) SetCell(x, y, color int) {
	if x < 0 || x >= e.width || y < 0 || y >= e.height {
		return
	}
	e.grid[y][x] = color
}
