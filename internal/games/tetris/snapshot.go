package tetris

// GameState is a read-only copy of the engine state for renderers.
// Mutating it has no effect on the engine.
type GameState struct {
	Width     int
	Height    int
	Grid      [][]int // [row][col], 0 = empty, otherwise a Kind color id
	Current   Piece
	Next      Piece
	Score     int
	Level     int
	Lines     int
	FallSpeed int
	GameOver  bool
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() GameState {
	grid := make([][]int, len(e.grid))
	for y, row := range e.grid {
		grid[y] = append([]int(nil), row...)
	}

	return GameState{
		Width:     e.width,
		Height:    e.height,
		Grid:      grid,
		Current:   e.current,
		Next:      e.next,
		Score:     e.score,
		Level:     e.level,
		Lines:     e.lines,
		FallSpeed: e.fallSpeed,
		GameOver:  e.gameOver,
	}
}
