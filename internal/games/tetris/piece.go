package tetris

// Point is a grid coordinate: X is the column, Y the row (0 at the top).
type Point struct {
	X, Y int
}

// Piece is a falling tetromino: a kind, a rotation state and the grid
// offset of its 5x5 mask's top-left corner.
type Piece struct {
	Kind     Kind
	Rotation int
	X        int
	Y        int
}

// Color returns the color id the piece writes into the grid (1..7).
func (p Piece) Color() int {
	return int(p.Kind)
}

// Mask returns the occupancy mask of the piece's current rotation.
func (p Piece) Mask() Mask {
	return p.Kind.Mask(p.Rotation)
}

// Cells returns the absolute grid coordinates of the occupied cells, in
// mask row-major order. Cells may lie outside the grid.
func (p Piece) Cells() []Point {
	return p.cellsAt(0, 0, p.Rotation)
}

func (p Piece) cellsAt(dx, dy, rotation int) []Point {
	mask := p.Kind.Mask(rotation)
	cells := make([]Point, 0, 4)
	for y := range MaskSize {
		for x := range MaskSize {
			if mask[y][x] {
				cells = append(cells, Point{X: p.X + x + dx, Y: p.Y + y + dy})
			}
		}
	}
	return cells
}
