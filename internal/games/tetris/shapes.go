// Package tetris implements the falling-block puzzle: a deterministic engine
// that owns the well, the falling pieces and the scoring rules, plus the
// arcade adapter that drives it from platform input.
package tetris

// Kind identifies one of the seven tetrominoes. The value doubles as the
// color id written into the grid; 0 is reserved for an empty cell.
type Kind int

const (
	KindNone Kind = iota
	KindI
	KindO
	KindT
	KindS
	KindZ
	KindJ
	KindL
)

// KindCount is the number of playable kinds.
const KindCount = 7

// MaskSize is the side length of every rotation mask.
const MaskSize = 5

// Mask is the occupancy of one rotation state, indexed [row][col].
type Mask [MaskSize][MaskSize]bool

// Rotation states per kind, drawn on a 5x5 box. Rotation advances through
// the list in order and wraps around.
var shapeRows = [KindCount][][MaskSize]string{
	// I
	{
		{
			".....",
			"..#..",
			"..#..",
			"..#..",
			"..#..",
		},
		{
			".....",
			".....",
			"####.",
			".....",
			".....",
		},
	},
	// O
	{
		{
			".....",
			".....",
			".##..",
			".##..",
			".....",
		},
	},
	// T
	{
		{
			".....",
			".....",
			".#...",
			"###..",
			".....",
		},
		{
			".....",
			".....",
			".#...",
			".##..",
			".#...",
		},
		{
			".....",
			".....",
			".....",
			"###..",
			".#...",
		},
		{
			".....",
			".....",
			".#...",
			"##...",
			".#...",
		},
	},
	// S
	{
		{
			".....",
			".....",
			".##..",
			"##...",
			".....",
		},
		{
			".....",
			".#...",
			".##..",
			"..#..",
			".....",
		},
	},
	// Z
	{
		{
			".....",
			".....",
			"##...",
			".##..",
			".....",
		},
		{
			".....",
			"..#..",
			".##..",
			".#...",
			".....",
		},
	},
	// J
	{
		{
			".....",
			".#...",
			".#...",
			"##...",
			".....",
		},
		{
			".....",
			".....",
			"#....",
			"###..",
			".....",
		},
		{
			".....",
			".##..",
			".#...",
			".#...",
			".....",
		},
		{
			".....",
			".....",
			"###..",
			"..#..",
			".....",
		},
	},
	// L
	{
		{
			".....",
			"..#..",
			"..#..",
			".##..",
			".....",
		},
		{
			".....",
			".....",
			"###..",
			"#....",
			".....",
		},
		{
			".....",
			"##...",
			".#...",
			".#...",
			".....",
		},
		{
			".....",
			".....",
			"..#..",
			"###..",
			".....",
		},
	},
}

// shapes is the parsed, read-only mask table indexed by [kind-1][rotation].
var shapes = buildShapes()

func buildShapes() [KindCount][]Mask {
	var table [KindCount][]Mask
	for k, rotations := range shapeRows {
		table[k] = make([]Mask, len(rotations))
		for r, rows := range rotations {
			for y, row := range rows {
				for x, ch := range row {
					table[k][r][y][x] = ch == '#'
				}
			}
		}
	}
	return table
}

// Valid reports whether k is one of the seven playable kinds.
func (k Kind) Valid() bool {
	return k >= KindI && k <= KindL
}

// RotationCount returns how many rotation states the kind has (1, 2 or 4).
// Invalid kinds report 0.
func (k Kind) RotationCount() int {
	if !k.Valid() {
		return 0
	}
	return len(shapes[k-1])
}

// Mask returns the occupancy mask for a rotation. The rotation wraps modulo
// the kind's rotation count. Invalid kinds yield an empty mask.
func (k Kind) Mask(rotation int) Mask {
	n := k.RotationCount()
	if n == 0 {
		return Mask{}
	}
	rotation %= n
	if rotation < 0 {
		rotation += n
	}
	return shapes[k-1][rotation]
}

// String returns the conventional letter for the kind.
func (k Kind) String() string {
	switch k {
	case KindI:
		return "I"
	case KindO:
		return "O"
	case KindT:
		return "T"
	case KindS:
		return "S"
	case KindZ:
		return "Z"
	case KindJ:
		return "J"
	case KindL:
		return "L"
	default:
		return "-"
	}
}
