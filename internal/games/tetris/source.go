package tetris

import "math/rand"

// Source supplies the randomness for piece selection.
// *rand.Rand satisfies it; tests substitute scripted sequences.
type Source interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// NewSource returns a seeded pseudo-random Source.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}
