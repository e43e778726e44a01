// Package grid implements the toroidal index arithmetic shared by map
// generation and turn resolution: wraparound neighbor lookup and the
// fixed direction table. No component outside this package should
// reimplement modulus wrapping.
package grid

// Direction is a move command issued by a single owned cell.
type Direction uint8

const (
	Still Direction = iota
	North
	East
	South
	West
)

// NumDirections is the width of the fixed delta table.
const NumDirections = 5

// Delta is a (dy, dx) offset.
type Delta struct {
	DY, DX int
}

// Deltas is indexed by Direction; Still maps to the zero offset.
var Deltas = [NumDirections]Delta{
	Still: {0, 0},
	North: {-1, 0},
	East:  {0, 1},
	South: {1, 0},
	West:  {0, -1},
}

// Wrap reduces v into [0, n) using Euclidean modulus. n must be positive.
func Wrap(v, n int) int {
	m := v % n
	if m < 0 {
		m += n
	}
	return m
}

// Step returns the toroidal neighbor of (y, x) in direction d over an
// H-by-W board.
func Step(y, x int, d Direction, h, w int) (ny, nx int) {
	delta := Deltas[d]
	ny = Wrap(y+delta.DY, h)
	nx = Wrap(x+delta.DX, w)
	return
}

// InBounds reports whether (y, x) falls within an H-by-W board. Unlike
// Wrap/Step, bounds are NOT wrapped here — this is used to validate
// untrusted bot-supplied coordinates before they're allowed to touch
// the dense arrays.
func InBounds(y, x, h, w int) bool {
	return y >= 0 && y < h && x >= 0 && x < w
}

// ParseDirection validates a raw integer against the Direction enum.
func ParseDirection(v int) (Direction, bool) {
	if v < 0 || v >= NumDirections {
		return Still, false
	}
	return Direction(v), true
}
