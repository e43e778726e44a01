// Package board defines the dense, flat-buffer board representation
// shared by map generation, turn resolution, the match driver and
// replay assembly. Arrays are row-major over (height, width); no
// component outside this package should invent its own indexing
// scheme for owner/production/strength.
package board

import "math"

// Isqrt computes the integer (floor) square root of a non-negative n
// without the floating-point rounding hazard of int(math.Sqrt(n)) near
// perfect squares.
func Isqrt(n int) int {
	if n < 2 {
		return n
	}
	x := int(math.Sqrt(float64(n)))
	for x*x > n {
		x--
	}
	for (x+1)*(x+1) <= n {
		x++
	}
	return x
}

// MaxPlayers bounds the per-match player count (spec: num_players in [1,6]).
const MaxPlayers = 6

// GameMap is the mutable board state for one match. Owner is 0 for
// neutral cells and 1..NumPlayers for player-owned cells. Production
// is 0..15; Strength is 0..255.
type GameMap struct {
	Width, Height int
	NumPlayers    int
	Seed          int64

	Owner      []uint8
	Production []uint8
	Strength   []uint8
}

// NewGameMap allocates a zeroed board of the given dimensions.
func NewGameMap(width, height, numPlayers int, seed int64) *GameMap {
	size := width * height
	return &GameMap{
		Width:      width,
		Height:     height,
		NumPlayers: numPlayers,
		Seed:       seed,
		Owner:      make([]uint8, size),
		Production: make([]uint8, size),
		Strength:   make([]uint8, size),
	}
}

// Idx computes the flat row-major index of cell (y, x).
func (m *GameMap) Idx(y, x int) int {
	return y*m.Width + x
}

// MaxTurns returns the match's turn cap for an effective board of the
// given dimensions: floor(sqrt(W*H)) * 10.
func MaxTurns(width, height int) int {
	return Isqrt(width*height) * 10
}

// AliveMask reports, for each player id 1..NumPlayers, whether that
// player owns at least one cell.
func (m *GameMap) AliveMask() []bool {
	alive := make([]bool, m.NumPlayers+1) // index 0 unused
	for _, o := range m.Owner {
		if o > 0 {
			alive[o] = true
		}
	}
	return alive[1:]
}

// AliveCount is the number of players with at least one owned cell.
func (m *GameMap) AliveCount() int {
	n := 0
	for _, alive := range m.AliveMask() {
		if alive {
			n++
		}
	}
	return n
}
