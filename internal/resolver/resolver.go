// Package resolver implements one turn of the dense cellular
// simulation: moves are applied, production is credited to cells that
// stayed still, damage is computed (including overkill accounting and
// neutral-site retaliation), combat is resolved, and the board is
// rebuilt from the survivors.
//
// Grounded on halite/game.py's apply_player_moves_dense /
// compute_injuries_dense / resolve_combat_dense / rebuild_map_dense,
// translated from the Python source's (H, W, P) numpy views into flat
// Go buffers over a per-match reusable Scratch, per this codebase's
// preference for explicit strides over slice-of-slices in hot loops.
package resolver

import (
	"haliteengine/internal/board"
	"haliteengine/internal/grid"
)

// Stats field layout is fixed and positional, matching game.py's
// STATS_* constants; callers index Scratch.Stats[p][field] directly.
const (
	StrengthLossToMovementCap = iota
	StrengthLossToProductionCap
	DamageTaken
	OverkillDamage
	OverkillDamageTaken
	RealizedProduction
	Territory
	Production
	Strength
	NumStatsFields
)

const noPiece = -1

// Scratch holds the per-turn working buffers for one match, sized once
// per board and reused across turns to avoid per-turn allocation.
type Scratch struct {
	height, width, numPlayers int

	pieces        []int32
	moved         []bool
	injuries      []int32
	injureMap     []int32
	overkillDmg   []int32
	overkillTaken []int32

	Stats [][NumStatsFields]int64
}

// NewScratch allocates working buffers sized for a board of the given
// dimensions and player count.
func NewScratch(height, width, numPlayers int) *Scratch {
	s := &Scratch{height: height, width: width, numPlayers: numPlayers}
	size := height * width * numPlayers
	s.pieces = make([]int32, size)
	s.moved = make([]bool, size)
	s.injuries = make([]int32, size)
	s.injureMap = make([]int32, height*width)
	s.overkillDmg = make([]int32, size)
	s.overkillTaken = make([]int32, size)
	s.Stats = make([][NumStatsFields]int64, numPlayers)
	return s
}

func (s *Scratch) idx3(y, x, p int) int {
	return (y*s.width+x)*s.numPlayers + p
}

func (s *Scratch) resetStats() {
	for p := range s.Stats {
		s.Stats[p] = [NumStatsFields]int64{}
	}
}

// ResolveTurn mutates m in place to reflect one turn's outcome given
// each player's move grid (moves[p] is a dense height*width direction
// array per internal/rle.DecodeMoves; nil means all Still), and
// returns the per-player stats accumulated during the turn.
func ResolveTurn(m *board.GameMap, moves [][]int, s *Scratch) [][NumStatsFields]int64 {
	s.resetStats()
	for i := range s.pieces {
		s.pieces[i] = noPiece
		s.moved[i] = false
		s.injuries[i] = noPiece
		s.overkillDmg[i] = 0
		s.overkillTaken[i] = 0
	}
	for i := range s.injureMap {
		s.injureMap[i] = 0
	}

	applyMoves(m, moves, s)
	computeInjuries(m, s)
	resolveCombat(s)
	rebuildMap(m, s)

	return s.Stats
}

func applyMoves(m *board.GameMap, moves [][]int, s *Scratch) {
	h, w, p := s.height, s.width, s.numPlayers

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cell := m.Idx(y, x)
			for pl := 0; pl < p; pl++ {
				if moves[pl] == nil {
					continue
				}
				dir := grid.Direction(moves[pl][cell])
				if dir == grid.Still {
					continue
				}

				s.moved[s.idx3(y, x, pl)] = true
				strength := int32(m.Strength[cell])

				m.Strength[cell] = 0
				m.Owner[cell] = 0

				origin := s.idx3(y, x, pl)
				if s.pieces[origin] == noPiece {
					s.pieces[origin] = 0
				}

				ny, nx := grid.Step(y, x, dir, h, w)
				dst := s.idx3(ny, nx, pl)
				if s.pieces[dst] == noPiece {
					s.pieces[dst] = 0
				}
				s.pieces[dst] += strength
				if s.pieces[dst] > 255 {
					lost := s.pieces[dst] - 255
					s.Stats[pl][StrengthLossToMovementCap] += int64(lost)
					s.pieces[dst] = 255
				}
			}
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cell := m.Idx(y, x)
			for pl := 0; pl < p; pl++ {
				i3 := s.idx3(y, x, pl)
				if s.moved[i3] {
					continue
				}
				if int(m.Owner[cell]) != pl+1 {
					continue
				}
				if s.pieces[i3] == noPiece {
					s.pieces[i3] = 0
				}

				prod := int32(m.Production[cell])
				str := int32(m.Strength[cell])
				s.pieces[i3] += prod + str
				s.Stats[pl][RealizedProduction] += int64(prod)
				if s.pieces[i3] > 255 {
					lost := s.pieces[i3] - 255
					s.Stats[pl][StrengthLossToProductionCap] += int64(lost)
					s.Stats[pl][RealizedProduction] -= int64(lost)
					s.pieces[i3] = 255
				}

				m.Strength[cell] = 0
				m.Owner[cell] = 0
			}
		}
	}
}

func computeInjuries(m *board.GameMap, s *Scratch) {
	h, w, p := s.height, s.width, s.numPlayers

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for pl := 0; pl < p; pl++ {
				strength := s.pieces[s.idx3(y, x, pl)]
				if strength < 0 {
					continue
				}

				for d := grid.Still; d < grid.NumDirections; d++ {
					delta := grid.Deltas[d]
					ny, nx := grid.Step(y, x, grid.Direction(d), h, w)
					for other := 0; other < p; other++ {
						if other == pl {
							continue
						}
						ti := s.idx3(ny, nx, other)
						if s.injuries[ti] == noPiece {
							s.injuries[ti] = 0
						}
						s.injuries[ti] += strength
						if delta.DY != 0 || delta.DX != 0 {
							s.overkillDmg[s.idx3(ny, nx, pl)] += strength
							s.overkillTaken[ti] += strength
						}
					}
				}

				cell := m.Idx(y, x)
				siteStrength := int32(m.Strength[cell])
				if siteStrength > 0 {
					si := s.idx3(y, x, pl)
					if s.injuries[si] == noPiece {
						s.injuries[si] = 0
					}
					s.injuries[si] += siteStrength
					s.injureMap[cell] += strength
				}
			}
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for pl := 0; pl < p; pl++ {
				dmg := s.overkillDmg[s.idx3(y, x, pl)]
				if dmg > 0 {
					for other := 0; other < p; other++ {
						if other == pl {
							continue
						}
						piece := s.pieces[s.idx3(y, x, other)]
						if piece > 0 {
							s.Stats[pl][OverkillDamage] += int64(min32(piece, dmg))
						}
					}
				}

				piece := s.pieces[s.idx3(y, x, pl)]
				taken := s.overkillTaken[s.idx3(y, x, pl)]
				if piece > 0 && taken > 0 {
					s.Stats[pl][OverkillDamageTaken] += int64(min32(piece, taken))
				}
			}
		}
	}
}

func resolveCombat(s *Scratch) {
	for i, piece := range s.pieces {
		if piece < 0 {
			continue
		}
		pl := i % s.numPlayers
		injury := s.injuries[i]
		switch {
		case injury >= piece:
			s.Stats[pl][DamageTaken] += int64(piece)
			s.pieces[i] = noPiece
		case injury >= 0:
			s.Stats[pl][DamageTaken] += int64(injury)
			s.pieces[i] -= injury
		}
	}
}

func rebuildMap(m *board.GameMap, s *Scratch) {
	h, w, p := s.height, s.width, s.numPlayers

	for cell, injure := range s.injureMap {
		str := int32(m.Strength[cell])
		str -= injure
		if str < 0 {
			str = 0
		}
		m.Strength[cell] = uint8(str)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cell := m.Idx(y, x)
			for pl := 0; pl < p; pl++ {
				piece := s.pieces[s.idx3(y, x, pl)]
				if piece <= noPiece {
					continue
				}
				s.Stats[pl][Production] += int64(m.Production[cell])
				s.Stats[pl][Territory]++
				m.Owner[cell] = uint8(pl + 1)
				s.Stats[pl][Strength] += int64(piece)
				m.Strength[cell] = uint8(piece)
			}
		}
	}
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
