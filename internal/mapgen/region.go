package mapgen

import (
	"math"
	"math/rand"
)

// region is the recursive fractal factor-tree node used to build one
// chunk's production or strength kernel: it splits itself into a 4x4
// grid of sub-regions (down to a 1x1 base case), blurs the immediate
// children's factors toroidally around that 4x4 grid, and later
// multiplies each descendant leaf's factor by every ancestor's factor
// on the way down. Grounded on halite/map.py's _Region class.
type region struct {
	factor   float64
	children [][]*region
}

// newRegion builds one region node and, recursively, its whole subtree:
// every node gets an independent factor = U(0,1)^1.5, nodes larger than
// 1x1 split into up to regionChunkSize x regionChunkSize children sized
// to divide (width, height) as evenly as possible, and the immediate
// children's factors are blurred once, toroidally, around the row/col
// grid of children before recursion returns.
func newRegion(width, height int, rng *rand.Rand) *region {
	r := &region{
		factor: math.Pow(rng.Float64(), 1.5),
	}

	if width == 1 && height == 1 {
		return r
	}

	cw := width / regionChunkSize
	ch := height / regionChunkSize
	difW := width - regionChunkSize*cw
	difH := height - regionChunkSize*ch

	for a := 0; a < regionChunkSize; a++ {
		tch := ch
		if a < difH {
			tch++
		}
		if tch <= 0 {
			continue
		}
		var row []*region
		for b := 0; b < regionChunkSize; b++ {
			tcw := cw
			if b < difW {
				tcw++
			}
			if tcw > 0 {
				row = append(row, newRegion(tcw, tch, rng))
			}
		}
		if len(row) > 0 {
			r.children = append(r.children, row)
		}
	}

	r.blurChildren()
	return r
}

// blurChildren runs one toroidal 4-neighbor smoothing pass over the
// immediate children's factor values, wrapping around the row/col grid
// of children (not the board itself — this grid is typically much
// smaller than 4x4 near the leaves).
func (r *region) blurChildren() {
	rows := len(r.children)
	if rows == 0 {
		return
	}
	cols := len(r.children[0])
	if cols == 0 {
		return
	}

	blurred := make([][]float64, rows)
	for a := range blurred {
		blurred[a] = make([]float64, cols)
	}

	neighborWeight := (1 - regionOwnWeight) / 4
	for a := 0; a < rows; a++ {
		up := mod(a-1, rows)
		down := mod(a+1, rows)
		for b := 0; b < cols; b++ {
			left := mod(b-1, cols)
			right := mod(b+1, cols)
			blurred[a][b] = regionOwnWeight*r.children[a][b].factor + neighborWeight*(
				r.children[up][b].factor+r.children[down][b].factor+r.children[a][left].factor+r.children[a][right].factor)
		}
	}

	for a := 0; a < rows; a++ {
		for b := 0; b < cols; b++ {
			r.children[a][b].factor = blurred[a][b]
		}
	}
}

// factors materializes the region's (height, width) leaf-value grid:
// a leaf returns its own factor; an interior node recurses into every
// child, scales each descendant leaf by its own factor (so a leaf's
// final value is the product of every ancestor's factor root to leaf),
// and tiles the children's blocks back together.
func (r *region) factors() [][]float64 {
	if len(r.children) == 0 {
		return [][]float64{{r.factor}}
	}

	childFactors := make([][][][]float64, len(r.children))
	for a, row := range r.children {
		childFactors[a] = make([][][]float64, len(row))
		for b, child := range row {
			childFactors[a][b] = child.factors()
		}
	}

	totalH := 0
	for a := range r.children {
		totalH += len(childFactors[a][0])
	}
	totalW := 0
	for b := range r.children[0] {
		totalW += len(childFactors[0][b][0])
	}

	out := make([][]float64, totalH)
	for i := range out {
		out[i] = make([]float64, totalW)
	}

	y := 0
	for a := range r.children {
		blockRows := len(childFactors[a][0])
		for iy := 0; iy < blockRows; iy++ {
			x := 0
			for b := range r.children[0] {
				block := childFactors[a][b]
				for ix := 0; ix < len(block[iy]); ix++ {
					out[y][x] = block[iy][ix] * r.factor
					x++
				}
			}
			y++
		}
	}

	return out
}
