// Package mapgen builds the deterministic, seed-driven, symmetric
// toroidal board each match starts from: a tiling of dh x dw chunks,
// each chunk a blurred fractal factor field, reflected and (for P != 6)
// shifted for visual/competitive symmetry, then globally blurred and
// scaled into integer production/strength planes.
//
// Grounded on halite/map.py's _generate_map/_Region; generalized from
// numpy dense arrays to flat Go buffers with explicit strides, per the
// hot-path guidance for this codebase. The single math/rand.Rand
// instance is threaded explicitly end to end, mirroring how
// np.random.default_rng(seed) is threaded through the Python source —
// determinism is against this package's own output, not the Python
// implementation's bit generator.
package mapgen

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"haliteengine/internal/board"
)

// GenerationError reports an invalid (width, height, numPlayers)
// combination, or a trim step that collapsed the effective board to
// zero in one dimension.
type GenerationError struct {
	Width, Height, NumPlayers int
	Reason                    string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("mapgen: invalid (width=%d, height=%d, num_players=%d): %s",
		e.Width, e.Height, e.NumPlayers, e.Reason)
}

const (
	regionChunkSize = 4
	regionOwnWeight = 0.75
	blurOwnWeight   = 2.0 / 3.0
)

// Generate produces a new symmetric board for numPlayers bots. The
// returned board's width/height may be smaller than requested — chunk
// trimming can shrink the effective dimensions (spec §4.C step 2); the
// returned GameMap's Width/Height are authoritative.
func Generate(log *slog.Logger, width, height, numPlayers int, seed int64) (*board.GameMap, error) {
	if numPlayers < 1 || numPlayers > board.MaxPlayers {
		return nil, &GenerationError{width, height, numPlayers, "num_players out of [1,6]"}
	}
	if width < 1 || height < 1 {
		return nil, &GenerationError{width, height, numPlayers, "width and height must be positive"}
	}

	rng := rand.New(rand.NewSource(seed))

	// 1) tiling orientation
	preferHorizontal := rng.Intn(2) == 1
	var dh, dw int
	if preferHorizontal {
		dh = board.Isqrt(numPlayers)
		for numPlayers%dh != 0 {
			dh--
		}
		dw = numPlayers / dh
	} else {
		dw = board.Isqrt(numPlayers)
		for numPlayers%dw != 0 {
			dw--
		}
		dh = numPlayers / dw
	}

	// 2) chunk sizing, trimmed to divide evenly into num_players along
	// one axis
	cw := width / dw
	ch := height / dh
	if preferHorizontal {
		for ch%numPlayers != 0 {
			ch--
		}
	} else {
		for cw%numPlayers != 0 {
			cw--
		}
	}
	if cw <= 0 || ch <= 0 {
		return nil, &GenerationError{width, height, numPlayers, "chunk trimming collapsed effective board to zero"}
	}

	effWidth := cw * dw
	effHeight := ch * dh

	if log != nil {
		log = log.With("seed", seed, "width", effWidth, "height", effHeight, "num_players", numPlayers)
		log.Debug("generating map", "prefer_horizontal", preferHorizontal, "dh", dh, "dw", dw, "ch", ch, "cw", cw)
	}

	// 3) factor kernels
	prodChunk := newRegion(cw, ch, rng).factors()
	strChunk := newRegion(cw, ch, rng).factors()

	// 4) tesselate
	owner := make([]uint8, effWidth*effHeight)
	prod := make([]float64, effWidth*effHeight)
	str := make([]float64, effWidth*effHeight)
	idx := func(y, x int) int { return y*effWidth + x }

	for a := 0; a < dh; a++ {
		for b := 0; b < dw; b++ {
			baseY, baseX := a*ch, b*cw
			for c := 0; c < ch; c++ {
				for d := 0; d < cw; d++ {
					y, x := baseY+c, baseX+d
					prod[idx(y, x)] = prodChunk[c][d]
					str[idx(y, x)] = strChunk[c][d]
				}
			}
			cy := baseY + ch/2
			cx := baseX + cw/2
			owner[idx(cy, cx)] = uint8(a*dw + b + 1)
		}
	}

	// 5) reflect
	reflectV := dh%2 == 0
	reflectH := dw%2 == 0
	rOwner := make([]uint8, len(owner))
	rProd := make([]float64, len(prod))
	rStr := make([]float64, len(str))
	for a := 0; a < dh; a++ {
		for b := 0; b < dw; b++ {
			vref := reflectV && a%2 == 1
			href := reflectH && b%2 == 1
			baseY, baseX := a*ch, b*cw
			for c := 0; c < ch; c++ {
				for d := 0; d < cw; d++ {
					y, x := baseY+c, baseX+d
					y0, x0 := baseY+c, baseX+d
					if vref {
						y0 = baseY + (ch - 1 - c)
					}
					if href {
						x0 = baseX + (cw - 1 - d)
					}
					rOwner[idx(y, x)] = owner[idx(y0, x0)]
					rProd[idx(y, x)] = prod[idx(y0, x0)]
					rStr[idx(y, x)] = str[idx(y0, x0)]
				}
			}
		}
	}

	// 6) shift (skipped for P == 6)
	sOwner, sProd, sStr := rOwner, rProd, rStr
	if numPlayers != 6 {
		sOwner = make([]uint8, len(rOwner))
		sProd = make([]float64, len(rProd))
		sStr = make([]float64, len(rStr))
		if preferHorizontal {
			k := rng.Intn(dw)
			shift := k * (effHeight / dw)
			for a := 0; a < dh; a++ {
				for b := 0; b < dw; b++ {
					baseY, baseX := a*ch, b*cw
					for c := 0; c < ch; c++ {
						y := baseY + c
						y0 := mod(baseY+b*shift+c, effHeight)
						for d := 0; d < cw; d++ {
							x := baseX + d
							sOwner[idx(y, x)] = rOwner[idx(y0, x)]
							sProd[idx(y, x)] = rProd[idx(y0, x)]
							sStr[idx(y, x)] = rStr[idx(y0, x)]
						}
					}
				}
			}
		} else {
			k := rng.Intn(dh)
			shift := k * (effWidth / dh)
			for a := 0; a < dh; a++ {
				for b := 0; b < dw; b++ {
					baseY, baseX := a*ch, b*cw
					for c := 0; c < ch; c++ {
						y := baseY + c
						for d := 0; d < cw; d++ {
							x := baseX + d
							x0 := mod(baseX+a*shift+d, effWidth)
							sOwner[idx(y, x)] = rOwner[idx(y, x0)]
							sProd[idx(y, x)] = rProd[idx(y, x0)]
							sStr[idx(y, x)] = rStr[idx(y, x0)]
						}
					}
				}
			}
		}
	}

	// 7) blur
	nIter := int(2*math.Sqrt(float64(effWidth*effHeight))/10) + 1
	prodF := sProd
	strF := sStr
	for i := 0; i < nIter; i++ {
		prodF = blurToroidal(prodF, effHeight, effWidth, blurOwnWeight)
		strF = blurToroidal(strF, effHeight, effWidth, blurOwnWeight)
	}

	// 8) scale
	prodMax := maxOf(prodF)
	strMax := maxOf(strF)
	topProd := rng.Intn(10) + 6
	topStr := rng.Intn(106) + 150

	prodOut := make([]uint8, len(prodF))
	strOut := make([]uint8, len(strF))
	for i := range prodF {
		v := prodF[i]
		if prodMax > 0 {
			v /= prodMax
		}
		prodOut[i] = uint8(math.Round(v * float64(topProd)))
	}
	for i := range strF {
		v := strF[i]
		if strMax > 0 {
			v /= strMax
		}
		strOut[i] = uint8(math.Round(v * float64(topStr)))
	}

	// 9) fix-up: every owned cell needs production >= 1
	for i, o := range sOwner {
		if o != 0 && prodOut[i] == 0 {
			prodOut[i] = 1
		}
	}

	gm := &board.GameMap{
		Width:      effWidth,
		Height:     effHeight,
		NumPlayers: numPlayers,
		Seed:       seed,
		Owner:      sOwner,
		Production: prodOut,
		Strength:   strOut,
	}

	if log != nil {
		log.Debug("map generation complete", "max_turns", board.MaxTurns(effWidth, effHeight))
	}

	return gm, nil
}

func mod(v, n int) int {
	m := v % n
	if m < 0 {
		m += n
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := 0.0
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

// blurToroidal runs one pass of the 4-neighbor wraparound blur used
// both for the global production/strength smoothing and (via a
// separate 0.75-weight variant) region factor trees.
func blurToroidal(vals []float64, height, width int, ownWeight float64) []float64 {
	out := make([]float64, len(vals))
	neighborWeight := (1 - ownWeight) / 4
	idx := func(y, x int) int { return y*width + x }
	for y := 0; y < height; y++ {
		up := mod(y-1, height)
		down := mod(y+1, height)
		for x := 0; x < width; x++ {
			left := mod(x-1, width)
			right := mod(x+1, width)
			out[idx(y, x)] = ownWeight*vals[idx(y, x)] + neighborWeight*(
				vals[idx(up, x)]+vals[idx(down, x)]+vals[idx(y, left)]+vals[idx(y, right)])
		}
	}
	return out
}
