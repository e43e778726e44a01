// Package replay assembles and serializes the record of a completed
// match: dimensions, player names, the production plane, and every
// recorded (owner, strength) frame plus the moves that produced it.
//
// Grounded on halite/match.py's ReplayModel (a pydantic BaseModel);
// translated to a plain Go struct with encoding/json tags matching the
// same field names, since this codebase has no JSON library dependency
// beyond the standard one anywhere in the retrieved pack, and the
// format is a simple flat document with no need for a schema/validation
// layer pydantic provides.
package replay

import "encoding/json"

// CurrentVersion is written into every replay produced by this engine,
// matching the original format's version marker.
const CurrentVersion = 11

// Cell is a single (owner, strength) pair, kept as a 2-element array in
// the wire format rather than a named struct to match the original
// [owner, strength] tuple shape.
type Cell [2]int

// Replay is the complete, self-contained record of one match.
type Replay struct {
	Version     int         `json:"version"`
	Height      int         `json:"height"`
	Width       int         `json:"width"`
	NumPlayers  int         `json:"num_players"`
	NumFrames   int         `json:"num_frames"`
	PlayerNames []string    `json:"player_names"`
	Productions [][]int     `json:"productions"`
	Frames      [][][]Cell  `json:"frames"`
	Moves       [][][]int   `json:"moves"`
	Seed        int64       `json:"seed"`
	Ranks       []int       `json:"ranks,omitempty"`
	LastAlive   []int       `json:"last_alive,omitempty"`
}

// Production returns Productions under the name the original format's
// ReplayModel.production property used, for callers translating
// directly from that vocabulary.
func (r *Replay) Production() [][]int {
	return r.Productions
}

// Marshal serializes the replay to its canonical JSON form.
func (r *Replay) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal parses a replay previously produced by Marshal.
func Unmarshal(data []byte) (*Replay, error) {
	r := &Replay{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}

// NewFrame builds one frame's [][]Cell from flat row-major owner and
// strength planes of the given dimensions.
func NewFrame(owner, strength []uint8, height, width int) [][]Cell {
	frame := make([][]Cell, height)
	for y := 0; y < height; y++ {
		row := make([]Cell, width)
		for x := 0; x < width; x++ {
			i := y*width + x
			row[x] = Cell{int(owner[i]), int(strength[i])}
		}
		frame[y] = row
	}
	return frame
}

// NewMoveGrid builds one turn's [][]int move grid from a flat
// combined (per-cell max across bots) direction plane.
func NewMoveGrid(moves []int, height, width int) [][]int {
	grid := make([][]int, height)
	for y := 0; y < height; y++ {
		row := make([]int, width)
		for x := 0; x < width; x++ {
			row[x] = moves[y*width+x]
		}
		grid[y] = row
	}
	return grid
}

// NewProductionGrid builds the [][]int production plane recorded once
// per match.
func NewProductionGrid(production []uint8, height, width int) [][]int {
	grid := make([][]int, height)
	for y := 0; y < height; y++ {
		row := make([]int, width)
		for x := 0; x < width; x++ {
			row[x] = int(production[y*width+x])
		}
		grid[y] = row
	}
	return grid
}
