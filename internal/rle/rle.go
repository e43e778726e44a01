// Package rle implements the wire codec for board frames and bot move
// replies: a run-length encoding of the owner plane followed by a flat
// strength tail, and the dense-to-triple-to-dense move format.
package rle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Frame is a dense (owner, strength) snapshot, row-major over an H-by-W
// board. Both planes share shape (H, W); Owner holds 0..=P, Strength
// holds 0..=255.
type Frame struct {
	Height, Width int
	Owner         []int16
	Strength      []int16
}

var (
	// ErrRunLengthMismatch is returned when a decoded owner RLE stream
	// does not sum to exactly Height*Width cells.
	ErrRunLengthMismatch = errors.New("rle: run lengths do not sum to height*width")
	// ErrStrengthTailLength is returned when the strength tail following
	// the owner RLE is the wrong length.
	ErrStrengthTailLength = errors.New("rle: strength tail has wrong length")
	// ErrMoveTripleCount is returned when a move reply's token count is
	// not a multiple of three.
	ErrMoveTripleCount = errors.New("rle: move token count is not a multiple of three")
)

// EncodeFrame produces the space-separated decimal stream: run-length
// pairs of (count, owner) covering exactly Height*Width cells, followed
// by Height*Width raw strength values in the same row-major order.
func EncodeFrame(f Frame) string {
	size := f.Height * f.Width
	var b strings.Builder
	// Worst case every cell differs, so guess generously to avoid
	// reallocation; strings.Builder will grow past this if needed.
	b.Grow(size * 4)

	if size > 0 {
		curr := f.Owner[0]
		count := 1
		for i := 1; i < size; i++ {
			o := f.Owner[i]
			if o == curr {
				count++
				continue
			}
			writeRun(&b, count, curr)
			curr = o
			count = 1
		}
		writeRun(&b, count, curr)
	}

	for i := 0; i < size; i++ {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(int64(f.Strength[i]), 10))
	}

	return b.String()
}

func writeRun(b *strings.Builder, count int, owner int16) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(strconv.Itoa(count))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(int64(owner), 10))
}

// DecodeFrame parses the stream produced by EncodeFrame back into a
// Frame of the given dimensions. It fails if the owner run lengths
// don't sum to exactly Height*Width, or if the trailing strength
// section isn't exactly Height*Width integers.
func DecodeFrame(height, width int, data string) (Frame, error) {
	size := height * width
	fields := strings.Fields(data)

	owner := make([]int16, 0, size)
	idx := 0
	for len(owner) < size {
		if idx+1 >= len(fields) {
			return Frame{}, fmt.Errorf("rle: %w: ran out of tokens at %d/%d cells", ErrRunLengthMismatch, len(owner), size)
		}
		count, err := strconv.Atoi(fields[idx])
		if err != nil {
			return Frame{}, fmt.Errorf("rle: invalid run count %q: %w", fields[idx], err)
		}
		ownerVal, err := strconv.Atoi(fields[idx+1])
		if err != nil {
			return Frame{}, fmt.Errorf("rle: invalid owner value %q: %w", fields[idx+1], err)
		}
		idx += 2

		if count < 0 || len(owner)+count > size {
			return Frame{}, fmt.Errorf("rle: %w", ErrRunLengthMismatch)
		}
		for i := 0; i < count; i++ {
			owner = append(owner, int16(ownerVal))
		}
	}
	if len(owner) != size {
		return Frame{}, fmt.Errorf("rle: %w", ErrRunLengthMismatch)
	}

	remaining := fields[idx:]
	if len(remaining) != size {
		return Frame{}, fmt.Errorf("rle: %w: got %d want %d", ErrStrengthTailLength, len(remaining), size)
	}

	strength := make([]int16, size)
	for i, tok := range remaining {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return Frame{}, fmt.Errorf("rle: invalid strength value %q: %w", tok, err)
		}
		strength[i] = int16(v)
	}

	return Frame{Height: height, Width: width, Owner: owner, Strength: strength}, nil
}

// MoveTriple is one (x, y, d) command from a bot's raw reply.
type MoveTriple struct {
	X, Y int
	D    int
}

// ParseMoveTriples splits a bot's move reply into raw triples without
// validating bounds or ownership — that filtering happens in DecodeMoves,
// which has access to the current frame. An empty reply yields no
// triples (valid, meaning "all still").
func ParseMoveTriples(reply string) ([]MoveTriple, error) {
	fields := strings.Fields(reply)
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields)%3 != 0 {
		return nil, fmt.Errorf("rle: %w: got %d tokens", ErrMoveTripleCount, len(fields))
	}

	triples := make([]MoveTriple, 0, len(fields)/3)
	for i := 0; i < len(fields); i += 3 {
		x, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, fmt.Errorf("rle: invalid move token %q: %w", fields[i], err)
		}
		y, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return nil, fmt.Errorf("rle: invalid move token %q: %w", fields[i+1], err)
		}
		d, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return nil, fmt.Errorf("rle: invalid move token %q: %w", fields[i+2], err)
		}
		triples = append(triples, MoveTriple{X: x, Y: y, D: d})
	}
	return triples, nil
}

// DecodeMoves turns a bot's raw reply into a dense (H, W) direction
// array for a single bot, dropping triples that are out of bounds or
// whose cell isn't owned by botID at the start of the turn (per the
// frame's owner plane). Dropped triples are not errors.
func DecodeMoves(reply string, botID int, owner []int16, height, width int) ([]int, error) {
	triples, err := ParseMoveTriples(reply)
	if err != nil {
		return nil, err
	}

	moves := make([]int, height*width) // zero value is Still (0)
	for _, t := range triples {
		if !inBounds(t.X, t.Y, height, width) {
			continue
		}
		cell := t.Y*width + t.X
		if int(owner[cell]) != botID {
			continue
		}
		if t.D < 0 || t.D >= 5 {
			continue
		}
		moves[cell] = t.D
	}
	return moves, nil
}

// EncodeMoveTriples is the inverse of DecodeMoves, used by tests to
// check the dense -> triple -> dense round trip: it emits one triple
// per non-still cell.
func EncodeMoveTriples(moves []int, height, width int) []MoveTriple {
	var triples []MoveTriple
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			d := moves[y*width+x]
			if d == 0 {
				continue
			}
			triples = append(triples, MoveTriple{X: x, Y: y, D: d})
		}
	}
	return triples
}

func inBounds(x, y, height, width int) bool {
	return x >= 0 && x < width && y >= 0 && y < height
}
