// Package match drives a single game from map generation through the
// final frame: launching bot sessions, running the init handshake,
// gathering moves turn by turn, applying them through the resolver,
// and assembling the resulting replay and standings.
//
// Grounded on halite/match.py's run_match. Python's
// asyncio.gather(*[stack.enter_async_context(bot) for bot in bots])
// fan-out (and the AsyncExitStack that unwinds all of them on error)
// becomes an errgroup.WithContext fan-out here, mirroring how
// server/fastview/client.go's Sync method runs its three duplex
// loops — any one session's failure cancels the group's shared
// context, and the group unwinds the rest deterministically.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"haliteengine/internal/board"
	"haliteengine/internal/botsession"
	"haliteengine/internal/config"
	"haliteengine/internal/mapgen"
	"haliteengine/internal/ranking"
	"haliteengine/internal/replay"
	"haliteengine/internal/resolver"
	"haliteengine/internal/rle"
	"haliteengine/internal/spectator"
)

// TimeoutPolicy resolves an ambiguity the original engine left
// implicit: what happens when a bot misses a frame deadline.
type TimeoutPolicy int

const (
	// Fatal aborts the match immediately, surfacing the timeout as a
	// match-level error. This is the default and matches the original
	// engine's behavior: match.py's asyncio.gather over bot_handle.send_frame
	// calls re-raises the first timeout it sees, unwinding the whole match.
	Fatal TimeoutPolicy = iota
	// DemoteDead stops querying the offending bot for the rest of the
	// match; it plays out every remaining turn as all-Still, and
	// whatever it already owns is still subject to combat/production
	// like any other player's pieces. Opt-in: one slow bot no longer
	// aborts the whole match, at the cost of diverging from the
	// original engine's fail-fast behavior.
	DemoteDead
)

// Result is everything a completed (or aborted) match produces.
type Result struct {
	Replay    *replay.Replay
	Ranks     []int
	LastAlive []int
}

// Driver runs one match end to end.
type Driver struct {
	log        *slog.Logger
	cfg        *config.MatchConfig
	runtime    botsession.ContainerRuntime
	policy     TimeoutPolicy
	spectators *spectator.Broadcaster
}

// NewDriver builds a Driver. A nil runtime defaults to launching bots
// as local subprocesses via botsession.ExecRuntime.
func NewDriver(log *slog.Logger, cfg *config.MatchConfig, runtime botsession.ContainerRuntime, policy TimeoutPolicy) *Driver {
	return &Driver{log: log, cfg: cfg, runtime: runtime, policy: policy}
}

// WithSpectators attaches a broadcaster that receives a FrameUpdate
// after every resolved turn. Publishing is best-effort and never
// blocks the match loop.
func (d *Driver) WithSpectators(b *spectator.Broadcaster) *Driver {
	d.spectators = b
	return d
}

// Run generates the map, plays the match to completion or elimination,
// and returns the assembled replay and standings.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	numPlayers := len(d.cfg.Bots)
	gm, err := mapgen.Generate(d.log, d.cfg.Width, d.cfg.Height, numPlayers, d.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("match: generate map: %w", err)
	}

	log := d.log.With("width", gm.Width, "height", gm.Height, "num_players", numPlayers, "seed", gm.Seed)
	log.Info("starting match")

	sessions := make([]*botsession.Session, numPlayers)
	for i, bc := range d.cfg.Bots {
		sessions[i] = botsession.New(d.log, i+1, bc.Image, d.runtime)
	}
	defer func() {
		for _, s := range sessions {
			_ = s.Close()
		}
	}()

	if err := startAll(ctx, sessions); err != nil {
		return nil, err
	}

	initTimeout, err := d.cfg.InitTimeoutDuration()
	if err != nil {
		return nil, err
	}
	frameTimeout, err := d.cfg.FrameTimeoutDuration()
	if err != nil {
		return nil, err
	}

	names, err := sendInitAll(ctx, sessions, gm, initTimeout)
	if err != nil {
		return nil, err
	}
	for i, bc := range d.cfg.Bots {
		if bc.Name != "" {
			names[i] = bc.Name
		}
	}

	ownerPlanes := [][]uint8{append([]uint8(nil), gm.Owner...)}
	var moveHistory [][]int
	productions := replay.NewProductionGrid(gm.Production, gm.Height, gm.Width)
	frames := [][][]replay.Cell{replay.NewFrame(gm.Owner, gm.Strength, gm.Height, gm.Width)}

	dead := make([]bool, numPlayers)
	scratch := resolver.NewScratch(gm.Height, gm.Width, numPlayers)
	maxTurns := board.MaxTurns(gm.Width, gm.Height)

	for turn := 0; turn < maxTurns; turn++ {
		if gm.AliveCount() <= 1 {
			break
		}

		frameStr := rle.EncodeFrame(toFrame(gm))
		ownerSnapshot := toInt16(gm.Owner)

		perPlayerMoves, combined, err := d.gatherMoves(ctx, sessions, dead, frameStr, ownerSnapshot, gm, frameTimeout, log)
		if err != nil {
			return nil, err
		}

		resolver.ResolveTurn(gm, perPlayerMoves, scratch)

		ownerPlanes = append(ownerPlanes, append([]uint8(nil), gm.Owner...))
		moveHistory = append(moveHistory, combined)
		frames = append(frames, replay.NewFrame(gm.Owner, gm.Strength, gm.Height, gm.Width))

		if d.spectators != nil {
			d.spectators.Publish(spectator.FrameUpdate{
				Turn:     turn + 1,
				Owner:    append([]uint8(nil), gm.Owner...),
				Strength: append([]uint8(nil), gm.Strength...),
			})
		}
	}

	ranks, lastAlive := ranking.Rank(ownerPlanes, numPlayers)

	moveGrids := make([][][]int, len(moveHistory))
	for i, m := range moveHistory {
		moveGrids[i] = replay.NewMoveGrid(m, gm.Height, gm.Width)
	}

	r := &replay.Replay{
		Version:     replay.CurrentVersion,
		Width:       gm.Width,
		Height:      gm.Height,
		NumPlayers:  numPlayers,
		NumFrames:   len(frames),
		PlayerNames: names,
		Productions: productions,
		Frames:      frames,
		Moves:       moveGrids,
		Seed:        gm.Seed,
		Ranks:       ranks,
		LastAlive:   lastAlive,
	}

	log.Info("match complete", "frames", len(frames), "ranks", ranks)
	return &Result{Replay: r, Ranks: ranks, LastAlive: lastAlive}, nil
}

func startAll(ctx context.Context, sessions []*botsession.Session) error {
	// Start gets the match ctx, not the group's: the group ctx is
	// cancelled as soon as Wait returns, which would kill processes
	// launched with exec.CommandContext.
	group, _ := errgroup.WithContext(ctx)
	for _, s := range sessions {
		s := s
		group.Go(func() error {
			return s.Start(ctx)
		})
	}
	if err := group.Wait(); err != nil {
		return fmt.Errorf("match: start bots: %w", err)
	}
	return nil
}

func sendInitAll(ctx context.Context, sessions []*botsession.Session, gm *board.GameMap, timeout time.Duration) ([]string, error) {
	dims := fmt.Sprintf("%d %d", gm.Width, gm.Height)
	production := joinInts(gm.Production)
	firstFrame := rle.EncodeFrame(toFrame(gm))

	names := make([]string, len(sessions))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, s := range sessions {
		i, s := i, s
		group.Go(func() error {
			name, err := s.SendInit(groupCtx, dims, production, firstFrame, timeout)
			if err != nil {
				return err
			}
			names[i] = name
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("match: init bots: %w", err)
	}
	return names, nil
}

// gatherMoves queries every living bot for its move reply concurrently,
// decodes each into a dense per-cell direction array, and folds them
// into the single combined grid the replay records (at most one player
// can have a piece on any given cell, so taking the max across players
// per cell recovers the turn's one active direction there).
func (d *Driver) gatherMoves(
	ctx context.Context,
	sessions []*botsession.Session,
	dead []bool,
	frameStr string,
	ownerSnapshot []int16,
	gm *board.GameMap,
	frameTimeout time.Duration,
	log *slog.Logger,
) ([][]int, []int, error) {
	numPlayers := len(sessions)
	size := gm.Height * gm.Width
	perPlayerMoves := make([][]int, numPlayers)

	group, groupCtx := errgroup.WithContext(ctx)
	for i, s := range sessions {
		i, s := i, s
		if dead[i] {
			perPlayerMoves[i] = make([]int, size)
			continue
		}
		group.Go(func() error {
			reply, err := s.SendFrame(groupCtx, frameStr, frameTimeout)
			if err != nil {
				if errors.Is(err, botsession.ErrTimeout) && d.policy == DemoteDead {
					log.Warn("bot missed frame deadline, demoting to dead", "bot_id", i+1)
					dead[i] = true
					perPlayerMoves[i] = make([]int, size)
					return nil
				}
				return err
			}

			moves, err := rle.DecodeMoves(reply, i+1, ownerSnapshot, gm.Height, gm.Width)
			if err != nil {
				if d.policy == DemoteDead {
					log.Warn("bot sent malformed move reply, demoting to dead", "bot_id", i+1, "err", err)
					dead[i] = true
					perPlayerMoves[i] = make([]int, size)
					return nil
				}
				return fmt.Errorf("bot %d: %w: %w", i+1, botsession.ErrProtocol, err)
			}
			perPlayerMoves[i] = moves
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, fmt.Errorf("match: gather moves: %w", err)
	}

	combined := make([]int, size)
	for _, moves := range perPlayerMoves {
		for cell, dir := range moves {
			if dir != 0 {
				combined[cell] = dir
			}
		}
	}

	return perPlayerMoves, combined, nil
}

func toFrame(gm *board.GameMap) rle.Frame {
	return rle.Frame{
		Height:   gm.Height,
		Width:    gm.Width,
		Owner:    toInt16(gm.Owner),
		Strength: toInt16(gm.Strength),
	}
}

func toInt16(vals []uint8) []int16 {
	out := make([]int16, len(vals))
	for i, v := range vals {
		out[i] = int16(v)
	}
	return out
}

func joinInts(vals []uint8) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, " ")
}
