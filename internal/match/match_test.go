package match

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"haliteengine/internal/botsession"
	"haliteengine/internal/config"
)

// stillBotRuntime launches an in-process fake bot that replies to init
// with a fixed name and to every frame with an empty (all-Still) move
// line, enough to drive Driver.Run to completion without touching a
// real process or container.
type stillBotRuntime struct{}

type stillBotStream struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (s *stillBotStream) Read(b []byte) (int, error)  { return s.r.Read(b) }
func (s *stillBotStream) Write(b []byte) (int, error) { return s.w.Write(b) }
func (s *stillBotStream) Close() error {
	_ = s.r.Close()
	return s.w.Close()
}

func (stillBotRuntime) Start(ctx context.Context, image string) (io.ReadWriteCloser, error) {
	toBotR, toBotW := io.Pipe()
	fromBotR, fromBotW := io.Pipe()

	go func() {
		scanner := bufio.NewScanner(toBotR)
		// init: bot_id, dims, production, first_frame
		for i := 0; i < 4; i++ {
			if !scanner.Scan() {
				return
			}
		}
		if _, err := io.WriteString(fromBotW, image+"\n"); err != nil {
			return
		}
		// every subsequent line is a frame; reply with no moves
		for scanner.Scan() {
			if _, err := io.WriteString(fromBotW, "\n"); err != nil {
				return
			}
		}
	}()

	return &stillBotStream{r: fromBotR, w: toBotW}, nil
}

func TestDriverRunCompletesWithAllStillBots(t *testing.T) {
	Convey("Given a 2-bot match where neither bot ever moves", t, func() {
		cfg := &config.MatchConfig{
			Width:  8,
			Height: 8,
			Seed:   99,
			Bots: []config.BotConfig{
				{Image: "alpha"},
				{Image: "beta"},
			},
		}
		driver := NewDriver(slog.Default(), cfg, stillBotRuntime{}, DemoteDead)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		Convey("Run produces a replay with a first frame and standings for both bots", func() {
			result, err := driver.Run(ctx)
			So(err, ShouldBeNil)
			So(result.Replay.NumPlayers, ShouldEqual, 2)
			So(result.Replay.PlayerNames, ShouldResemble, []string{"alpha", "beta"})
			So(len(result.Ranks), ShouldEqual, 2)
			So(len(result.Replay.Frames), ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}

func TestDriverRunFatalOnTimeout(t *testing.T) {
	Convey("Given a bot that never replies and a Fatal timeout policy", t, func() {
		cfg := &config.MatchConfig{
			Width:  8,
			Height: 8,
			Seed:   1,
			Bots: []config.BotConfig{
				{Image: "alpha"},
				{Image: "beta"},
			},
			FrameTimeout: "10ms",
		}

		silent := deadlockRuntime{}
		driver := NewDriver(slog.Default(), cfg, silent, Fatal)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		Convey("Run returns an error instead of hanging", func() {
			_, err := driver.Run(ctx)
			So(err, ShouldNotBeNil)
		})
	})
}

// deadlockRuntime answers init, then reads every frame but never
// replies to one.
type deadlockRuntime struct{}

func (deadlockRuntime) Start(ctx context.Context, image string) (io.ReadWriteCloser, error) {
	toBotR, toBotW := io.Pipe()
	fromBotR, fromBotW := io.Pipe()
	go func() {
		scanner := bufio.NewScanner(toBotR)
		for i := 0; i < 4; i++ {
			if !scanner.Scan() {
				return
			}
		}
		_, _ = io.WriteString(fromBotW, image+"\n")
		// then keep consuming frames without ever answering
		for scanner.Scan() {
		}
	}()
	return &stillBotStream{r: fromBotR, w: toBotW}, nil
}

var _ botsession.ContainerRuntime = stillBotRuntime{}
var _ botsession.ContainerRuntime = deadlockRuntime{}
