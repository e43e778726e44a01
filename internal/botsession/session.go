// Package botsession manages one bot's lifecycle for the duration of a
// match: launching it via a ContainerRuntime, exchanging the init and
// per-turn frame/move lines over its stdio, and tearing it down.
//
// Grounded on server/fastview/client.go's websock (semaphore-serialized
// reads/writes with deadlines) and on halite/docker.py's DockerSession
// (reader thread + line queue + write_line/read_line). The Python
// source's RaisingQueue — a thread+queue+exception-sentinel pattern for
// getting a background thread's errors back onto the calling
// goroutine — is replaced here with a channel carrying a line-or-error
// union, which is the idiomatic Go analog: a dedicated reader pump
// goroutine feeds a buffered channel, and callers select on it with a
// timeout instead of blocking on a queue.get(timeout=...).
package botsession

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"haliteengine/internal/atomicstate"
)

var (
	// ErrTimeout is returned when a bot does not respond within the
	// caller-supplied deadline.
	ErrTimeout = errors.New("botsession: timed out waiting for bot")
	// ErrProtocol is returned when a bot's reply cannot be parsed per
	// the wire protocol.
	ErrProtocol = errors.New("botsession: protocol violation")
	// ErrClosed is returned by operations attempted on a session that
	// has already started closing.
	ErrClosed = errors.New("botsession: session is closed")
)

type lineMsg struct {
	line string
	err  error
}

// Session is one bot's process/container plus its line-oriented I/O.
type Session struct {
	BotID int
	Image string
	Name  string

	state *atomicstate.Cell
	log   *slog.Logger

	runtime ContainerRuntime
	stream  io.ReadWriteCloser

	lines chan lineMsg

	writeMu sync.Mutex

	cancel context.CancelFunc
}

// New creates a session bound to botID and image, not yet started.
func New(log *slog.Logger, botID int, image string, runtime ContainerRuntime) *Session {
	if runtime == nil {
		runtime = &ExecRuntime{}
	}
	return &Session{
		BotID:   botID,
		Image:   image,
		state:   atomicstate.NewCell(atomicstate.Created),
		log:     log.With("bot_id", botID, "image", image),
		runtime: runtime,
		lines:   make(chan lineMsg, 16),
	}
}

// State reports the session's current lifecycle stage.
func (s *Session) State() atomicstate.State {
	return s.state.Load()
}

// Start launches the bot process and begins pumping its stdout into
// the session's internal line channel.
func (s *Session) Start(ctx context.Context) error {
	if !s.state.AdvanceTo(atomicstate.Started) {
		return fmt.Errorf("botsession: bot %d: %w", s.BotID, ErrClosed)
	}

	stream, err := s.runtime.Start(ctx, s.Image)
	if err != nil {
		s.state.Store(atomicstate.Closed)
		return fmt.Errorf("botsession: bot %d: start: %w", s.BotID, err)
	}
	s.stream = stream
	s.state.AdvanceTo(atomicstate.ImagePresent)

	pumpCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.readPump(pumpCtx, stream)

	s.state.AdvanceTo(atomicstate.Running)
	s.log.Debug("bot session started")
	return nil
}

func (s *Session) readPump(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)

	for scanner.Scan() {
		select {
		case s.lines <- lineMsg{line: scanner.Text()}:
		case <-ctx.Done():
			return
		}
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case s.lines <- lineMsg{err: err}:
	case <-ctx.Done():
	}
}

func (s *Session) readLine(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-s.lines:
		if msg.err != nil {
			return "", fmt.Errorf("botsession: bot %d: %w", s.BotID, msg.err)
		}
		return msg.line, nil
	case <-timer.C:
		return "", fmt.Errorf("botsession: bot %d: %w", s.BotID, ErrTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Session) writeLine(line string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.state.Load() >= atomicstate.Closing {
		return fmt.Errorf("botsession: bot %d: %w", s.BotID, ErrClosed)
	}
	_, err := io.WriteString(s.stream, line+"\n")
	if err != nil {
		return fmt.Errorf("botsession: bot %d: write: %w", s.BotID, err)
	}
	return nil
}

// SendInit performs the handshake: bot id, board dimensions, flat
// production plane, and the first frame, then reads back the bot's
// chosen display name.
func (s *Session) SendInit(ctx context.Context, dims, production, firstFrame string, timeout time.Duration) (string, error) {
	for _, line := range []string{fmt.Sprintf("%d", s.BotID), dims, production, firstFrame} {
		if err := s.writeLine(line); err != nil {
			return "", err
		}
	}

	name, err := s.readLine(ctx, timeout)
	if err != nil {
		return "", fmt.Errorf("botsession: bot %d: init: %w", s.BotID, err)
	}
	s.Name = name
	return name, nil
}

// SendFrame sends the current turn's RLE-encoded frame and returns the
// bot's raw move reply (still to be decoded by internal/rle).
func (s *Session) SendFrame(ctx context.Context, frame string, timeout time.Duration) (string, error) {
	if err := s.writeLine(frame); err != nil {
		return "", err
	}

	reply, err := s.readLine(ctx, timeout)
	if err != nil {
		return "", fmt.Errorf("botsession: bot %d: frame: %w", s.BotID, err)
	}
	return reply, nil
}

// Close tears the session down. Safe to call more than once; only the
// first call performs teardown.
func (s *Session) Close() error {
	if !s.state.AdvanceTo(atomicstate.Closing) {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	var err error
	if s.stream != nil {
		err = s.stream.Close()
	}
	s.state.Store(atomicstate.Closed)
	s.log.Debug("bot session closed", "err", err)
	return err
}
