// Package spectator optionally streams a match's frame-by-frame board
// state to a websocket viewer, entirely outside the match driver's
// critical path: Publish never blocks, and a slow or absent viewer
// never holds up the match. All viewers read from one shared update
// queue, so with several connected each update reaches only one of
// them.
//
// Grounded on server/fastview/client.go (the websock read/write
// semaphore-with-deadline wrapper and its ping/pong liveness loop) and
// server/fastview/view_builder.go's broadcast-to-many pattern, here
// built directly on channerics.Broadcast instead of a reusable generic
// builder since this package only ever has one data model (FrameUpdate).
package spectator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
)

const (
	writeWait        = time.Second
	pingResolution   = 200 * time.Millisecond
	pongWait         = pingResolution * 4
	publishBufferLen = 8
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FrameUpdate is one turn's board snapshot, broadcast verbatim to
// every connected spectator as JSON.
type FrameUpdate struct {
	Turn     int     `json:"turn"`
	Owner    []uint8 `json:"owner"`
	Strength []uint8 `json:"strength"`
}

// Broadcaster hands FrameUpdates to websocket spectators. Every
// subscriber drains the same buffered channel, so each update is
// delivered to at most one subscriber. The zero value is not usable;
// use NewBroadcaster.
type Broadcaster struct {
	mu       sync.Mutex
	updates  chan FrameUpdate
	done     <-chan struct{}
	cancel   context.CancelFunc
	fanoutWg sync.WaitGroup
}

// NewBroadcaster creates a broadcaster bound to ctx. It starts no
// goroutine itself; each subscriber's pump starts in subscribe and
// stops once ctx is canceled or Close is called.
func NewBroadcaster(ctx context.Context) *Broadcaster {
	innerCtx, cancel := context.WithCancel(ctx)
	return &Broadcaster{
		updates: make(chan FrameUpdate, publishBufferLen),
		done:    innerCtx.Done(),
		cancel:  cancel,
	}
}

// Publish queues an update for whichever subscriber reads it first; an
// update published before anyone subscribes waits in the buffer. It
// drops the update rather than blocking if the internal buffer is
// full — spectators are best-effort, never a match-pacing dependency.
func (b *Broadcaster) Publish(update FrameUpdate) {
	select {
	case b.updates <- update:
	default:
	}
}

// Close stops the fan-out pump and releases its resources.
func (b *Broadcaster) Close() {
	b.cancel()
}

// ServeHTTP upgrades the request to a websocket and streams
// FrameUpdates to it until the client disconnects or the broadcaster
// is closed.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sock := newSock(conn)
	defer sock.close()

	sub := b.subscribe()

	if err := streamTo(r.Context(), sock, sub); err != nil {
		_ = err // connection errors here are routine (viewer closed tab); nothing to recover
	}
}

// subscribe taps the broadcaster's update stream via channerics.Broadcast,
// so each viewer gets its own channel fed from the same source; viewers
// compete for updates on that source rather than each receiving a copy.
func (b *Broadcaster) subscribe() <-chan FrameUpdate {
	chans := channerics.Broadcast(b.done, b.updates, 1)
	return chans[0]
}

func streamTo(ctx context.Context, sock *sock, updates <-chan FrameUpdate) error {
	group := make(chan error, 2)

	go func() {
		group <- sock.pingPong(ctx)
	}()
	go func() {
		group <- publishLoop(ctx, sock, updates)
	}()

	return <-group
}

func publishLoop(ctx context.Context, sock *sock, updates <-chan FrameUpdate) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := sock.writeJSON(ctx, update); err != nil {
				return err
			}
		}
	}
}

// ErrSockCongestion indicates too many waiters on the socket for a
// given operation.
var ErrSockCongestion = errors.New("spectator: socket operation congested")

const (
	readDeadline  = time.Second
	writeDeadline = time.Second
)

// sock serializes reads and writes to one websocket connection, the
// same single-slot-channel-as-mutex technique as fastview's websock.
type sock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	conn     *websocket.Conn
}

func newSock(conn *websocket.Conn) *sock {
	return &sock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		conn:     conn,
	}
}

func (s *sock) close() {
	s.readSem <- struct{}{}
	s.writeSem <- struct{}{}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = s.conn.Close()
}

func (s *sock) writeJSON(ctx context.Context, v any) error {
	select {
	case <-ctx.Done():
		return nil
	case s.writeSem <- struct{}{}:
		defer func() { <-s.writeSem }()
		if err := s.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
			return fmt.Errorf("spectator: set write deadline: %w", err)
		}
		return s.conn.WriteJSON(v)
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}

// pingPong keeps the connection alive and detects a dead peer, mirroring
// fastview client's liveness loop.
func (s *sock) pingPong(ctx context.Context) error {
	pong := make(chan struct{}, 1)
	s.conn.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	ticker := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker:
			if time.Since(lastPong) > pongWait {
				return fmt.Errorf("spectator: pong deadline exceeded")
			}
			if err := s.ping(); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (s *sock) ping() error {
	select {
	case s.writeSem <- struct{}{}:
		defer func() { <-s.writeSem }()
		return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}
