package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"presencehub/internal/app/identity"
	"presencehub/internal/app/user"
)

// fakePeer records every frame the hub hands it. A positive capacity makes Send
// fail with ErrQueueFull once that many frames are held.
type fakePeer struct {
	id       string
	capacity int

	mu     sync.Mutex
	frames [][]byte
	closes int
}

func newFakePeer(id string) *fakePeer {
	return &fakePeer{id: id}
}

func (p *fakePeer) ID() string {
	return p.id
}

func (p *fakePeer) Send(frame []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closes > 0 {
		return ErrPeerClosed
	}
	if p.capacity > 0 && len(p.frames) >= p.capacity {
		return ErrQueueFull
	}

	p.frames = append(p.frames, append([]byte(nil), frame...))
	return nil
}

func (p *fakePeer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closes++
}

func (p *fakePeer) closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.closes > 0
}

// take returns the decoded frames received since the previous call.
func (p *fakePeer) take(t *testing.T) []ServerFrame {
	t.Helper()

	p.mu.Lock()
	raw := p.frames
	p.frames = nil
	p.mu.Unlock()

	out := make([]ServerFrame, 0, len(raw))
	for _, frame := range raw {
		decoded, err := DecodeServerFrame(frame)
		require.NoError(t, err, "hub wrote an undecodable frame: %s", frame)
		out = append(out, decoded)
	}
	return out
}

func rosterFrame(users ...user.User) ServerFrame {
	if users == nil {
		users = []user.User{}
	}
	return ServerFrame{Kind: FrameRoster, Roster: users}
}

func evFrame(kind EventKind, u user.User, text string) ServerFrame {
	return ServerFrame{Kind: FrameEvent, Event: Event{Kind: kind, User: u, Text: text}}
}

// startHub runs a hub for the duration of the test.
func startHub(t *testing.T) (*Hub, *identity.Registry) {
	t.Helper()

	ids := identity.NewRegistry()
	h := NewHub(ids)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = h.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})

	return h, ids
}

// settle waits until every event enqueued so far has been applied and returns the
// roster at that point.
func settle(t *testing.T, h *Hub) []user.User {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	users := h.Snapshot(ctx)
	require.NotNil(t, users, "hub did not answer in time")
	return users
}

func joinFrame(u user.User) []byte {
	frame, err := EncodeEvent(Event{Kind: KindJoin, User: u})
	if err != nil {
		panic(err)
	}
	return frame
}

func leaveFrame(u user.User) []byte {
	frame, err := EncodeEvent(Event{Kind: KindLeave, User: u})
	if err != nil {
		panic(err)
	}
	return frame
}

func sendFrame(u user.User, text string) []byte {
	frame, err := EncodeEvent(Event{Kind: KindSend, User: u, Text: text})
	if err != nil {
		panic(err)
	}
	return frame
}
