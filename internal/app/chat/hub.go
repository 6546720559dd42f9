/*
Package chat contains the presence hub: the connection registry, the roster derived
from it, the wire codec and the event loop that orders every membership change and
its fan-out.

The Hub owns the registry from a single goroutine. Transport goroutines only enqueue
open, frame and close events, so each event is applied and fanned out completely
before the next one is looked at.
*/
package chat

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"presencehub/internal/app/user"
	"presencehub/internal/pkg/logx"
)

const inboxBuffer = 1024

var (
	// ErrQueueFull is returned by Peer.Send when the peer's outbound queue is full.
	ErrQueueFull = errors.New("chat: peer send queue full")

	// ErrPeerClosed is returned by Peer.Send after the peer was closed.
	ErrPeerClosed = errors.New("chat: peer closed")
)

// Identities is the part of the identity registry the hub needs.
type Identities interface {
	Lookup(id string) (user.User, bool)
	Unregister(u user.User)
}

type hubEventKind int

const (
	eventOpen hubEventKind = iota
	eventFrame
	eventClose
	eventSnapshot
)

type hubEvent struct {
	kind  hubEventKind
	peer  Peer
	frame []byte
	reply chan<- []user.User
}

// Hub serializes all roster mutations and broadcasts.
type Hub struct {
	identities Identities
	conns      *Registry

	inbox chan hubEvent

	// done is closed when Run returns; enqueuers stop waiting on it.
	done chan struct{}

	logger zerolog.Logger
}

// NewHub creates a hub that releases departed users from identities.
// Run must be called for the hub to process events.
func NewHub(identities Identities) *Hub {
	return &Hub{
		identities: identities,
		conns:      NewRegistry(),
		inbox:      make(chan hubEvent, inboxBuffer),
		done:       make(chan struct{}),
		logger:     logx.Component("hub"),
	}
}

// Open registers a freshly established transport session.
func (h *Hub) Open(peer Peer) {
	h.enqueue(hubEvent{kind: eventOpen, peer: peer})
}

// Receive hands an inbound text frame from peer to the hub.
func (h *Hub) Receive(peer Peer, frame []byte) {
	h.enqueue(hubEvent{kind: eventFrame, peer: peer, frame: frame})
}

// Disconnect reports that peer's transport ended, gracefully or not.
func (h *Hub) Disconnect(peer Peer) {
	h.enqueue(hubEvent{kind: eventClose, peer: peer})
}

// enqueue blocks until the loop accepts ev, which keeps each peer's events in the
// order its goroutine produced them. After shutdown events are discarded.
func (h *Hub) enqueue(ev hubEvent) {
	select {
	case h.inbox <- ev:
	case <-h.done:
	}
}

// Snapshot returns the roster after every event enqueued before the call has been
// applied. It returns nil once the hub has stopped or ctx ends first.
func (h *Hub) Snapshot(ctx context.Context) []user.User {
	reply := make(chan []user.User, 1)

	select {
	case h.inbox <- hubEvent{kind: eventSnapshot, reply: reply}:
	case <-h.done:
		return nil
	case <-ctx.Done():
		return nil
	}

	select {
	case users := <-reply:
		return users
	case <-h.done:
		return nil
	case <-ctx.Done():
		return nil
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Run processes events until ctx is cancelled, then closes every live peer.
func (h *Hub) Run(ctx context.Context) error {
	h.logger.Info().Msg("Hub loop started.")

	defer func() {
		for _, peer := range h.conns.Live() {
			if e, ok := h.conns.Lookup(peer); ok {
				h.conns.Close(e)
			}
			peer.Close()
		}
		close(h.done)

		h.logger.Info().Msg("Hub loop stopped.")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-h.inbox:
			switch ev.kind {
			case eventOpen:
				h.handleOpen(ev.peer)
			case eventFrame:
				h.handleFrame(ev.peer, ev.frame)
			case eventClose:
				h.handleClose(ev.peer)
			case eventSnapshot:
				ev.reply <- h.conns.Roster().Snapshot()
			}
		}
	}
}

func (h *Hub) handleOpen(peer Peer) {
	if _, err := h.conns.Open(peer); err != nil {
		h.logger.Warn().Err(err).Str("conn_id", peer.ID()).Msg("Ignoring duplicate open.")
		return
	}

	h.logger.Debug().Str("conn_id", peer.ID()).Int("connections", h.conns.Len()).Msg("Connection opened.")

	frame, err := EncodeRoster(h.conns.Roster().Snapshot())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode roster.")
		return
	}
	h.deliver(peer, frame)
}

func (h *Hub) handleFrame(peer Peer, frame []byte) {
	logger := h.logger.With().Str("conn_id", peer.ID()).Logger()

	e, ok := h.conns.Lookup(peer)
	if !ok {
		logger.Warn().Msg("Dropping frame from a closed connection.")
		return
	}

	ev, err := DecodeEvent(frame)
	if err != nil {
		logger.Warn().Err(err).Bytes("frame", frame).Msg("Dropping malformed frame.")
		return
	}

	switch ev.Kind {
	case KindJoin:
		registered, ok := h.identities.Lookup(ev.User.ID)
		switch {
		case !ok:
			// joins are not gated on registration, only flagged
			logger.Warn().Str("user_id", ev.User.ID).Str("name", ev.User.Name).Msg("Join for a user the registry does not know.")
		case registered.Name != ev.User.Name:
			logger.Warn().
				Str("user_id", ev.User.ID).
				Str("registered_name", registered.Name).
				Str("claimed_name", ev.User.Name).
				Msg("Dropping join under a name the user did not register.")
			return
		}

		if err := h.conns.Bind(e, ev.User); err != nil {
			logger.Warn().Err(err).Str("user_id", ev.User.ID).Msg("Dropping join.")
			return
		}

		logger.Info().
			Str("user_id", ev.User.ID).
			Str("name", ev.User.Name).
			Int("roster_size", h.conns.Roster().Len()).
			Msg("User joined.")

		h.broadcastEvent(ev)
		h.broadcastRoster()

	case KindSend:
		h.broadcastEvent(ev)

	case KindLeave:
		bound, joined := e.User()
		if !joined {
			logger.Warn().Err(ErrNotJoined).Str("user_id", ev.User.ID).Msg("Dropping leave.")
			return
		}

		if bound.ID != ev.User.ID {
			logger.Warn().
				Str("bound_user_id", bound.ID).
				Str("frame_user_id", ev.User.ID).
				Msg("Leave names a different user; using the bound user.")
		}

		h.depart(e)
		peer.Close()
	}
}

func (h *Hub) handleClose(peer Peer) {
	e, ok := h.conns.Lookup(peer)
	if !ok {
		return
	}

	h.depart(e)
}

// depart closes e and, when it had joined, releases the user and announces the
// departure followed by the new roster.
func (h *Hub) depart(e *Entry) {
	u, joined := h.conns.Close(e)

	h.logger.Debug().Str("conn_id", e.Peer().ID()).Int("connections", h.conns.Len()).Msg("Connection closed.")

	if !joined {
		return
	}

	h.identities.Unregister(u)

	h.logger.Info().
		Str("user_id", u.ID).
		Str("name", u.Name).
		Int("roster_size", h.conns.Roster().Len()).
		Msg("User left.")

	h.broadcastEvent(Event{Kind: KindLeave, User: u})
	h.broadcastRoster()
}

func (h *Hub) broadcastEvent(ev Event) {
	frame, err := EncodeEvent(ev)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode event.")
		return
	}
	h.broadcast(frame)
}

func (h *Hub) broadcastRoster() {
	frame, err := EncodeRoster(h.conns.Roster().Snapshot())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode roster.")
		return
	}
	h.broadcast(frame)
}

// broadcast fans frame out to the live set as it is right now.
func (h *Hub) broadcast(frame []byte) {
	for _, peer := range h.conns.Live() {
		h.deliver(peer, frame)
	}
}

// deliver never blocks. A peer whose queue is full loses the frame and is closed;
// its transport then reports the close and it departs like any other peer.
func (h *Hub) deliver(peer Peer, frame []byte) {
	err := peer.Send(frame)
	switch {
	case err == nil:
	case errors.Is(err, ErrPeerClosed):
		h.logger.Debug().Str("conn_id", peer.ID()).Msg("Skipping closed peer.")
	default:
		h.logger.Warn().Err(err).Str("conn_id", peer.ID()).Msg("Peer cannot keep up, closing it.")
		peer.Close()
	}
}
