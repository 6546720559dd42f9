package chat

import (
	"container/list"
	"errors"
	"fmt"

	"presencehub/internal/app/user"
)

var (
	// ErrAlreadyOpen is returned by Open for a peer that already has an entry.
	ErrAlreadyOpen = errors.New("chat: connection already open")

	// ErrUnknownConnection is returned when an entry was already closed.
	ErrUnknownConnection = errors.New("chat: unknown connection")

	// ErrNotJoined is returned for a leave from a connection that never joined.
	ErrNotJoined = errors.New("chat: connection has not joined")

	// ErrEmptyUser is returned by Bind for a user without any identity.
	ErrEmptyUser = errors.New("chat: cannot join as an empty user")
)

// AlreadyBoundError is returned by Bind for an entry that already carries a user.
type AlreadyBoundError struct {
	Bound     user.User
	Attempted user.User
}

func (e *AlreadyBoundError) Error() string {
	return fmt.Sprintf("chat: connection already joined as %q (%s), join as %q ignored", e.Bound.Name, e.Bound.ID, e.Attempted.Name)
}

// UserConnectedError is returned by Bind when the user is already joined on another connection.
type UserConnectedError struct {
	User user.User
}

func (e *UserConnectedError) Error() string {
	return fmt.Sprintf("chat: user %q (%s) is already joined on another connection", e.User.Name, e.User.ID)
}

// NameInUseError is returned by Bind when another joined user holds the name.
type NameInUseError struct {
	Holder    user.User
	Attempted user.User
}

func (e *NameInUseError) Error() string {
	return fmt.Sprintf("chat: name %q is held by joined user %s, join as %s ignored", e.Attempted.Name, e.Holder.ID, e.Attempted.ID)
}

// Peer is one end of a transport session as seen by the hub.
type Peer interface {
	// ID is a stable tag for logging.
	ID() string

	// Send queues a text frame without blocking.
	Send(frame []byte) error

	// Close ends the session. It must be idempotent.
	Close()
}

// Entry pairs a live peer with the user it joined as, if any.
type Entry struct {
	peer   Peer
	user   user.User
	live   *list.Element
	roster *list.Element
}

// Peer returns the entry's transport peer.
func (e *Entry) Peer() Peer {
	return e.peer
}

// User returns the bound user and whether the entry has joined.
func (e *Entry) User() (user.User, bool) {
	return e.user, !e.user.IsZero()
}

// Registry maps live peers to their entries. It is not safe for concurrent use:
// the hub loop is its only caller.
type Registry struct {
	entries map[Peer]*Entry
	byUser  map[string]*Entry
	byName  map[string]*Entry
	live    *list.List
	roster  *Roster
}

// NewRegistry returns an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[Peer]*Entry),
		byUser:  make(map[string]*Entry),
		byName:  make(map[string]*Entry),
		live:    list.New(),
		roster:  newRoster(),
	}
}

// Open creates an unbound entry for peer.
func (r *Registry) Open(peer Peer) (*Entry, error) {
	if _, ok := r.entries[peer]; ok {
		return nil, ErrAlreadyOpen
	}

	e := &Entry{peer: peer}
	e.live = r.live.PushBack(e)
	r.entries[peer] = e

	return e, nil
}

// Lookup returns the entry for peer.
func (r *Registry) Lookup(peer Peer) (*Entry, bool) {
	e, ok := r.entries[peer]
	return e, ok
}

// Bind attaches u to e and appends u to the roster.
func (r *Registry) Bind(e *Entry, u user.User) error {
	if current, ok := r.entries[e.peer]; !ok || current != e {
		return ErrUnknownConnection
	}

	if bound, joined := e.User(); joined {
		return &AlreadyBoundError{Bound: bound, Attempted: u}
	}

	if u.IsZero() {
		return ErrEmptyUser
	}

	if _, ok := r.byUser[u.ID]; ok {
		return &UserConnectedError{User: u}
	}

	if holder, ok := r.byName[u.Name]; ok {
		return &NameInUseError{Holder: holder.user, Attempted: u}
	}

	e.user = u
	e.roster = r.roster.add(u)
	r.byUser[u.ID] = e
	r.byName[u.Name] = e

	return nil
}

// Close removes e and returns the user it was bound to, if any.
// Closing an entry twice is a no-op.
func (r *Registry) Close(e *Entry) (user.User, bool) {
	if current, ok := r.entries[e.peer]; !ok || current != e {
		return user.User{}, false
	}

	delete(r.entries, e.peer)
	r.live.Remove(e.live)
	e.live = nil

	u, joined := e.User()
	if !joined {
		return user.User{}, false
	}

	delete(r.byUser, u.ID)
	delete(r.byName, u.Name)
	r.roster.remove(e.roster)
	e.roster = nil

	return u, true
}

// Live returns the currently open peers in the order they connected.
func (r *Registry) Live() []Peer {
	peers := make([]Peer, 0, r.live.Len())
	for el := r.live.Front(); el != nil; el = el.Next() {
		peers = append(peers, el.Value.(*Entry).peer)
	}
	return peers
}

// Len returns the number of open entries, joined or not.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Roster returns the joined-users view derived from the registry.
func (r *Registry) Roster() *Roster {
	return r.roster
}
