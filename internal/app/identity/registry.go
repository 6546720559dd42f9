/*
Package identity allocates user identities and enforces display-name uniqueness
among the users currently present.

Names are only held while their owner is registered: once the hub unregisters a
departed user, the name can be taken again, always with a fresh id.
*/
package identity

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"presencehub/internal/app/user"
	"presencehub/internal/pkg/logx"
	"presencehub/internal/pkg/randx"
)

// ErrEmptyName is returned by Register for an empty display name.
var ErrEmptyName = errors.New("identity: name must not be empty")

// DuplicateNameError is returned by Register when a present user owns the name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("identity: name %q is already taken", e.Name)
}

// Registry is the name-uniqueness-enforcing allocator of users.
// It is safe for concurrent use.
type Registry struct {
	mu sync.RWMutex

	// byName drives the uniqueness check; byID drives removal.
	byName map[string]user.User
	byID   map[string]user.User

	newID  func() string
	logger zerolog.Logger
}

// NewRegistry returns an empty Registry issuing random UUID identifiers.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]user.User),
		byID:   make(map[string]user.User),
		newID:  randx.UserID,
		logger: logx.Component("identity"),
	}
}

// Register allocates a new user for name. The match against present users is exact
// and case-sensitive. A failed call leaves the registry untouched.
func (r *Registry) Register(name string) (user.User, error) {
	if name == "" {
		return user.User{}, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[name]; taken {
		r.logger.Warn().Str("name", name).Msg("Registration rejected: name already taken.")
		return user.User{}, &DuplicateNameError{Name: name}
	}

	id := r.newID()
	for _, exists := r.byID[id]; exists; _, exists = r.byID[id] {
		id = r.newID()
	}

	u := user.User{ID: id, Name: name}
	r.byName[name] = u
	r.byID[id] = u

	r.logger.Info().Str("user_id", u.ID).Str("name", u.Name).Int("registered", len(r.byID)).Msg("New user created.")
	return u, nil
}

// Unregister releases u's name. Removal is keyed by id, so a stale record
// carrying an old id never frees a name now held by somebody else. Unknown users
// are ignored.
func (r *Registry) Unregister(u user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[u.ID]
	if !ok {
		return
	}

	delete(r.byID, current.ID)
	if owner, ok := r.byName[current.Name]; ok && owner.ID == current.ID {
		delete(r.byName, current.Name)
	}

	r.logger.Info().Str("user_id", current.ID).Str("name", current.Name).Int("registered", len(r.byID)).Msg("User released.")
}

// Lookup returns the registered user with the given id.
func (r *Registry) Lookup(id string) (user.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	return u, ok
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byID)
}
