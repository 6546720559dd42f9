package chat

import (
	"container/list"
	"encoding/json"

	"presencehub/internal/app/user"
)

// Roster is the ordered view of joined users, oldest join first.
// Each bound Entry keeps its list element, so removal is O(1).
type Roster struct {
	order *list.List
}

func newRoster() *Roster {
	return &Roster{order: list.New()}
}

func (r *Roster) add(u user.User) *list.Element {
	return r.order.PushBack(u)
}

func (r *Roster) remove(elem *list.Element) {
	if elem != nil {
		r.order.Remove(elem)
	}
}

// Len returns the number of joined users.
func (r *Roster) Len() int {
	return r.order.Len()
}

// Snapshot copies the roster in join order. The result is never nil.
func (r *Roster) Snapshot() []user.User {
	users := make([]user.User, 0, r.order.Len())
	for e := r.order.Front(); e != nil; e = e.Next() {
		users = append(users, e.Value.(user.User))
	}
	return users
}

// EncodeRoster renders users as a bare JSON array; nil encodes as [].
func EncodeRoster(users []user.User) ([]byte, error) {
	if users == nil {
		users = []user.User{}
	}
	return json.Marshal(users)
}

// DecodeRoster parses a roster frame.
func DecodeRoster(frame []byte) ([]user.User, error) {
	var users []user.User
	if err := json.Unmarshal(frame, &users); err != nil {
		return nil, &ParseError{Reason: "malformed roster", Err: err}
	}
	if users == nil {
		users = []user.User{}
	}
	return users, nil
}
