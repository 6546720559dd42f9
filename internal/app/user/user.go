/*
Package user defines the identity of a chat participant as it travels between the
registration endpoint, the hub and the wire.
*/
package user

// User is a registered participant. ID is assigned once at registration and never
// changes; Name is unique among users present at the time of registration.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IsZero reports whether u carries no identity at all.
func (u User) IsZero() bool {
	return u.ID == "" && u.Name == ""
}
