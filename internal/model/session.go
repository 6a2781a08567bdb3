package model

import "github.com/google/uuid"

// User identifies an authenticated operator. Authentication itself is owned by
// an external collaborator; the runtime only reads the resulting identity.
type User struct {
	ID    uuid.UUID
	Email string
}

// Session is the runtime's read-only view of authentication state. A nil User
// means the request is anonymous. Loading is true while the session is still
// being resolved by the collaborator.
type Session struct {
	User    *User
	Role    string
	Loading bool
}

// Anonymous returns the session used for requests carrying no valid token.
func Anonymous() Session {
	return Session{}
}
