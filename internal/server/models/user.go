// Package models defines the typed records persisted by the server.
package models

import "time"

// Credential holds the secret material bound to a user. It is excluded from
// default read projections: only privileged store paths populate it, and it
// must never cross the API boundary.
type Credential struct {
	Salt           []byte
	PasswordDigest []byte
	SessionToken   string // empty while no session is active
}

// User is the identity + credential aggregate. Username and Email are each
// unique across all users; ID is assigned at creation and immutable.
type User struct {
	ID         string
	Username   string
	Email      string
	Credential Credential
	CreatedAt  time.Time
}

// UserUpdate describes a partial update of profile fields. Nil fields are
// left unchanged.
type UserUpdate struct {
	Username *string
	Email    *string
}
