// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. Verifier is the argon2 hash of the password under Salt.
type User struct {
	ID        string
	UserName  string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}
