package entity

import "time"

// UserSummary is the slice of the account embedded into a session at login.
type UserSummary struct {
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Session is a server-held record referenced by an opaque client-held ID.
// The ID is the only thing the cookie carries.
type Session struct {
	ID            string
	Authenticated bool
	User          UserSummary
	ExpiresAt     time.Time
	CreatedAt     time.Time
}
