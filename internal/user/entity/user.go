package entity

import "time"

// User represents an account row in the `users` table. Email is stored
// lowercase; email and username are each globally unique.
type User struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	Username      string    `db:"username"`
	PasswordHash  string    `db:"password_hash"`
	EmailVerified bool      `db:"email_verified"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// AuthView is the minimal projection embedded into a session after login.
type AuthView struct {
	ID       int64
	Email    string
	Username string
}
