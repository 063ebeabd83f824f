package entity

import "time"

// Task is a user-owned work item. Ownership is the denormalized username of
// the creator; usernames are immutable post-registration so the reference is
// stable.
type Task struct {
	ID        string    `db:"id" json:"id"`
	Todo      string    `db:"todo" json:"todo"`
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
