package model

import "time"

// Goal is a short text goal owned by a single user.
//
// Owner is the creating user's email and is immutable after creation — every
// query and mutation is scoped to it. Completed defaults to false. CreatedAt
// is assigned by the repository at insert time, never by the client.
//
// The `json:"..."` tags control the wire format; e.g. a Goal marshals to
// {"id":"...","text":"...","owner":"...","completed":false,...}.
type Goal struct {
	ID        string    `json:"id"        db:"id"`
	Text      string    `json:"text"      db:"text"`
	Owner     string    `json:"owner"     db:"owner"`
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
