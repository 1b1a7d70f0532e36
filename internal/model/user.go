// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// The primary identity path is email/password: Email is unique and doubles as
// the ownership key for goals. PasswordHash holds the bcrypt hash and is
// excluded from JSON output with the `json:"-"` tag — it must never leave
// the server.
//
// GitHubID is non-zero only for accounts created (or linked) via the GitHub
// OAuth sign-in. Name is optional; callers that need a display name apply
// the fallback label (see service.AuthService.GetUserByID).
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	GitHubID     int64     `json:"-"         db:"github_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
