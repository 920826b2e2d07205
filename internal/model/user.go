// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account. Users are created at signup and never
// changed or deleted afterwards.
//
// PasswordHash is a bcrypt hash; the `json:"-"` tag keeps it out of every
// API response even if a handler encodes the whole struct by mistake.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
