package model

import "time"

// User represents a registered account.
//
// PasswordHash holds the bcrypt output and is tagged json:"-" so it can never
// leak through an API response, even when the whole struct is encoded.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
