package model

import "time"

// DefaultRole is assigned to users registered without an explicit role.
const DefaultRole = "admin"

// User is an authentication principal. The password is stored as a bcrypt hash
// and never serialized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
