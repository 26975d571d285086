package domain

import "time"

// RoleAdmin is the only role; every registered user administers the board.
const RoleAdmin = "admin"

// User models an authenticated administrator.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
