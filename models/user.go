package models

import (
	"time"
)

// User represents an account with a balance
type User struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CanAfford checks if the user's balance covers the given amount
func (u *User) CanAfford(amount int64) bool {
	return u.Balance >= amount
}
