package models

import "time"

// User is a player identity. Wallet is in integer cents and only moves
// through stake deduction and pot payout.
type User struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Wallet    int64     `json:"wallet"`
	CreatedAt time.Time `json:"created_at"`
}
