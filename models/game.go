package models

import "time"

// Game is one bingo round. Code is the human-readable id shown to
// players (e.g. "YW9403"). CalledNumbers is append-only while the game
// is active; CurrentCall is 0 until the first number is drawn.
type Game struct {
	ID            uint       `json:"id"`
	Code          string     `json:"game_id"`
	Stake         int64      `json:"stake"` // cents
	Active        bool       `json:"active"`
	CalledNumbers []int      `json:"called_numbers"`
	CurrentCall   int        `json:"current_call"`
	Countdown     int        `json:"countdown"`
	CreatedAt     time.Time  `json:"created_at"`
	EndedAt       *time.Time `json:"ended_at"`
}
