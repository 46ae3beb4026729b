package models

// Player binds one user to one game. Card is immutable once created;
// Marked grows monotonically and only ever holds numbers that are on
// the card.
type Player struct {
	ID          uint  `json:"id"`
	UserID      uint  `json:"user_id"`
	GameID      uint  `json:"game_id"`
	Card        Card  `json:"card_numbers"`
	Marked      []int `json:"marked_numbers"`
	HasBingo    bool  `json:"has_bingo"`
	BoardNumber int   `json:"board_number"`
}
