package models

import "errors"

// Errors shared across store and services. Handlers match these with
// errors.Is and translate them into client-facing ERROR messages.
var (
	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Game errors
	ErrGameNotFound    = errors.New("game not found")
	ErrGameInactive    = errors.New("game is not active")
	ErrGameFull        = errors.New("game is full")
	ErrDuplicateGameID = errors.New("game id already exists")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrAlreadyJoined  = errors.New("user already joined this game")
	ErrNotCalled      = errors.New("number has not been called yet")
)
