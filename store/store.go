package store

import (
	"context"

	"github.com/openbingo/bingo-server/models"
)

// Store is the authoritative record of users, games, and players. Every
// operation is atomic with respect to the others: callers never observe
// a partial update.
//
// MarkNumber deliberately does not check whether the number has been
// called; call timing is the orchestrator's concern.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, username, password string, wallet int64) (*models.User, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
	// AdjustWallet applies a signed delta in cents to the user's wallet.
	AdjustWallet(ctx context.Context, userID uint, delta int64) (*models.User, error)

	// Game operations
	CreateGame(ctx context.Context, code string, stake int64, countdown int) (*models.Game, error)
	GetGame(ctx context.Context, id uint) (*models.Game, error)
	GetGameByCode(ctx context.Context, code string) (*models.Game, error)
	ActiveGames(ctx context.Context) ([]*models.Game, error)
	// AppendCall records a drawn number and the countdown value it was
	// drawn at. Fails on unknown or ended games.
	AppendCall(ctx context.Context, gameID uint, number, countdown int) (*models.Game, error)
	// EndGame transitions a game to inactive. Ending an already-ended
	// game is a no-op.
	EndGame(ctx context.Context, gameID uint) (*models.Game, error)

	// Player operations
	CreatePlayer(ctx context.Context, userID, gameID uint, card models.Card, boardNumber int) (*models.Player, error)
	GetPlayer(ctx context.Context, id uint) (*models.Player, error)
	GetPlayerByUserAndGame(ctx context.Context, userID, gameID uint) (*models.Player, error)
	PlayersByGame(ctx context.Context, gameID uint) ([]*models.Player, error)
	// MarkNumber records a mark. Numbers not on the player's card are a
	// no-op returning the unchanged player.
	MarkNumber(ctx context.Context, playerID uint, number int) (*models.Player, error)
	// SetBingo flags the player as the winner. Idempotent.
	SetBingo(ctx context.Context, playerID uint) (*models.Player, error)
}
