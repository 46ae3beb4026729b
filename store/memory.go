package store

import (
	"context"
	"sync"

	"github.com/openbingo/bingo-server/models"
	"github.com/openbingo/bingo-server/utils/clock"
)

// MemoryStore is the in-process Store used when no database is
// configured. A single mutex covers all three tables, which keeps every
// multi-entity read consistent.
type MemoryStore struct {
	mu      sync.Mutex
	users   map[uint]*models.User
	games   map[uint]*models.Game
	players map[uint]*models.Player

	nextUserID   uint
	nextGameID   uint
	nextPlayerID uint

	clock clock.Clock
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	return &MemoryStore{
		users:        make(map[uint]*models.User),
		games:        make(map[uint]*models.Game),
		players:      make(map[uint]*models.Player),
		nextUserID:   1,
		nextGameID:   1,
		nextPlayerID: 1,
		clock:        clk,
	}
}

// -------------------- User operations --------------------

func (s *MemoryStore) CreateUser(ctx context.Context, username, password string, wallet int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := &models.User{
		ID:        s.nextUserID,
		Username:  username,
		Password:  password,
		Wallet:    wallet,
		CreatedAt: s.clock.Now(),
	}
	s.nextUserID++
	s.users[user.ID] = user
	return copyUser(user), nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (s *MemoryStore) AdjustWallet(ctx context.Context, userID uint, delta int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	if user.Wallet+delta < 0 {
		return nil, models.ErrInsufficientFunds
	}
	user.Wallet += delta
	return copyUser(user), nil
}

// -------------------- Game operations --------------------

func (s *MemoryStore) CreateGame(ctx context.Context, code string, stake int64, countdown int) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.games {
		if g.Code == code {
			return nil, models.ErrDuplicateGameID
		}
	}

	game := &models.Game{
		ID:            s.nextGameID,
		Code:          code,
		Stake:         stake,
		Active:        true,
		CalledNumbers: []int{},
		Countdown:     countdown,
		CreatedAt:     s.clock.Now(),
	}
	s.nextGameID++
	s.games[game.ID] = game
	return copyGame(game), nil
}

func (s *MemoryStore) GetGame(ctx context.Context, id uint) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[id]
	if !ok {
		return nil, models.ErrGameNotFound
	}
	return copyGame(game), nil
}

func (s *MemoryStore) GetGameByCode(ctx context.Context, code string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.games {
		if g.Code == code {
			return copyGame(g), nil
		}
	}
	return nil, models.ErrGameNotFound
}

func (s *MemoryStore) ActiveGames(ctx context.Context) ([]*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.Game{}
	for _, g := range s.games {
		if g.Active {
			out = append(out, copyGame(g))
		}
	}
	return out, nil
}

func (s *MemoryStore) AppendCall(ctx context.Context, gameID uint, number, countdown int) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return nil, models.ErrGameNotFound
	}
	if !game.Active {
		return nil, models.ErrGameInactive
	}
	game.CalledNumbers = append(game.CalledNumbers, number)
	game.CurrentCall = number
	game.Countdown = countdown
	return copyGame(game), nil
}

func (s *MemoryStore) EndGame(ctx context.Context, gameID uint) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return nil, models.ErrGameNotFound
	}
	if game.Active {
		game.Active = false
		now := s.clock.Now()
		game.EndedAt = &now
	}
	return copyGame(game), nil
}

// -------------------- Player operations --------------------

func (s *MemoryStore) CreatePlayer(ctx context.Context, userID, gameID uint, card models.Card, boardNumber int) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return nil, models.ErrUserNotFound
	}
	if _, ok := s.games[gameID]; !ok {
		return nil, models.ErrGameNotFound
	}
	for _, p := range s.players {
		if p.UserID == userID && p.GameID == gameID {
			return nil, models.ErrAlreadyJoined
		}
	}

	player := &models.Player{
		ID:          s.nextPlayerID,
		UserID:      userID,
		GameID:      gameID,
		Card:        card,
		Marked:      []int{},
		BoardNumber: boardNumber,
	}
	s.nextPlayerID++
	s.players[player.ID] = player
	return copyPlayer(player), nil
}

func (s *MemoryStore) GetPlayer(ctx context.Context, id uint) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[id]
	if !ok {
		return nil, models.ErrPlayerNotFound
	}
	return copyPlayer(player), nil
}

func (s *MemoryStore) GetPlayerByUserAndGame(ctx context.Context, userID, gameID uint) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.players {
		if p.UserID == userID && p.GameID == gameID {
			return copyPlayer(p), nil
		}
	}
	return nil, models.ErrPlayerNotFound
}

func (s *MemoryStore) PlayersByGame(ctx context.Context, gameID uint) ([]*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.Player{}
	for _, p := range s.players {
		if p.GameID == gameID {
			out = append(out, copyPlayer(p))
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkNumber(ctx context.Context, playerID uint, number int) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[playerID]
	if !ok {
		return nil, models.ErrPlayerNotFound
	}
	if !player.Card.Contains(number) {
		return copyPlayer(player), nil
	}
	for _, m := range player.Marked {
		if m == number {
			return copyPlayer(player), nil
		}
	}
	player.Marked = append(player.Marked, number)
	return copyPlayer(player), nil
}

func (s *MemoryStore) SetBingo(ctx context.Context, playerID uint) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[playerID]
	if !ok {
		return nil, models.ErrPlayerNotFound
	}
	player.HasBingo = true
	return copyPlayer(player), nil
}

// -------------------- Copy helpers --------------------
// The store hands out copies so callers can never mutate table rows or
// race on the shared slices.

func copyUser(u *models.User) *models.User {
	out := *u
	return &out
}

func copyGame(g *models.Game) *models.Game {
	out := *g
	out.CalledNumbers = append([]int(nil), g.CalledNumbers...)
	return &out
}

func copyPlayer(p *models.Player) *models.Player {
	out := *p
	out.Marked = append([]int(nil), p.Marked...)
	return &out
}
