package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/openbingo/bingo-server/game"
	"github.com/openbingo/bingo-server/models"
	"github.com/openbingo/bingo-server/protocol"
	"github.com/openbingo/bingo-server/store"
	"github.com/openbingo/bingo-server/utils/logger"
	"github.com/openbingo/bingo-server/utils/rng"
)

// Options are the orchestrator's tunables. The capacity limit and the
// first-game-with-room matchmaking are placeholder policies, so they
// stay configurable rather than hard-coded.
type Options struct {
	MaxPlayers     int
	StartCountdown int
	CallInterval   int // a number is called when countdown%CallInterval == 0
	DefaultStake   int64
	StartingWallet int64
	TickInterval   time.Duration
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		MaxPlayers:     100,
		StartCountdown: 30,
		CallInterval:   5,
		DefaultStake:   1000, // $10.00
		StartingWallet: 5000, // $50.00
		TickInterval:   time.Second,
	}
}

// Orchestrator owns every active game session. All mutation of users,
// games, and players goes through the injected Store; all fan-out goes
// through the injected Registry.
type Orchestrator struct {
	store    store.Store
	registry *Registry
	rng      rng.Source
	opts     Options

	mu       sync.Mutex
	sessions map[uint]*session
}

// NewOrchestrator wires the orchestrator to its collaborators.
func NewOrchestrator(st store.Store, reg *Registry, r rng.Source, opts Options) *Orchestrator {
	return &Orchestrator{
		store:    st,
		registry: reg,
		rng:      r,
		opts:     opts,
		sessions: make(map[uint]*session),
	}
}

// -------------------- Connection lifecycle --------------------

// HandleConnect registers a fresh connection and pushes the current
// active-game count to it.
func (o *Orchestrator) HandleConnect(ctx context.Context, c Conn) {
	o.registry.Add(c)

	games, err := o.store.ActiveGames(ctx)
	if err != nil {
		logger.Errorf("failed to count active games: %v", err)
		return
	}
	count := len(games)
	c.Send(protocol.Message{
		Type:    protocol.TypeGameUpdated,
		Payload: protocol.GameUpdatedPayload{ActiveGames: &count},
	})
}

// HandleDisconnect treats a dropped connection as an implicit leave,
// then forgets the connection.
func (o *Orchestrator) HandleDisconnect(ctx context.Context, c Conn) {
	if _, _, ok := o.registry.Association(c); ok {
		if err := o.LeaveGame(ctx, c); err != nil {
			logger.Errorf("leave on disconnect failed: %v", err)
		}
	}
	o.registry.Remove(c)
}

// Dispatch validates one raw client frame and routes it. Every error is
// converted to an ERROR message for the originating connection only.
func (o *Orchestrator) Dispatch(ctx context.Context, c Conn, data []byte) {
	msg, err := protocol.Parse(data)
	if err != nil {
		c.Send(protocol.ErrorMessage("Invalid message format"))
		return
	}

	switch msg.Type {
	case protocol.TypeJoinGame:
		var req *protocol.JoinRequest
		if req, err = protocol.DecodeJoin(msg.Payload); err == nil {
			err = o.JoinGame(ctx, c, req)
		}
	case protocol.TypeLeaveGame:
		err = o.LeaveGame(ctx, c)
	case protocol.TypeStartGame:
		var req *protocol.StartRequest
		if req, err = protocol.DecodeStart(msg.Payload); err == nil {
			err = o.StartGame(ctx, req)
		}
	case protocol.TypeMarkNumber:
		var req *protocol.MarkRequest
		if req, err = protocol.DecodeMark(msg.Payload); err == nil {
			err = o.MarkNumber(ctx, c, req)
		}
	case protocol.TypeClaimBingo:
		err = o.ClaimBingo(ctx, c)
	}

	if err != nil {
		c.Send(protocol.ErrorMessage(clientMessage(err)))
	}
}

// -------------------- Join --------------------

// JoinGame places the user in the first active game with capacity,
// creating a new game when none has room. The stake is deducted up
// front and a fresh card is dealt. The first player to join an idle
// game starts its timer.
func (o *Orchestrator) JoinGame(ctx context.Context, c Conn, req *protocol.JoinRequest) error {
	user, err := o.resolveUser(ctx, req)
	if err != nil {
		return err
	}

	stake := o.opts.DefaultStake
	if req.Stake > 0 {
		stake = protocol.Cents(req.Stake)
	}
	// Early check so a broke user cannot leave an empty game behind;
	// the authoritative check is the atomic deduction below.
	if user.Wallet < stake {
		return models.ErrInsufficientFunds
	}

	g, err := o.matchGame(ctx, stake)
	if err != nil {
		return err
	}
	s, err := o.sessionFor(ctx, g)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return models.ErrGameInactive
	}

	players, err := o.store.PlayersByGame(ctx, g.ID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if len(players) >= o.opts.MaxPlayers {
		s.mu.Unlock()
		return models.ErrGameFull
	}

	// Deduct the game's stake, not the requested one; the pot math must
	// line up with what everyone in this game paid.
	user, err = o.store.AdjustWallet(ctx, user.ID, -g.Stake)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	card := game.GenerateCard(o.rng)
	boardNumber := game.GenerateBoardNumber(o.rng)
	player, err := o.store.CreatePlayer(ctx, user.ID, g.ID, card, boardNumber)
	if err != nil {
		// Compensate the deduction; the join did not happen.
		if _, refundErr := o.store.AdjustWallet(ctx, user.ID, g.Stake); refundErr != nil {
			logger.Errorf("[Game %s] stake refund for user %d failed: %v", g.Code, user.ID, refundErr)
		}
		s.mu.Unlock()
		return err
	}

	s.roster[user.ID] = player.ID
	playerCount := len(s.roster)
	countdown := s.countdown
	shouldStart := !s.started && playerCount == 1
	if shouldStart {
		s.started = true
	}
	s.mu.Unlock()

	o.registry.Associate(c, user.ID, g.ID)
	logger.Infof("[Game %s] user %d joined (players=%d)", g.Code, user.ID, playerCount)

	var currentCall *int
	if g.CurrentCall != 0 {
		n := g.CurrentCall
		currentCall = &n
	}
	c.Send(protocol.Message{
		Type: protocol.TypeJoinGame,
		Payload: protocol.JoinedPayload{
			GameID:        g.Code,
			UserID:        user.ID,
			PlayerID:      player.ID,
			CardNumbers:   player.Card,
			BoardNumber:   player.BoardNumber,
			Wallet:        protocol.Dollars(user.Wallet),
			Stake:         protocol.Dollars(g.Stake),
			PlayerCount:   playerCount,
			CalledNumbers: g.CalledNumbers,
			CurrentCall:   currentCall,
			Countdown:     countdown,
		},
	})

	o.registry.BroadcastToGame(g.ID, protocol.Message{
		Type:    protocol.TypeGameUpdated,
		Payload: protocol.GameUpdatedPayload{PlayerCount: &playerCount, GameID: g.Code},
	})
	o.broadcastActiveGames(ctx)

	if shouldStart {
		o.startSession(s)
	}
	return nil
}

func (o *Orchestrator) resolveUser(ctx context.Context, req *protocol.JoinRequest) (*models.User, error) {
	if req.UserID != 0 {
		return o.store.GetUser(ctx, req.UserID)
	}
	username := fmt.Sprintf("player%d", o.rng.Intn(10000))
	password := fmt.Sprintf("pass%d", o.rng.Intn(10000))
	return o.store.CreateUser(ctx, username, password, o.opts.StartingWallet)
}

// matchGame returns the first active game with spare capacity, or
// creates one, retrying code generation on a collision.
func (o *Orchestrator) matchGame(ctx context.Context, stake int64) (*models.Game, error) {
	games, err := o.store.ActiveGames(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })

	for _, g := range games {
		players, err := o.store.PlayersByGame(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		if len(players) < o.opts.MaxPlayers {
			return g, nil
		}
	}

	for attempts := 0; attempts < 5; attempts++ {
		code := game.GenerateGameCode(o.rng)
		g, err := o.store.CreateGame(ctx, code, stake, o.opts.StartCountdown)
		if errors.Is(err, models.ErrDuplicateGameID) {
			continue
		}
		return g, err
	}
	return nil, fmt.Errorf("could not generate a unique game id")
}

// -------------------- Start --------------------

// StartGame launches the timer for a forming game. Starting an already
// running game is a no-op.
func (o *Orchestrator) StartGame(ctx context.Context, req *protocol.StartRequest) error {
	g, err := o.store.GetGameByCode(ctx, req.GameID)
	if err != nil {
		return err
	}
	if !g.Active {
		return models.ErrGameInactive
	}
	s, err := o.sessionFor(ctx, g)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return models.ErrGameInactive
	}
	shouldStart := !s.started
	s.started = true
	s.mu.Unlock()

	if shouldStart {
		o.startSession(s)
	}
	return nil
}

func (o *Orchestrator) startSession(s *session) {
	logger.Infof("[Game %s] number calling started", s.code)
	go o.runTimer(s)
	o.registry.BroadcastToGame(s.gameID, protocol.Message{
		Type:    protocol.TypeStartGame,
		Payload: protocol.StartedPayload{GameID: s.code},
	})
}

// -------------------- Mark --------------------

// MarkNumber records a mark on the caller's card. The number must
// already have been called; whether it is on the card at all is the
// store's check.
func (o *Orchestrator) MarkNumber(ctx context.Context, c Conn, req *protocol.MarkRequest) error {
	userID, gameID, ok := o.registry.Association(c)
	if !ok {
		return models.ErrPlayerNotFound
	}
	s := o.lookupSession(gameID)
	if s == nil {
		return models.ErrGameInactive
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return models.ErrGameInactive
	}
	if !s.called[req.Number] {
		s.mu.Unlock()
		return models.ErrNotCalled
	}
	player, err := o.store.GetPlayerByUserAndGame(ctx, userID, gameID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	player, err = o.store.MarkNumber(ctx, player.ID, req.Number)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	c.Send(protocol.Message{
		Type:    protocol.TypeMarkNumber,
		Payload: protocol.MarkedPayload{MarkedNumbers: player.Marked},
	})
	return nil
}

// -------------------- Claim --------------------

// ClaimBingo adjudicates a win claim. The session mutex makes claims
// for one game strictly sequential: the first valid claim ends the game
// and takes the whole pot, and any claim after that sees an inactive
// game.
func (o *Orchestrator) ClaimBingo(ctx context.Context, c Conn) error {
	userID, gameID, ok := o.registry.Association(c)
	if !ok {
		return models.ErrPlayerNotFound
	}
	s := o.lookupSession(gameID)
	if s == nil {
		return models.ErrGameInactive
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return models.ErrGameInactive
	}
	g, err := o.store.GetGame(ctx, gameID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !g.Active {
		s.mu.Unlock()
		return models.ErrGameInactive
	}
	player, err := o.store.GetPlayerByUserAndGame(ctx, userID, gameID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if !game.HasBingo(player.Card, player.Marked) {
		s.mu.Unlock()
		c.Send(protocol.Message{
			Type:    protocol.TypeClaimBingo,
			Payload: protocol.ClaimResultPayload{Success: false, Message: "Invalid BINGO claim!"},
		})
		return nil
	}

	pot := g.Stake * int64(len(s.roster))
	if _, err := o.store.AdjustWallet(ctx, userID, pot); err != nil {
		s.mu.Unlock()
		return err
	}
	if _, err := o.store.SetBingo(ctx, player.ID); err != nil {
		// Take the payout back; the claim did not land and the game
		// stays live for the next claimant.
		if _, rbErr := o.store.AdjustWallet(ctx, userID, -pot); rbErr != nil {
			logger.Errorf("[Game %s] payout rollback for user %d failed: %v", s.code, userID, rbErr)
		}
		s.mu.Unlock()
		return err
	}
	o.endGameLocked(ctx, s)
	s.mu.Unlock()

	logger.Infof("[Game %s] user %d won the pot (%d cents)", s.code, userID, pot)

	winnings := protocol.Dollars(pot)
	c.Send(protocol.Message{
		Type: protocol.TypeClaimBingo,
		Payload: protocol.ClaimResultPayload{
			Success:  true,
			Message:  "Bingo confirmed! You won!",
			Winnings: &winnings,
		},
	})
	o.registry.BroadcastToGame(gameID, protocol.Message{
		Type: protocol.TypeGameEnded,
		Payload: protocol.GameEndedPayload{
			GameID:   s.code,
			WinnerID: &userID,
			Message:  "Game ended - another player got BINGO!",
		},
	}, c)
	o.broadcastActiveGames(ctx)
	return nil
}

// -------------------- Leave --------------------

// LeaveGame removes the caller from its game's roster. The game ends
// when the roster empties.
func (o *Orchestrator) LeaveGame(ctx context.Context, c Conn) error {
	userID, gameID, ok := o.registry.Association(c)
	if !ok {
		return nil
	}
	o.registry.Clear(c)

	s := o.lookupSession(gameID)
	ended := false
	remaining := 0
	code := ""
	if s != nil {
		s.mu.Lock()
		delete(s.roster, userID)
		remaining = len(s.roster)
		code = s.code
		if remaining == 0 && !s.ended {
			o.endGameLocked(ctx, s)
			ended = true
		}
		s.mu.Unlock()
	} else if g, err := o.store.GetGame(ctx, gameID); err == nil {
		code = g.Code
	}
	logger.Infof("[Game %s] user %d left (players=%d)", code, userID, remaining)

	o.registry.BroadcastToGame(gameID, protocol.Message{
		Type:    protocol.TypeGameUpdated,
		Payload: protocol.GameUpdatedPayload{PlayerCount: &remaining, GameID: code},
	})
	if ended && s != nil {
		o.broadcastGameEnded(s, nil, "Game ended!")
	}

	c.Send(protocol.Message{
		Type:    protocol.TypeLeaveGame,
		Payload: protocol.LeavePayload{Success: true},
	})
	return nil
}

// -------------------- Game end & session bookkeeping --------------------

// endGameLocked transitions the session to ended exactly once: the
// store flips the game inactive, the timer is cancelled, and the
// session is dropped from the table. Caller holds s.mu.
func (o *Orchestrator) endGameLocked(ctx context.Context, s *session) {
	if s.ended {
		return
	}
	s.ended = true
	s.stopTimer()
	if _, err := o.store.EndGame(ctx, s.gameID); err != nil {
		logger.Errorf("[Game %s] failed to end game: %v", s.code, err)
	}

	o.mu.Lock()
	delete(o.sessions, s.gameID)
	o.mu.Unlock()
}

func (o *Orchestrator) broadcastGameEnded(s *session, winnerID *uint, message string, exclude ...Conn) {
	o.registry.BroadcastToGame(s.gameID, protocol.Message{
		Type: protocol.TypeGameEnded,
		Payload: protocol.GameEndedPayload{
			GameID:   s.code,
			WinnerID: winnerID,
			Message:  message,
		},
	}, exclude...)
	o.broadcastActiveGames(context.Background())
}

func (o *Orchestrator) broadcastActiveGames(ctx context.Context) {
	games, err := o.store.ActiveGames(ctx)
	if err != nil {
		logger.Errorf("failed to count active games: %v", err)
		return
	}
	count := len(games)
	o.registry.BroadcastAll(protocol.Message{
		Type:    protocol.TypeGameUpdated,
		Payload: protocol.GameUpdatedPayload{ActiveGames: &count},
	})
}

// sessionFor returns the session for a game, creating one seeded from
// the store's view when the game has no session yet. The caller's
// snapshot may predate a concurrent end, so a missing session is only
// materialized after re-reading the game: ending a game commits the
// store flip before dropping the session, so a fresh read here cannot
// see a live game whose session was just removed.
func (o *Orchestrator) sessionFor(ctx context.Context, g *models.Game) (*session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.sessions[g.ID]; ok {
		return s, nil
	}
	fresh, err := o.store.GetGame(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	if !fresh.Active {
		return nil, models.ErrGameInactive
	}
	s := newSession(fresh.ID, fresh.Code, fresh.Countdown, fresh.CalledNumbers)
	o.sessions[fresh.ID] = s
	return s, nil
}

func (o *Orchestrator) lookupSession(gameID uint) *session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessions[gameID]
}

// clientMessage maps an error to the text sent back to the requesting
// connection. Anything unrecognized is internal: log it, say little.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientFunds):
		return "Insufficient funds"
	case errors.Is(err, models.ErrNotCalled):
		return "Number has not been called yet"
	case errors.Is(err, models.ErrGameInactive):
		return "Game is not active"
	case errors.Is(err, models.ErrGameFull):
		return "Game is full"
	case errors.Is(err, models.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, models.ErrGameNotFound):
		return "Game not found"
	case errors.Is(err, models.ErrPlayerNotFound):
		return "Player not found"
	case errors.Is(err, models.ErrAlreadyJoined):
		return "Already in this game"
	case errors.Is(err, protocol.ErrInvalidMessage):
		return "Invalid message format"
	default:
		logger.Errorf("internal error: %v", err)
		return "Failed to process message"
	}
}
