package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/openbingo/bingo-server/models"
	"github.com/openbingo/bingo-server/protocol"
	"github.com/openbingo/bingo-server/store"
	"github.com/openbingo/bingo-server/utils/clock"
	"github.com/openbingo/bingo-server/utils/rng"
)

// fakeConn records everything the orchestrator sends it.
type fakeConn struct {
	mu   sync.Mutex
	msgs []protocol.Message
}

func (c *fakeConn) Send(msg protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *fakeConn) byType(t protocol.MessageType) []protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []protocol.Message{}
	for _, m := range c.msgs {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = nil
}

var errStoreDown = errors.New("store down")

// failingStore wraps a real store and fails SetBingo on demand.
type failingStore struct {
	store.Store
	failSetBingo bool
}

func (f *failingStore) SetBingo(ctx context.Context, playerID uint) (*models.Player, error) {
	if f.failSetBingo {
		return nil, errStoreDown
	}
	return f.Store.SetBingo(ctx, playerID)
}

type OrchestratorSuite struct {
	suite.Suite
	store    *store.MemoryStore
	clk      *clock.FakeClock
	registry *Registry
	orch     *Orchestrator
	ctx      context.Context
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.clk = clock.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.store = store.NewMemoryStore(s.clk)
	s.registry = NewRegistry()
	opts := DefaultOptions()
	// Ticks are driven manually; keep the real timer out of the way.
	opts.TickInterval = time.Hour
	// The all-zero source makes game codes, cards, and draws
	// deterministic: every card's B column is 1..5.
	s.orch = NewOrchestrator(s.store, s.registry, &rng.Fake{Seq: []int{0}}, opts)
	s.ctx = context.Background()
}

func (s *OrchestratorSuite) newUser(wallet int64) *models.User {
	user, err := s.store.CreateUser(s.ctx, "tester", "secret", wallet)
	s.Require().NoError(err)
	return user
}

// join connects the conn and joins as the given user, returning the
// join acknowledgment.
func (s *OrchestratorSuite) join(c *fakeConn, userID uint, stake float64) protocol.JoinedPayload {
	s.orch.HandleConnect(s.ctx, c)
	c.reset()
	err := s.orch.JoinGame(s.ctx, c, &protocol.JoinRequest{UserID: userID, Stake: stake})
	s.Require().NoError(err)

	acks := c.byType(protocol.TypeJoinGame)
	s.Require().Len(acks, 1)
	return acks[0].Payload.(protocol.JoinedPayload)
}

// tick advances the named game's clock n seconds.
func (s *OrchestratorSuite) tick(gameID uint, n int) {
	for i := 0; i < n; i++ {
		s.orch.Tick(s.ctx, gameID)
	}
}

// -------------------- Join --------------------

func (s *OrchestratorSuite) TestJoinDeductsStakeAndStartsGame() {
	user := s.newUser(5000)
	conn := &fakeConn{}

	ack := s.join(conn, user.ID, 10)

	s.Equal(user.ID, ack.UserID)
	s.Equal(40.0, ack.Wallet)
	s.Equal(10.0, ack.Stake)
	s.Equal(1, ack.PlayerCount)
	s.Equal(30, ack.Countdown)
	s.Empty(ack.CalledNumbers)
	s.Nil(ack.CurrentCall)
	s.Equal(models.FreeCell, ack.CardNumbers[2][2])

	updated, err := s.store.GetUser(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(int64(4000), updated.Wallet)

	player, err := s.store.GetPlayerByUserAndGame(s.ctx, user.ID, 1)
	s.Require().NoError(err)
	s.Equal(ack.PlayerID, player.ID)

	// First join flips the game from forming to active.
	sess := s.orch.lookupSession(1)
	s.Require().NotNil(sess)
	s.True(sess.started)
	s.Len(conn.byType(protocol.TypeStartGame), 1)
}

func (s *OrchestratorSuite) TestJoinInsufficientFunds() {
	user := s.newUser(500)
	conn := &fakeConn{}
	s.orch.HandleConnect(s.ctx, conn)

	err := s.orch.JoinGame(s.ctx, conn, &protocol.JoinRequest{UserID: user.ID, Stake: 10})
	s.ErrorIs(err, models.ErrInsufficientFunds)

	games, err := s.store.ActiveGames(s.ctx)
	s.Require().NoError(err)
	s.Empty(games, "a rejected join must not leave a game behind")
}

func (s *OrchestratorSuite) TestJoinProvisionsUserWhenMissing() {
	conn := &fakeConn{}
	ack := s.join(conn, 0, 0)

	user, err := s.store.GetUser(s.ctx, ack.UserID)
	s.Require().NoError(err)
	// Starting wallet minus the default stake.
	s.Equal(int64(4000), user.Wallet)
}

func (s *OrchestratorSuite) TestSecondJoinSharesGame() {
	u1 := s.newUser(5000)
	u2 := s.newUser(5000)
	conn1 := &fakeConn{}
	conn2 := &fakeConn{}

	ack1 := s.join(conn1, u1.ID, 10)
	conn1.reset()
	ack2 := s.join(conn2, u2.ID, 10)

	s.Equal(ack1.GameID, ack2.GameID)
	s.Equal(2, ack2.PlayerCount)

	// The first player hears about the new roster size.
	updates := conn1.byType(protocol.TypeGameUpdated)
	s.Require().NotEmpty(updates)
	found := false
	for _, m := range updates {
		p := m.Payload.(protocol.GameUpdatedPayload)
		if p.PlayerCount != nil && *p.PlayerCount == 2 {
			found = true
		}
	}
	s.True(found)

	// The timer is already running; no second start.
	s.Empty(conn2.byType(protocol.TypeStartGame))
}

func (s *OrchestratorSuite) TestCapacityOverflowCreatesNewGame() {
	s.orch.opts.MaxPlayers = 1
	s.orch.rng = rng.New()

	u1 := s.newUser(5000)
	u2 := s.newUser(5000)
	conn1 := &fakeConn{}
	conn2 := &fakeConn{}

	ack1 := s.join(conn1, u1.ID, 10)
	ack2 := s.join(conn2, u2.ID, 10)

	s.NotEqual(ack1.GameID, ack2.GameID)

	games, err := s.store.ActiveGames(s.ctx)
	s.Require().NoError(err)
	s.Len(games, 2)
}

func (s *OrchestratorSuite) TestConcurrentJoinsNeverExceedCapacity() {
	s.orch.opts.MaxPlayers = 2
	s.orch.rng = rng.New()

	const joiners = 8
	users := make([]*models.User, joiners)
	for i := range users {
		u, err := s.store.CreateUser(s.ctx, "racer"+strconv.Itoa(i), "secret", 5000)
		s.Require().NoError(err)
		users[i] = u
	}

	var wg sync.WaitGroup
	errs := make([]error, joiners)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := &fakeConn{}
			s.orch.HandleConnect(s.ctx, c)
			errs[i] = s.orch.JoinGame(s.ctx, c, &protocol.JoinRequest{UserID: users[i].ID, Stake: 10})
		}(i)
	}
	wg.Wait()

	// A join that lost the race for the last seat is turned away; it
	// must never squeeze past the cap.
	joined := 0
	for i := range errs {
		if errs[i] == nil {
			joined++
		} else {
			s.ErrorIs(errs[i], models.ErrGameFull)
		}
	}
	s.Positive(joined)

	games, err := s.store.ActiveGames(s.ctx)
	s.Require().NoError(err)
	total := 0
	for _, g := range games {
		players, err := s.store.PlayersByGame(s.ctx, g.ID)
		s.Require().NoError(err)
		s.LessOrEqual(len(players), 2, "game %s over capacity", g.Code)
		total += len(players)
	}
	s.Equal(joined, total)
}

func (s *OrchestratorSuite) TestConnectPushesActiveGameCount() {
	conn := &fakeConn{}
	s.orch.HandleConnect(s.ctx, conn)

	updates := conn.byType(protocol.TypeGameUpdated)
	s.Require().Len(updates, 1)
	p := updates[0].Payload.(protocol.GameUpdatedPayload)
	s.Require().NotNil(p.ActiveGames)
	s.Equal(0, *p.ActiveGames)
}

// -------------------- Ticking --------------------

func (s *OrchestratorSuite) TestTickCountdownAndCallCadence() {
	user := s.newUser(5000)
	conn := &fakeConn{}
	s.join(conn, user.ID, 10)
	conn.reset()

	// 30 -> 29..26: countdown only, no call.
	s.tick(1, 4)
	s.Empty(conn.byType(protocol.TypeNumberCalled))
	updates := conn.byType(protocol.TypeGameUpdated)
	s.Require().Len(updates, 4)
	s.Equal(29, *updates[0].Payload.(protocol.GameUpdatedPayload).Countdown)
	s.Equal(26, *updates[3].Payload.(protocol.GameUpdatedPayload).Countdown)

	// The fifth tick lands on 25: a number is called.
	s.tick(1, 1)
	calls := conn.byType(protocol.TypeNumberCalled)
	s.Require().Len(calls, 1)
	p := calls[0].Payload.(protocol.NumberCalledPayload)
	s.Equal(1, p.Number) // all-zero rng draws the lowest remaining
	s.Equal(25, p.Countdown)
	s.Equal([]int{1}, p.CalledNumbers)

	g, err := s.store.GetGame(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal([]int{1}, g.CalledNumbers)
	s.Equal(1, g.CurrentCall)
	s.Equal(25, g.Countdown)
}

func (s *OrchestratorSuite) TestCountdownExpiryEndsGameWithoutWinner() {
	user := s.newUser(5000)
	conn := &fakeConn{}
	s.join(conn, user.ID, 10)
	conn.reset()

	s.tick(1, 30)

	// Five calls at 25, 20, 15, 10, 5, then expiry at 0.
	s.Len(conn.byType(protocol.TypeNumberCalled), 5)

	ends := conn.byType(protocol.TypeGameEnded)
	s.Require().Len(ends, 1)
	p := ends[0].Payload.(protocol.GameEndedPayload)
	s.Nil(p.WinnerID)

	g, err := s.store.GetGame(s.ctx, 1)
	s.Require().NoError(err)
	s.False(g.Active)
	s.NotNil(g.EndedAt)

	// The session is gone; further ticks are no-ops.
	s.Nil(s.orch.lookupSession(1))
	s.tick(1, 3)
	s.Len(conn.byType(protocol.TypeGameEnded), 1)
}

func (s *OrchestratorSuite) TestCalledNumbersNeverRepeat() {
	user := s.newUser(5000)
	conn := &fakeConn{}
	s.join(conn, user.ID, 10)
	conn.reset()

	s.tick(1, 30)

	g, err := s.store.GetGame(s.ctx, 1)
	s.Require().NoError(err)
	seen := map[int]bool{}
	for _, n := range g.CalledNumbers {
		s.False(seen[n], "number %d called twice", n)
		seen[n] = true
	}
	s.LessOrEqual(len(g.CalledNumbers), 75)
}

// -------------------- Marking --------------------

func (s *OrchestratorSuite) TestMarkBeforeCallRejected() {
	user := s.newUser(5000)
	conn := &fakeConn{}
	s.join(conn, user.ID, 10)

	err := s.orch.MarkNumber(s.ctx, conn, &protocol.MarkRequest{Number: 1})
	s.ErrorIs(err, models.ErrNotCalled)

	player, err := s.store.GetPlayerByUserAndGame(s.ctx, user.ID, 1)
	s.Require().NoError(err)
	s.Empty(player.Marked)
}

func (s *OrchestratorSuite) TestMarkCalledNumberOnCard() {
	user := s.newUser(5000)
	conn := &fakeConn{}
	s.join(conn, user.ID, 10)
	s.tick(1, 5) // calls number 1, which is on the card
	conn.reset()

	err := s.orch.MarkNumber(s.ctx, conn, &protocol.MarkRequest{Number: 1})
	s.Require().NoError(err)

	marks := conn.byType(protocol.TypeMarkNumber)
	s.Require().Len(marks, 1)
	s.Equal([]int{1}, marks[0].Payload.(protocol.MarkedPayload).MarkedNumbers)
}

func (s *OrchestratorSuite) TestMarkCalledNumberNotOnCard() {
	user := s.newUser(5000)
	conn := &fakeConn{}
	s.join(conn, user.ID, 10)

	// Draw index 5: number 6, which is not on the all-zero card.
	s.orch.rng = &rng.Fake{Seq: []int{5}}
	s.tick(1, 5)
	conn.reset()

	err := s.orch.MarkNumber(s.ctx, conn, &protocol.MarkRequest{Number: 6})
	s.Require().NoError(err)

	marks := conn.byType(protocol.TypeMarkNumber)
	s.Require().Len(marks, 1)
	s.Empty(marks[0].Payload.(protocol.MarkedPayload).MarkedNumbers)
}

// -------------------- Claiming --------------------

func (s *OrchestratorSuite) TestInvalidClaimLeavesGameRunning() {
	user := s.newUser(5000)
	conn := &fakeConn{}
	s.join(conn, user.ID, 10)
	s.tick(1, 5)
	conn.reset()

	err := s.orch.ClaimBingo(s.ctx, conn)
	s.Require().NoError(err)

	claims := conn.byType(protocol.TypeClaimBingo)
	s.Require().Len(claims, 1)
	p := claims[0].Payload.(protocol.ClaimResultPayload)
	s.False(p.Success)

	g, err := s.store.GetGame(s.ctx, 1)
	s.Require().NoError(err)
	s.True(g.Active)
}

func (s *OrchestratorSuite) TestValidClaimWinsPot() {
	u1 := s.newUser(5000)
	u2 := s.newUser(5000)
	conn1 := &fakeConn{}
	conn2 := &fakeConn{}
	ack1 := s.join(conn1, u1.ID, 10)
	s.join(conn2, u2.ID, 10)
	conn1.reset()
	conn2.reset()

	// Complete the B column for player 1.
	for _, n := range []int{1, 2, 3, 4, 5} {
		_, err := s.store.MarkNumber(s.ctx, ack1.PlayerID, n)
		s.Require().NoError(err)
	}

	err := s.orch.ClaimBingo(s.ctx, conn1)
	s.Require().NoError(err)

	claims := conn1.byType(protocol.TypeClaimBingo)
	s.Require().Len(claims, 1)
	p := claims[0].Payload.(protocol.ClaimResultPayload)
	s.True(p.Success)
	s.Require().NotNil(p.Winnings)
	s.Equal(20.0, *p.Winnings) // stake x 2 players

	winner, err := s.store.GetUser(s.ctx, u1.ID)
	s.Require().NoError(err)
	s.Equal(int64(6000), winner.Wallet)

	// The loser hears the game ended with the winner's id; the winner
	// is excluded from that broadcast.
	ends := conn2.byType(protocol.TypeGameEnded)
	s.Require().Len(ends, 1)
	endPayload := ends[0].Payload.(protocol.GameEndedPayload)
	s.Require().NotNil(endPayload.WinnerID)
	s.Equal(u1.ID, *endPayload.WinnerID)
	s.Empty(conn1.byType(protocol.TypeGameEnded))

	g, err := s.store.GetGame(s.ctx, 1)
	s.Require().NoError(err)
	s.False(g.Active)
}

func (s *OrchestratorSuite) TestSimultaneousClaimsPayExactlyOnce() {
	u1 := s.newUser(5000)
	u2 := s.newUser(5000)
	conn1 := &fakeConn{}
	conn2 := &fakeConn{}
	ack1 := s.join(conn1, u1.ID, 10)
	ack2 := s.join(conn2, u2.ID, 10)

	// Both players hold a genuinely winning card.
	for _, n := range []int{1, 2, 3, 4, 5} {
		_, err := s.store.MarkNumber(s.ctx, ack1.PlayerID, n)
		s.Require().NoError(err)
		_, err = s.store.MarkNumber(s.ctx, ack2.PlayerID, n)
		s.Require().NoError(err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	conns := []*fakeConn{conn1, conn2}
	for i, c := range conns {
		wg.Add(1)
		go func(i int, c *fakeConn) {
			defer wg.Done()
			errs[i] = s.orch.ClaimBingo(s.ctx, c)
		}(i, c)
	}
	wg.Wait()

	// Exactly one claim succeeds; the other sees an inactive game.
	var winners, losers int
	for i := range errs {
		if errs[i] == nil {
			winners++
		} else {
			s.ErrorIs(errs[i], models.ErrGameInactive)
			losers++
		}
	}
	s.Equal(1, winners)
	s.Equal(1, losers)

	// The pot was paid exactly once: total money is conserved.
	w1, err := s.store.GetUser(s.ctx, u1.ID)
	s.Require().NoError(err)
	w2, err := s.store.GetUser(s.ctx, u2.ID)
	s.Require().NoError(err)
	s.Equal(int64(10000), w1.Wallet+w2.Wallet)
	if w1.Wallet > w2.Wallet {
		s.Equal(int64(6000), w1.Wallet)
	} else {
		s.Equal(int64(6000), w2.Wallet)
	}
}

func (s *OrchestratorSuite) TestClaimPayoutRolledBackWhenFlagFails() {
	fs := &failingStore{Store: s.store}
	s.orch.store = fs

	user := s.newUser(5000)
	conn := &fakeConn{}
	ack := s.join(conn, user.ID, 10)
	for _, n := range []int{1, 2, 3, 4, 5} {
		_, err := s.store.MarkNumber(s.ctx, ack.PlayerID, n)
		s.Require().NoError(err)
	}

	fs.failSetBingo = true
	err := s.orch.ClaimBingo(s.ctx, conn)
	s.ErrorIs(err, errStoreDown)

	// The payout was taken back and the game is still live.
	u, err := s.store.GetUser(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(int64(4000), u.Wallet)

	g, err := s.store.GetGame(s.ctx, 1)
	s.Require().NoError(err)
	s.True(g.Active)
	s.NotNil(s.orch.lookupSession(1))

	player, err := s.store.GetPlayer(s.ctx, ack.PlayerID)
	s.Require().NoError(err)
	s.False(player.HasBingo)

	// With the store healthy again the same claim wins.
	fs.failSetBingo = false
	conn.reset()
	s.Require().NoError(s.orch.ClaimBingo(s.ctx, conn))

	claims := conn.byType(protocol.TypeClaimBingo)
	s.Require().Len(claims, 1)
	s.True(claims[0].Payload.(protocol.ClaimResultPayload).Success)

	u, err = s.store.GetUser(s.ctx, user.ID)
	s.Require().NoError(err)
	// Single-player pot: the stake comes straight back.
	s.Equal(int64(5000), u.Wallet)
}

// -------------------- Leaving --------------------

func (s *OrchestratorSuite) TestLeaveKeepsGameRunningWithPlayersLeft() {
	u1 := s.newUser(5000)
	u2 := s.newUser(5000)
	conn1 := &fakeConn{}
	conn2 := &fakeConn{}
	s.join(conn1, u1.ID, 10)
	s.join(conn2, u2.ID, 10)
	conn1.reset()

	err := s.orch.LeaveGame(s.ctx, conn1)
	s.Require().NoError(err)

	acks := conn1.byType(protocol.TypeLeaveGame)
	s.Require().Len(acks, 1)
	s.True(acks[0].Payload.(protocol.LeavePayload).Success)

	g, err := s.store.GetGame(s.ctx, 1)
	s.Require().NoError(err)
	s.True(g.Active)

	sess := s.orch.lookupSession(1)
	s.Require().NotNil(sess)
	sess.mu.Lock()
	s.Len(sess.roster, 1)
	sess.mu.Unlock()
}

func (s *OrchestratorSuite) TestLastLeaverEndsGame() {
	user := s.newUser(5000)
	conn := &fakeConn{}
	s.join(conn, user.ID, 10)

	err := s.orch.LeaveGame(s.ctx, conn)
	s.Require().NoError(err)

	g, err := s.store.GetGame(s.ctx, 1)
	s.Require().NoError(err)
	s.False(g.Active)
	s.Nil(s.orch.lookupSession(1))

	// The association is gone: a second leave is a silent no-op.
	s.Require().NoError(s.orch.LeaveGame(s.ctx, conn))
}

func (s *OrchestratorSuite) TestDisconnectIsImplicitLeave() {
	user := s.newUser(5000)
	conn := &fakeConn{}
	s.join(conn, user.ID, 10)

	s.orch.HandleDisconnect(s.ctx, conn)

	g, err := s.store.GetGame(s.ctx, 1)
	s.Require().NoError(err)
	s.False(g.Active)

	_, _, ok := s.registry.Association(conn)
	s.False(ok)
}

// -------------------- Timers & state guards --------------------

func (s *OrchestratorSuite) TestTimerCancellationIsIdempotent() {
	user := s.newUser(5000)
	conn := &fakeConn{}
	s.join(conn, user.ID, 10)

	sess := s.orch.lookupSession(1)
	s.Require().NotNil(sess)

	sess.stopTimer()
	sess.stopTimer() // second cancel must be a no-op, not a panic

	select {
	case <-sess.stop:
	default:
		s.Fail("stop channel should be closed")
	}
}

func (s *OrchestratorSuite) TestOperationsOnEndedGameRejected() {
	user := s.newUser(5000)
	conn := &fakeConn{}
	s.join(conn, user.ID, 10)
	s.tick(1, 5)
	s.tick(1, 25) // run the game to expiry

	err := s.orch.MarkNumber(s.ctx, conn, &protocol.MarkRequest{Number: 1})
	s.ErrorIs(err, models.ErrGameInactive)

	err = s.orch.ClaimBingo(s.ctx, conn)
	s.ErrorIs(err, models.ErrGameInactive)

	err = s.orch.StartGame(s.ctx, &protocol.StartRequest{GameID: "AA0000"})
	s.ErrorIs(err, models.ErrGameInactive)
}

func (s *OrchestratorSuite) TestEndedGameNotResurrectedFromStaleSnapshot() {
	user := s.newUser(5000)
	conn := &fakeConn{}
	ack := s.join(conn, user.ID, 10)

	// A snapshot taken while the game is still live, as a concurrent
	// join or start would hold right before locking the session.
	stale, err := s.store.GetGame(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().True(stale.Active)

	for _, n := range []int{1, 2, 3, 4, 5} {
		_, err := s.store.MarkNumber(s.ctx, ack.PlayerID, n)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.orch.ClaimBingo(s.ctx, conn))
	s.Require().Nil(s.orch.lookupSession(1))

	// Materializing a session from the stale snapshot must fail rather
	// than bring the ended game back to life.
	_, err = s.orch.sessionFor(s.ctx, stale)
	s.ErrorIs(err, models.ErrGameInactive)
	s.Nil(s.orch.lookupSession(1))

	err = s.orch.MarkNumber(s.ctx, conn, &protocol.MarkRequest{Number: 2})
	s.ErrorIs(err, models.ErrGameInactive)

	player, err := s.store.GetPlayer(s.ctx, ack.PlayerID)
	s.Require().NoError(err)
	s.Equal([]int{1, 2, 3, 4, 5}, player.Marked)
}

func (s *OrchestratorSuite) TestStartGameUnknownCode() {
	err := s.orch.StartGame(s.ctx, &protocol.StartRequest{GameID: "ZZ9999"})
	s.ErrorIs(err, models.ErrGameNotFound)
}

// -------------------- Dispatch --------------------

func (s *OrchestratorSuite) TestDispatchInvalidMessage() {
	conn := &fakeConn{}
	s.orch.HandleConnect(s.ctx, conn)
	conn.reset()

	s.orch.Dispatch(s.ctx, conn, []byte(`not json`))

	errors := conn.byType(protocol.TypeError)
	s.Require().Len(errors, 1)
	s.Equal("Invalid message format", errors[0].Payload.(protocol.ErrorPayload).Message)
}

func (s *OrchestratorSuite) TestDispatchReportsErrorsToSenderOnly() {
	user := s.newUser(500)
	conn := &fakeConn{}
	other := &fakeConn{}
	s.orch.HandleConnect(s.ctx, conn)
	s.orch.HandleConnect(s.ctx, other)
	conn.reset()
	other.reset()

	raw := `{"type":"JOIN_GAME","payload":{"userId":` + strconv.Itoa(int(user.ID)) + `,"stake":10}}`
	s.orch.Dispatch(s.ctx, conn, []byte(raw))

	errors := conn.byType(protocol.TypeError)
	s.Require().Len(errors, 1)
	s.Equal("Insufficient funds", errors[0].Payload.(protocol.ErrorPayload).Message)
	s.Empty(other.byType(protocol.TypeError))
}
