package services

import (
	"context"
	"sync"
	"time"

	"github.com/openbingo/bingo-server/game"
	"github.com/openbingo/bingo-server/protocol"
	"github.com/openbingo/bingo-server/utils/logger"
	"github.com/openbingo/bingo-server/utils/rng"
)

// session is the per-game state machine. Its mutex serializes every
// transition touching the game (join, start, mark, claim, leave, and
// timer ticks) so "first valid claim wins" is well-defined.
type session struct {
	gameID uint
	code   string

	mu        sync.Mutex
	roster    map[uint]uint // userID -> playerID
	called    map[int]bool  // numbers drawn so far
	countdown int
	started   bool
	ended     bool

	stop     chan struct{}
	stopOnce sync.Once
}

func newSession(gameID uint, code string, countdown int, called []int) *session {
	s := &session{
		gameID:    gameID,
		code:      code,
		roster:    make(map[uint]uint),
		called:    make(map[int]bool, len(called)),
		countdown: countdown,
		stop:      make(chan struct{}),
	}
	for _, n := range called {
		s.called[n] = true
	}
	return s
}

// stopTimer cancels the session's timer. Safe to call any number of
// times, including when no timer was ever started.
func (s *session) stopTimer() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// drawNumber picks an uncalled number uniformly from 1..MaxNumber.
// Returns 0 when the range is exhausted. Caller holds s.mu.
func (s *session) drawNumber(r rng.Source) int {
	remaining := make([]int, 0, game.MaxNumber-len(s.called))
	for n := 1; n <= game.MaxNumber; n++ {
		if !s.called[n] {
			remaining = append(remaining, n)
		}
	}
	if len(remaining) == 0 {
		return 0
	}
	n := remaining[r.Intn(len(remaining))]
	s.called[n] = true
	return n
}

// runTimer drives one tick per interval until the session is stopped.
// One goroutine per active game; the stop channel is the only way out.
func (o *Orchestrator) runTimer(s *session) {
	ticker := time.NewTicker(o.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			o.Tick(context.Background(), s.gameID)
		}
	}
}

// Tick advances the game clock by one second: decrement the countdown,
// call a number on every CallInterval boundary, and force-end the game
// when the countdown reaches zero. Exported so tests can drive the
// clock deterministically.
func (o *Orchestrator) Tick(ctx context.Context, gameID uint) {
	s := o.lookupSession(gameID)
	if s == nil {
		return
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}

	s.countdown--
	cd := s.countdown

	switch {
	case cd > 0 && cd%o.opts.CallInterval == 0:
		number := s.drawNumber(o.rng)
		if number == 0 {
			// 75 calls before the countdown ran out; nothing left to draw.
			o.endGameLocked(ctx, s)
			s.mu.Unlock()
			o.broadcastGameEnded(s, nil, "Game ended!")
			return
		}
		updated, err := o.store.AppendCall(ctx, s.gameID, number, cd)
		if err != nil {
			// A vanished or ended game must not keep ticking.
			logger.Errorf("[Game %s] tick failed, stopping timer: %v", s.code, err)
			s.stopTimer()
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		o.registry.BroadcastToGame(s.gameID, protocol.Message{
			Type: protocol.TypeNumberCalled,
			Payload: protocol.NumberCalledPayload{
				Number:        number,
				Countdown:     cd,
				CalledNumbers: updated.CalledNumbers,
			},
		})

	case cd > 0:
		s.mu.Unlock()
		o.registry.BroadcastToGame(s.gameID, protocol.Message{
			Type:    protocol.TypeGameUpdated,
			Payload: protocol.GameUpdatedPayload{Countdown: &cd},
		})

	default:
		// Countdown exhausted with no winner.
		o.endGameLocked(ctx, s)
		s.mu.Unlock()
		o.broadcastGameEnded(s, nil, "Game ended!")
	}
}
