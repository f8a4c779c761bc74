package server

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/biomasters/biomasters-server-go/internal/game"
	"github.com/biomasters/biomasters-server-go/internal/game/rules"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// TurnClock enforces Settings.TurnTimeLimit. It watches accepted actions
// and, when a turn outlives its limit, asks the manager to expire it.
type TurnClock struct {
	manager *game.Manager
	logger  *zap.Logger

	mu     sync.Mutex
	timers map[string]*turnTimer
	closed bool
}

type turnTimer struct {
	turn  int
	timer *time.Timer
}

// NewTurnClock creates a clock and subscribes it to the manager.
func NewTurnClock(manager *game.Manager, logger *zap.Logger) *TurnClock {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &TurnClock{
		manager: manager,
		logger:  logger,
		timers:  make(map[string]*turnTimer),
	}
	manager.OnUpdate(c.Observe)
	return c
}

// Observe starts a timer whenever a game enters a new turn and cancels it
// once the game is over.
func (c *TurnClock) Observe(gameID string, s *state.GameState, _ []rules.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, running := c.timers[gameID]
	if s.IsTerminal() || s.Phase == state.PhaseSetup || s.Settings.TurnTimeLimit <= 0 || c.closed {
		if running {
			current.timer.Stop()
			delete(c.timers, gameID)
		}
		return
	}
	if running && current.turn == s.TurnNumber {
		return
	}
	if running {
		current.timer.Stop()
	}

	turn := s.TurnNumber
	c.timers[gameID] = &turnTimer{
		turn:  turn,
		timer: time.AfterFunc(s.Settings.TurnTimeLimit, func() { c.expire(gameID, turn) }),
	}
}

func (c *TurnClock) expire(gameID string, turn int) {
	c.mu.Lock()
	if t, ok := c.timers[gameID]; ok && t.turn == turn {
		delete(c.timers, gameID)
	}
	c.mu.Unlock()

	res, err := c.manager.ExpireTurn(context.Background(), gameID, turn)
	if err != nil {
		c.logger.Warn("failed to expire turn", zap.String("game_id", gameID), zap.Int("turn", turn), zap.Error(err))
		return
	}
	if !res.IsValid {
		c.logger.Debug("turn timer fired after the turn ended", zap.String("game_id", gameID), zap.Int("turn", turn))
	}
}

// Pending returns the number of running timers.
func (c *TurnClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Stop cancels every timer. Later updates are ignored.
func (c *TurnClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, t := range c.timers {
		t.timer.Stop()
		delete(c.timers, id)
	}
}
