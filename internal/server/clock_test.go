package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/biomasters/biomasters-server-go/internal/game"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
	"github.com/biomasters/biomasters-server-go/internal/testkit"
)

func startTimedGame(t *testing.T, m *game.Manager, limit time.Duration) string {
	t.Helper()
	ctx := context.Background()
	settings := state.DefaultSettings(2)
	settings.TurnTimeLimit = limit
	deck := []int{testkit.OakTree, testkit.OakTree, testkit.OakTree, testkit.OakTree, testkit.OakTree, testkit.OakTree}

	s, err := m.CreateGame(ctx, []game.PlayerSpec{{ID: "alice", Deck: deck}, {ID: "bob", Deck: deck}}, settings)
	require.NoError(t, err)
	for _, id := range []string{"alice", "bob"} {
		res, err := m.Submit(ctx, s.GameID, game.PlayerReady{PlayerID: id})
		require.NoError(t, err)
		require.True(t, res.IsValid, res.ErrorMessage)
	}
	return s.GameID
}

func TestTurnClockExpiresSlowTurns(t *testing.T) {
	m := newTestManager(t)
	clock := NewTurnClock(m, zaptest.NewLogger(t))
	t.Cleanup(clock.Stop)

	id := startTimedGame(t, m, 20*time.Millisecond)
	assert.Equal(t, 1, clock.Pending())

	assert.Eventually(t, func() bool {
		s, err := m.State(context.Background(), id)
		return err == nil && s.IsTerminal()
	}, 2*time.Second, 10*time.Millisecond)

	s, err := m.State(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, state.EndReasonTimeLimit, s.EndReason)
	assert.Equal(t, "bob", s.Winner)
	assert.Equal(t, 0, clock.Pending())
}

func TestTurnClockRestartsOnNewTurn(t *testing.T) {
	m := newTestManager(t)
	clock := NewTurnClock(m, zaptest.NewLogger(t))
	t.Cleanup(clock.Stop)

	id := startTimedGame(t, m, time.Hour)
	res, err := m.Submit(context.Background(), id, game.PassTurn{PlayerID: "alice"})
	require.NoError(t, err)
	require.True(t, res.IsValid)

	clock.mu.Lock()
	timer := clock.timers[id]
	clock.mu.Unlock()
	require.NotNil(t, timer)
	assert.Equal(t, res.NewState.TurnNumber, timer.turn)
}

func TestTurnClockIgnoresUntimedGames(t *testing.T) {
	m := newTestManager(t)
	clock := NewTurnClock(m, zaptest.NewLogger(t))

	startTimedGame(t, m, 0)
	assert.Equal(t, 0, clock.Pending())

	clock.Stop()
	startTimedGame(t, m, time.Hour)
	assert.Equal(t, 0, clock.Pending())
}
