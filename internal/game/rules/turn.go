package rules

import (
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// turnSequence is the fixed order of sub-phases inside a turn.
var turnSequence = []state.TurnPhase{
	state.TurnReady,
	state.TurnDraw,
	state.TurnAction,
	state.TurnEnd,
}

// TurnCycle tracks the current player and sub-phase of a game. It wraps
// the state it advances and holds nothing of its own.
type TurnCycle struct {
	s *state.GameState
}

// NewTurnCycle binds a cycle to s.
func NewTurnCycle(s *state.GameState) *TurnCycle {
	return &TurnCycle{s: s}
}

// CurrentSubPhase returns the sub-phase in progress.
func (tc *TurnCycle) CurrentSubPhase() state.TurnPhase {
	return tc.s.TurnPhase
}

// ActivePlayer returns the player who has the turn.
func (tc *TurnCycle) ActivePlayer() *state.Player {
	return tc.s.CurrentPlayer()
}

// AdvanceSubPhase moves to the next sub-phase. Leaving End wraps to Ready
// for the next seat that has not forfeited, incrementing the turn number.
// The wrapped result reports whether a new turn began.
func (tc *TurnCycle) AdvanceSubPhase() (next state.TurnPhase, wrapped bool) {
	idx := 0
	for i, p := range turnSequence {
		if p == tc.s.TurnPhase {
			idx = i
			break
		}
	}
	idx++
	if idx >= len(turnSequence) {
		idx = 0
		wrapped = true
		tc.s.CurrentPlayerIndex = NextSeat(tc.s)
		tc.s.TurnNumber++
	}
	tc.s.TurnPhase = turnSequence[idx]
	return tc.s.TurnPhase, wrapped
}

// NextSeat returns the index of the next player after the current one who
// is still in the game. With nobody else left it returns the current index.
func NextSeat(s *state.GameState) int {
	n := len(s.Players)
	if n == 0 {
		return 0
	}
	for step := 1; step <= n; step++ {
		i := (s.CurrentPlayerIndex + step) % n
		if !s.Players[i].Forfeited {
			return i
		}
	}
	return s.CurrentPlayerIndex
}

// AllowsTurnActions reports whether the game is in a phase where the
// current player may spend actions.
func AllowsTurnActions(s *state.GameState) bool {
	return (s.Phase == state.PhasePlaying || s.Phase == state.PhaseFinalTurn) && s.TurnPhase == state.TurnAction
}
