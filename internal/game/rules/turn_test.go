package rules

import (
	"testing"

	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

func newCycleState(players ...string) *state.GameState {
	s := &state.GameState{Phase: state.PhasePlaying, TurnPhase: state.TurnReady, TurnNumber: 1}
	for _, id := range players {
		s.Players = append(s.Players, &state.Player{ID: id})
	}
	return s
}

func TestTurnCycleSequence(t *testing.T) {
	s := newCycleState("alice", "bob")
	tc := NewTurnCycle(s)

	expected := []state.TurnPhase{state.TurnDraw, state.TurnAction, state.TurnEnd}
	for i, exp := range expected {
		next, wrapped := tc.AdvanceSubPhase()
		if next != exp {
			t.Fatalf("step %d: expected %s, got %s", i, exp, next)
		}
		if wrapped {
			t.Fatalf("step %d: unexpected wrap", i)
		}
		if tc.ActivePlayer().ID != "alice" {
			t.Fatalf("step %d: expected alice to keep the turn, got %s", i, tc.ActivePlayer().ID)
		}
	}

	next, wrapped := tc.AdvanceSubPhase()
	if next != state.TurnReady || !wrapped {
		t.Fatalf("expected wrap to ready, got %s wrapped=%v", next, wrapped)
	}
	if tc.ActivePlayer().ID != "bob" {
		t.Fatalf("expected bob after wrap, got %s", tc.ActivePlayer().ID)
	}
	if s.TurnNumber != 2 {
		t.Fatalf("expected turn 2, got %d", s.TurnNumber)
	}
	if tc.CurrentSubPhase() != state.TurnReady {
		t.Fatalf("expected ready, got %s", tc.CurrentSubPhase())
	}
}

func TestTurnCycleWrapsToFirstSeat(t *testing.T) {
	s := newCycleState("alice", "bob")
	s.CurrentPlayerIndex = 1
	s.TurnPhase = state.TurnEnd

	NewTurnCycle(s).AdvanceSubPhase()
	if s.CurrentPlayerIndex != 0 {
		t.Fatalf("expected seat 0, got %d", s.CurrentPlayerIndex)
	}
}

func TestNextSeatSkipsForfeited(t *testing.T) {
	s := newCycleState("alice", "bob", "carol")
	s.Players[1].Forfeited = true

	if got := NextSeat(s); got != 2 {
		t.Fatalf("expected carol's seat 2, got %d", got)
	}

	s.Players[2].Forfeited = true
	if got := NextSeat(s); got != 0 {
		t.Fatalf("expected to stay on seat 0, got %d", got)
	}
}

func TestAllowsTurnActions(t *testing.T) {
	s := newCycleState("alice", "bob")
	if AllowsTurnActions(s) {
		t.Fatalf("ready sub-phase must not allow actions")
	}
	s.TurnPhase = state.TurnAction
	if !AllowsTurnActions(s) {
		t.Fatalf("action sub-phase should allow actions")
	}
	s.Phase = state.PhaseFinalTurn
	if !AllowsTurnActions(s) {
		t.Fatalf("final turn should allow actions")
	}
	s.Phase = state.PhaseSetup
	if AllowsTurnActions(s) {
		t.Fatalf("setup must not allow actions")
	}
}
