package game

import (
	"github.com/biomasters/biomasters-server-go/internal/game/cards"
	"github.com/biomasters/biomasters-server-go/internal/game/effects"
	"github.com/biomasters/biomasters-server-go/internal/game/rules"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// maybeStart leaves setup once every remaining player is ready and at
// least two are seated.
func (e *Engine) maybeStart(s *state.GameState, log *rules.EventLog) {
	if s.Phase != state.PhaseSetup {
		return
	}
	active := s.ActivePlayers()
	if len(active) < 2 {
		return
	}
	for _, p := range active {
		if !p.Ready {
			return
		}
	}

	s.Phase = state.PhasePlaying
	s.TurnNumber = 1
	s.CurrentPlayerIndex = s.PlayerIndex(active[0].ID)
	log.Record(rules.Event{Type: rules.EventGameStarted, PlayerID: active[0].ID})
	e.beginTurn(s, log)
}

// beginTurn runs the automatic Ready and Draw sub-phases for the current
// player and stops at Action.
func (e *Engine) beginTurn(s *state.GameState, log *rules.EventLog) {
	tc := rules.NewTurnCycle(s)
	p := tc.ActivePlayer()
	s.TurnPhase = state.TurnReady
	log.Record(rules.Event{Type: rules.EventTurnStarted, PlayerID: p.ID, Amount: s.TurnNumber})

	e.readyStep(s, p, log)
	e.abilities.FireForPlayer(s, p.ID, cards.TriggerTurnStart, 0, log)

	e.changeSubPhase(tc, log)
	e.drawStep(s, p, log)

	e.changeSubPhase(tc, log)
	p.ActionsRemaining = s.Settings.ActionsPerTurn
}

func (e *Engine) changeSubPhase(tc *rules.TurnCycle, log *rules.EventLog) {
	next, _ := tc.AdvanceSubPhase()
	log.Record(rules.Event{Type: rules.EventTurnPhaseChanged, PlayerID: tc.ActivePlayer().ID, Description: string(next)})
}

// readyStep readies the player's exhausted instances, except those held
// down by a suppress-ready effect, and grants the turn's energy.
func (e *Engine) readyStep(s *state.GameState, p *state.Player, log *rules.EventLog) {
	var ready []*state.CardInstance
	for _, inst := range s.Instances() {
		if inst.OwnerID != p.ID || !inst.IsLiving() || !inst.Exhausted {
			continue
		}
		if e.abilities.IsReadySuppressed(s, inst) {
			continue
		}
		ready = append(ready, inst)
	}
	for _, inst := range ready {
		inst.Exhausted = false
		log.Record(rules.Event{Type: rules.EventCardReadied, PlayerID: p.ID, InstanceID: inst.InstanceID, CardID: inst.CardID})
	}
	if s.Settings.EnergyPerTurn > 0 {
		p.Energy += s.Settings.EnergyPerTurn
		log.Record(rules.Event{Type: rules.EventResourceChanged, PlayerID: p.ID, Amount: s.Settings.EnergyPerTurn})
	}
}

// drawStep draws the turn's card. Once every deck is empty the game enters
// its final round, in which each remaining player, starting with this one,
// gets one more turn.
func (e *Engine) drawStep(s *state.GameState, p *state.Player, log *rules.EventLog) {
	if s.Phase == state.PhasePlaying && decksExhausted(s) {
		s.Phase = state.PhaseFinalTurn
		s.FinalTurnsRemaining = len(s.ActivePlayers())
		log.Record(rules.Event{Type: rules.EventFinalTurn, PlayerID: p.ID, Amount: s.FinalTurnsRemaining})
		return
	}
	effects.Draw(s, p.ID, 1, log)
}

func decksExhausted(s *state.GameState) bool {
	for _, p := range s.ActivePlayers() {
		if len(p.Deck) > 0 {
			return false
		}
	}
	return true
}

// endTurn runs the End sub-phase and hands the turn to the next seat.
func (e *Engine) endTurn(s *state.GameState, log *rules.EventLog) {
	tc := rules.NewTurnCycle(s)
	p := tc.ActivePlayer()
	if s.TurnPhase != state.TurnEnd {
		s.TurnPhase = state.TurnEnd
		log.Record(rules.Event{Type: rules.EventTurnPhaseChanged, PlayerID: p.ID, Description: string(state.TurnEnd)})
	}
	if !p.Forfeited {
		e.abilities.FireForPlayer(s, p.ID, cards.TriggerTurnEnd, 0, log)
	}
	effects.CleanupEndOfTurnModifiers(s, log)
	p.ActionsRemaining = 0
	log.Record(rules.Event{Type: rules.EventTurnEnded, PlayerID: p.ID, Amount: s.TurnNumber})

	if s.Phase == state.PhaseFinalTurn {
		s.FinalTurnsRemaining--
		if s.FinalTurnsRemaining <= 0 {
			e.finish(s, state.EndReasonDeckEmpty, log)
			return
		}
	}

	tc.AdvanceSubPhase()
	e.beginTurn(s, log)
}

// finish ends the game, records final scores and picks the winner: the
// last player standing, or the highest score among those still in. A tie
// for the top score leaves Winner empty.
func (e *Engine) finish(s *state.GameState, reason string, log *rules.EventLog) {
	s.Phase = state.PhaseEnded
	s.EndReason = reason
	s.FinalScores = e.Scores(s)
	for _, p := range s.Players {
		p.ActionsRemaining = 0
	}

	active := s.ActivePlayers()
	switch {
	case len(active) == 1:
		s.Winner = active[0].ID
	case len(active) > 1:
		best, winner := -1, ""
		for _, p := range active {
			score := s.FinalScores[p.ID]
			switch {
			case score > best:
				best, winner = score, p.ID
			case score == best:
				winner = ""
			}
		}
		s.Winner = winner
	}
	log.Record(rules.Event{Type: rules.EventGameEnded, PlayerID: s.Winner, Description: reason})
}
