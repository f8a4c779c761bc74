package game

import (
	"github.com/biomasters/biomasters-server-go/internal/game/modifiers"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// Scores totals each player's points: banked victory points, the printed
// value of their score pile, and the value of their living cards on the
// grid including victory-point modifiers.
func (e *Engine) Scores(s *state.GameState) map[string]int {
	out := make(map[string]int, len(s.Players))
	for _, p := range s.Players {
		total := p.VictoryPoints
		for _, ref := range p.ScorePile {
			if def, ok := e.tables.Card(ref.CardID); ok {
				total += def.VictoryPoints
			}
		}
		out[p.ID] = total
	}
	for _, inst := range s.Instances() {
		if !inst.IsLiving() {
			continue
		}
		if _, ok := out[inst.OwnerID]; !ok {
			continue
		}
		if def, ok := e.tables.Card(inst.CardID); ok {
			out[inst.OwnerID] += def.VictoryPoints
		}
		out[inst.OwnerID] += inst.Modifiers.Total(modifiers.KindVictoryPoints)
	}
	return out
}
