package effects

import (
	"github.com/biomasters/biomasters-server-go/internal/game/rules"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// Draw moves up to n cards from the top of a player's deck into their hand
// and returns how many arrived. At the hand limit the remaining draws are
// either skipped or, with DiscardExcessDraws, milled to the discard pile.
func Draw(s *state.GameState, playerID string, n int, log *rules.EventLog) int {
	p, ok := s.Player(playerID)
	if !ok {
		return 0
	}
	drawn := 0
	for i := 0; i < n && len(p.Deck) > 0; i++ {
		if limit := s.Settings.MaxHandSize; limit > 0 && len(p.Hand) >= limit {
			if !s.Settings.DiscardExcessDraws {
				break
			}
			ref := p.Deck[0]
			p.Deck = p.Deck[1:]
			p.Discard = append(p.Discard, ref)
			log.Record(rules.Event{Type: rules.EventCardDiscarded, PlayerID: p.ID, InstanceID: ref.InstanceID, CardID: ref.CardID})
			continue
		}
		ref, _ := p.DrawTop()
		drawn++
		log.Record(rules.Event{Type: rules.EventCardDrawn, PlayerID: p.ID, InstanceID: ref.InstanceID, CardID: ref.CardID})
	}
	return drawn
}
