package effects

import (
	"github.com/biomasters/biomasters-server-go/internal/game/rules"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// CleanupEndOfTurnModifiers ticks the modifiers of every instance on the
// grid, attachments included, and drops the ones that run out.
func CleanupEndOfTurnModifiers(s *state.GameState, log *rules.EventLog) int {
	expired := 0
	for _, inst := range s.Instances() {
		if len(inst.Modifiers) == 0 {
			continue
		}
		kept, gone := inst.Modifiers.Tick()
		inst.Modifiers = kept
		for _, m := range gone {
			expired++
			log.Record(rules.Event{
				Type:        rules.EventModifierExpired,
				PlayerID:    inst.OwnerID,
				InstanceID:  inst.InstanceID,
				CardID:      inst.CardID,
				SourceID:    m.SourceID,
				Description: string(m.Kind),
			})
		}
	}
	return expired
}

// CleanupSourceModifiers drops modifiers created by a source that has left
// play, for abilities whose effect lasts only while the source remains.
func CleanupSourceModifiers(s *state.GameState, sourceID string) {
	for _, inst := range s.Instances() {
		inst.Modifiers = inst.Modifiers.RemoveFromSource(sourceID)
	}
}
