package rules

import (
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// EventType indicates the category of an engine event.
type EventType string

const (
	// Lifecycle events
	EventPlayerReady     EventType = "PLAYER_READY"
	EventGameStarted     EventType = "GAME_STARTED"
	EventFinalTurn       EventType = "FINAL_TURN"
	EventGameEnded       EventType = "GAME_ENDED"
	EventPlayerForfeited EventType = "PLAYER_FORFEITED"

	// Turn events
	EventTurnStarted      EventType = "TURN_STARTED"
	EventTurnPhaseChanged EventType = "TURN_PHASE_CHANGED"
	EventTurnEnded        EventType = "TURN_ENDED"

	// Zone events
	EventCardPlayed    EventType = "CARD_PLAYED"
	EventCardAttached  EventType = "CARD_ATTACHED"
	EventCardDetached  EventType = "CARD_DETACHED"
	EventCardMoved     EventType = "CARD_MOVED"
	EventCardRemoved   EventType = "CARD_REMOVED"
	EventCardDestroyed EventType = "CARD_DESTROYED"
	EventCardScored    EventType = "CARD_SCORED"
	EventCardReturned  EventType = "CARD_RETURNED"
	EventCardDrawn     EventType = "CARD_DRAWN"
	EventCardDiscarded EventType = "CARD_DISCARDED"
	EventMetamorphosis EventType = "METAMORPHOSIS"

	// Ability events
	EventAbilityResolved EventType = "ABILITY_RESOLVED"
	EventCardExhausted   EventType = "CARD_EXHAUSTED"
	EventCardReadied     EventType = "CARD_READIED"
	EventModifierAdded   EventType = "MODIFIER_ADDED"
	EventModifierRemoved EventType = "MODIFIER_REMOVED"
	EventModifierExpired EventType = "MODIFIER_EXPIRED"
	EventResourceChanged EventType = "RESOURCE_CHANGED"
	EventVictoryPoints   EventType = "VICTORY_POINTS_CHANGED"
)

// Event describes one thing that happened while processing an action.
type Event struct {
	Type        EventType       `json:"type"`
	PlayerID    string          `json:"player_id,omitempty"`
	InstanceID  string          `json:"instance_id,omitempty"`
	SourceID    string          `json:"source_id,omitempty"`
	CardID      int             `json:"card_id,omitempty"`
	Position    *state.Position `json:"position,omitempty"`
	Amount      int             `json:"amount,omitempty"`
	Description string          `json:"description,omitempty"`
}

// EventLog collects events in the order they occurred. A nil log drops
// everything, so callers that do not care can pass nil.
type EventLog struct {
	events []Event
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Record appends an event.
func (l *EventLog) Record(e Event) {
	if l == nil {
		return
	}
	l.events = append(l.events, e)
}

// Events returns the recorded events.
func (l *EventLog) Events() []Event {
	if l == nil {
		return nil
	}
	return l.events
}

// OfType filters the recorded events.
func (l *EventLog) OfType(t EventType) []Event {
	var out []Event
	for _, e := range l.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
