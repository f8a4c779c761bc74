package rules

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogRecordsInOrder(t *testing.T) {
	log := NewEventLog()
	log.Record(Event{Type: EventCardPlayed, InstanceID: "a"})
	log.Record(Event{Type: EventCardDrawn, PlayerID: "alice"})
	log.Record(Event{Type: EventCardPlayed, InstanceID: "b"})

	require.Len(t, log.Events(), 3)
	played := log.OfType(EventCardPlayed)
	require.Len(t, played, 2)
	assert.Equal(t, "a", played[0].InstanceID)
	assert.Equal(t, "b", played[1].InstanceID)
}

func TestNilEventLogDropsEvents(t *testing.T) {
	var log *EventLog
	log.Record(Event{Type: EventGameEnded})
	assert.Empty(t, log.Events())
	assert.Empty(t, log.OfType(EventGameEnded))
}

func TestViolationMessages(t *testing.T) {
	v := Violatef(ReasonTrophicConnection, "needs level %d", 1)
	assert.Equal(t, "Invalid trophic connection: needs level 1", v.Error())

	wrapped := AsViolation(fmt.Errorf("play card: %w", v))
	assert.Equal(t, ReasonTrophicConnection, wrapped.Reason)

	other := AsViolation(assert.AnError)
	assert.Equal(t, ReasonInvalidAction, other.Reason)
	assert.Nil(t, AsViolation(nil))
}
