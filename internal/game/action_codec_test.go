package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomasters/biomasters-server-go/internal/game/rules"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

func TestActionEnvelopeRoundTrip(t *testing.T) {
	actions := []Action{
		PlayCard{PlayerID: "alice", InstanceID: "i1", Position: state.Pos(2, 5), RandomDraw: 3},
		PlayCard{PlayerID: "alice", CardID: 4, Position: state.Pos(-1, 0)},
		ActivateAbility{PlayerID: "bob", InstanceID: "i2", AbilityID: 2, TargetID: "i3"},
		PassTurn{PlayerID: "alice"},
		PlayerReady{PlayerID: "bob"},
		MoveCard{PlayerID: "alice", InstanceID: "i4", To: state.Pos(0, 7)},
		RemoveCard{PlayerID: "alice", InstanceID: "i5"},
		Metamorphosis{PlayerID: "bob", InstanceID: "i6", CardID: 14},
		Forfeit{PlayerID: "bob", Reason: state.EndReasonPlayerQuit},
	}
	for _, a := range actions {
		t.Run(string(a.Type()), func(t *testing.T) {
			data, err := EncodeAction(a)
			require.NoError(t, err)
			got, err := DecodeAction(data)
			require.NoError(t, err)
			assert.Equal(t, a, got)
		})
	}
}

func TestDecodeActionAcceptsObjectPositions(t *testing.T) {
	got, err := DecodeAction([]byte(`{"type":"PLAY_CARD","player_id":"alice","payload":{"card_id":2,"position":{"x":2,"y":5}}}`))
	require.NoError(t, err)
	assert.Equal(t, PlayCard{PlayerID: "alice", CardID: 2, Position: state.Pos(2, 5)}, got)

	got, err = DecodeAction([]byte(`{"type":"MOVE_CARD","player_id":"bob","payload":{"instance_id":"x","to":"4,1"}}`))
	require.NoError(t, err)
	assert.Equal(t, MoveCard{PlayerID: "bob", InstanceID: "x", To: state.Pos(4, 1)}, got)
}

func TestDecodeActionWithoutPayload(t *testing.T) {
	got, err := DecodeAction([]byte(`{"type":"PASS_TURN","player_id":"alice"}`))
	require.NoError(t, err)
	assert.Equal(t, PassTurn{PlayerID: "alice"}, got)

	got, err = DecodeAction([]byte(`{"type":"FORFEIT","player_id":"alice","payload":null}`))
	require.NoError(t, err)
	assert.Equal(t, Forfeit{PlayerID: "alice"}, got)
}

func TestDecodeActionRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"type":`,
		"unknown type":   `{"type":"ATTACK","player_id":"alice"}`,
		"bad payload":    `{"type":"PLAY_CARD","player_id":"alice","payload":{"card_id":"two"}}`,
		"bad position":   `{"type":"PLAY_CARD","player_id":"alice","payload":{"position":"2;5"}}`,
		"partial object": `{"type":"MOVE_CARD","player_id":"alice","payload":{"to":{"x":1}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeAction([]byte(body))
			require.Error(t, err)
			var v *rules.Violation
			require.True(t, errors.As(err, &v))
			assert.Equal(t, rules.ReasonInvalidAction, v.Reason)
		})
	}
}

func TestEncodeNilAction(t *testing.T) {
	_, err := EncodeAction(nil)
	assert.Error(t, err)
}
