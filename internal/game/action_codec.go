package game

import (
	"encoding/json"
	"fmt"

	"github.com/biomasters/biomasters-server-go/internal/game/rules"
)

// actionEnvelope is the JSON form of an action:
//
//	{"type":"PLAY_CARD","player_id":"p1","payload":{"card_id":2,"position":"3,4"}}
type actionEnvelope struct {
	Type     ActionType      `json:"type"`
	PlayerID string          `json:"player_id"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// DecodeAction parses an action envelope. Malformed input is reported as
// an invalid-action violation so callers can treat it like any other
// rejected action.
func DecodeAction(data []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, rules.Violatef(rules.ReasonInvalidAction, "malformed action: %v", err)
	}

	var (
		action Action
		err    error
	)
	switch env.Type {
	case ActionPlayCard:
		var a PlayCard
		err = decodePayload(env.Payload, &a)
		a.PlayerID = env.PlayerID
		action = a
	case ActionActivateAbility:
		var a ActivateAbility
		err = decodePayload(env.Payload, &a)
		a.PlayerID = env.PlayerID
		action = a
	case ActionPassTurn:
		action = PassTurn{PlayerID: env.PlayerID}
	case ActionPlayerReady:
		action = PlayerReady{PlayerID: env.PlayerID}
	case ActionMoveCard:
		var a MoveCard
		err = decodePayload(env.Payload, &a)
		a.PlayerID = env.PlayerID
		action = a
	case ActionRemoveCard:
		var a RemoveCard
		err = decodePayload(env.Payload, &a)
		a.PlayerID = env.PlayerID
		action = a
	case ActionMetamorphosis:
		var a Metamorphosis
		err = decodePayload(env.Payload, &a)
		a.PlayerID = env.PlayerID
		action = a
	case ActionForfeit:
		var a Forfeit
		err = decodePayload(env.Payload, &a)
		a.PlayerID = env.PlayerID
		action = a
	default:
		return nil, rules.Violatef(rules.ReasonInvalidAction, "unknown action type %q", env.Type)
	}
	if err != nil {
		return nil, rules.Violatef(rules.ReasonInvalidAction, "malformed %s payload: %v", env.Type, err)
	}
	return action, nil
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// EncodeAction renders an action as an envelope.
func EncodeAction(a Action) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("encode action: nil action")
	}
	env := actionEnvelope{Type: a.Type(), PlayerID: a.Actor()}
	switch a.(type) {
	case PassTurn, PlayerReady:
	default:
		payload, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", a.Type(), err)
		}
		env.Payload = payload
	}
	return json.Marshal(env)
}
