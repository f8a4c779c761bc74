package game

import (
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// ActionType is the wire tag of a player action.
type ActionType string

const (
	ActionPlayCard        ActionType = "PLAY_CARD"
	ActionActivateAbility ActionType = "ACTIVATE_ABILITY"
	ActionPassTurn        ActionType = "PASS_TURN"
	ActionPlayerReady     ActionType = "PLAYER_READY"
	ActionMoveCard        ActionType = "MOVE_CARD"
	ActionRemoveCard      ActionType = "REMOVE_CARD"
	ActionMetamorphosis   ActionType = "METAMORPHOSIS"
	ActionForfeit         ActionType = "FORFEIT"
)

// Action is one player input. The set of implementations is closed; the
// engine dispatches on the concrete type.
type Action interface {
	Type() ActionType
	Actor() string
	isAction()
}

// PlayCard puts a hand card onto the grid, or under a host for parasites
// and mutualists. The card is named by instance id, or by card id when the
// client only knows which kind of card it wants to play.
type PlayCard struct {
	PlayerID   string         `json:"-"`
	InstanceID string         `json:"instance_id,omitempty"`
	CardID     int            `json:"card_id,omitempty"`
	Position   state.Position `json:"position"`
	RandomDraw int            `json:"random_draw,omitempty"`
}

// ActivateAbility uses an on_activate ability of a ready instance.
type ActivateAbility struct {
	PlayerID   string `json:"-"`
	InstanceID string `json:"instance_id"`
	AbilityID  int    `json:"ability_id"`
	TargetID   string `json:"target_id,omitempty"`
	RandomDraw int    `json:"random_draw,omitempty"`
}

// PassTurn ends the acting player's action sub-phase.
type PassTurn struct {
	PlayerID string `json:"-"`
}

// PlayerReady signals readiness during setup.
type PlayerReady struct {
	PlayerID string `json:"-"`
}

// MoveCard relocates an own ready instance to another legal cell.
type MoveCard struct {
	PlayerID   string         `json:"-"`
	InstanceID string         `json:"instance_id"`
	To         state.Position `json:"to"`
}

// RemoveCard clears an own instance or detritus tile off the grid.
type RemoveCard struct {
	PlayerID   string `json:"-"`
	InstanceID string `json:"instance_id"`
}

// Metamorphosis replaces an own grid instance with a hand card carrying
// the METAMORPHOSIS keyword.
type Metamorphosis struct {
	PlayerID       string `json:"-"`
	InstanceID     string `json:"instance_id"`
	HandInstanceID string `json:"hand_instance_id,omitempty"`
	CardID         int    `json:"card_id,omitempty"`
	RandomDraw     int    `json:"random_draw,omitempty"`
}

// Forfeit removes a player from the game. It is accepted out of turn.
// Reason is one of the state.EndReason values and defaults to forfeit.
type Forfeit struct {
	PlayerID string `json:"-"`
	Reason   string `json:"reason,omitempty"`
}

func (PlayCard) Type() ActionType        { return ActionPlayCard }
func (ActivateAbility) Type() ActionType { return ActionActivateAbility }
func (PassTurn) Type() ActionType        { return ActionPassTurn }
func (PlayerReady) Type() ActionType     { return ActionPlayerReady }
func (MoveCard) Type() ActionType        { return ActionMoveCard }
func (RemoveCard) Type() ActionType      { return ActionRemoveCard }
func (Metamorphosis) Type() ActionType   { return ActionMetamorphosis }
func (Forfeit) Type() ActionType         { return ActionForfeit }

func (a PlayCard) Actor() string        { return a.PlayerID }
func (a ActivateAbility) Actor() string { return a.PlayerID }
func (a PassTurn) Actor() string        { return a.PlayerID }
func (a PlayerReady) Actor() string     { return a.PlayerID }
func (a MoveCard) Actor() string        { return a.PlayerID }
func (a RemoveCard) Actor() string      { return a.PlayerID }
func (a Metamorphosis) Actor() string   { return a.PlayerID }
func (a Forfeit) Actor() string         { return a.PlayerID }

func (PlayCard) isAction()        {}
func (ActivateAbility) isAction() {}
func (PassTurn) isAction()        {}
func (PlayerReady) isAction()     {}
func (MoveCard) isAction()        {}
func (RemoveCard) isAction()      {}
func (Metamorphosis) isAction()   {}
func (Forfeit) isAction()         {}

// spendsAction reports whether the action uses one of the turn's actions.
func spendsAction(a Action) bool {
	switch a.(type) {
	case PlayCard, ActivateAbility, MoveCard, RemoveCard, Metamorphosis:
		return true
	}
	return false
}
