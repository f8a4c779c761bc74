package rules

import (
	"errors"
	"fmt"
)

// Reason classifies why an action was rejected.
type Reason string

const (
	ReasonInvalidPosition       Reason = "INVALID_POSITION"
	ReasonPositionOccupied      Reason = "POSITION_OCCUPIED"
	ReasonAdjacency             Reason = "ADJACENCY_VIOLATION"
	ReasonTrophicConnection     Reason = "TROPHIC_CONNECTION_VIOLATION"
	ReasonDomainMismatch        Reason = "DOMAIN_MISMATCH"
	ReasonInsufficientResources Reason = "INSUFFICIENT_RESOURCES"
	ReasonCardNotInHand         Reason = "CARD_NOT_IN_HAND"
	ReasonCardExhausted         Reason = "CARD_EXHAUSTED"
	ReasonInvalidTarget         Reason = "INVALID_TARGET"
	ReasonNotYourTurn           Reason = "NOT_YOUR_TURN"
	ReasonNoActionsRemaining    Reason = "NO_ACTIONS_REMAINING"
	ReasonGameEnded             Reason = "GAME_ALREADY_ENDED"
	ReasonInvalidPhase          Reason = "INVALID_PHASE"
	ReasonInvalidAction         Reason = "INVALID_ACTION"
)

// Callers match on these strings; keep them stable.
var reasonMessages = map[Reason]string{
	ReasonInvalidPosition:       "Invalid position",
	ReasonPositionOccupied:      "Position occupied",
	ReasonAdjacency:             "Must be placed adjacent to existing cards or HOME",
	ReasonTrophicConnection:     "Invalid trophic connection",
	ReasonDomainMismatch:        "Domain mismatch",
	ReasonInsufficientResources: "Insufficient resources",
	ReasonCardNotInHand:         "Card not in hand",
	ReasonCardExhausted:         "Card is exhausted",
	ReasonInvalidTarget:         "Invalid target",
	ReasonNotYourTurn:           "Not your turn",
	ReasonNoActionsRemaining:    "No actions remaining",
	ReasonGameEnded:             "Game has already ended",
	ReasonInvalidPhase:          "Action not allowed in current phase",
	ReasonInvalidAction:         "Invalid action",
}

// Message returns the fixed text for a reason.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// Violation is a rejected action. It is always recoverable: the caller
// re-prompts the player.
type Violation struct {
	Reason  Reason
	Message string
}

func (v *Violation) Error() string {
	return v.Message
}

// Violate builds a violation carrying the reason's fixed message.
func Violate(reason Reason) *Violation {
	return &Violation{Reason: reason, Message: reason.Message()}
}

// Violatef appends detail to the reason's fixed message.
func Violatef(reason Reason, format string, args ...any) *Violation {
	return &Violation{
		Reason:  reason,
		Message: reason.Message() + ": " + fmt.Sprintf(format, args...),
	}
}

// AsViolation extracts a Violation from err. Other errors are reported as
// invalid actions so nothing escapes the taxonomy.
func AsViolation(err error) *Violation {
	if err == nil {
		return nil
	}
	var v *Violation
	if errors.As(err, &v) {
		return v
	}
	return &Violation{Reason: ReasonInvalidAction, Message: ReasonInvalidAction.Message() + ": " + err.Error()}
}
