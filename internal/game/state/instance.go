package state

import (
	"github.com/biomasters/biomasters-server-go/internal/game/cards"
	"github.com/biomasters/biomasters-server-go/internal/game/modifiers"
)

// CardRef is a card sitting in a non-grid zone (hand, deck, piles).
type CardRef struct {
	InstanceID string `json:"instance_id"`
	CardID     int    `json:"card_id"`
}

// CardInstance is a card on the grid. Attachments share the host's position
// and are owned by the host; they never appear in the grid map themselves.
type CardInstance struct {
	InstanceID  string          `json:"instance_id"`
	CardID      int             `json:"card_id"`
	OwnerID     string          `json:"owner_id"`
	Position    *Position       `json:"position,omitempty"`
	Exhausted   bool            `json:"exhausted"`
	IsHome      bool            `json:"is_home"`
	IsDetritus  bool            `json:"is_detritus"`
	Attachments []*CardInstance `json:"attachments,omitempty"`
	Modifiers   modifiers.Set   `json:"modifiers,omitempty"`
}

// NewInstance puts ref into play for owner at pos, ready.
func NewInstance(ref CardRef, owner string, pos Position) *CardInstance {
	p := pos
	return &CardInstance{
		InstanceID: ref.InstanceID,
		CardID:     ref.CardID,
		OwnerID:    owner,
		Position:   &p,
	}
}

// Ref returns the zone form of the instance.
func (c *CardInstance) Ref() CardRef {
	return CardRef{InstanceID: c.InstanceID, CardID: c.CardID}
}

// IsLiving reports whether the instance is a playable organism: not HOME
// and not a detritus tile.
func (c *CardInstance) IsLiving() bool {
	return !c.IsHome && !c.IsDetritus
}

// MarkDetritus turns the instance into a detritus tile. A detritus tile is
// always exhausted and carries no modifiers.
func (c *CardInstance) MarkDetritus() {
	c.IsDetritus = true
	c.Exhausted = true
	c.Modifiers = nil
}

// EffectiveTrophicLevel applies trophic-shift modifiers to the printed level.
func (c *CardInstance) EffectiveTrophicLevel(def cards.CardDefinition) int {
	return def.TrophicLevel + c.Modifiers.Total(modifiers.KindTrophicShift)
}

// Attachment returns the attached instance with id, if any.
func (c *CardInstance) Attachment(id string) (*CardInstance, bool) {
	for _, a := range c.Attachments {
		if a.InstanceID == id {
			return a, true
		}
	}
	return nil, false
}

// Clone deep-copies the instance and its attachments.
func (c *CardInstance) Clone() *CardInstance {
	if c == nil {
		return nil
	}
	out := *c
	if c.Position != nil {
		p := *c.Position
		out.Position = &p
	}
	out.Modifiers = c.Modifiers.Copy()
	if len(c.Attachments) > 0 {
		out.Attachments = make([]*CardInstance, len(c.Attachments))
		for i, a := range c.Attachments {
			out.Attachments[i] = a.Clone()
		}
	}
	return &out
}
