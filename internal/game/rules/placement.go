package rules

import (
	"github.com/biomasters/biomasters-server-go/internal/game/cards"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// PlacementRequest describes a card about to occupy, or attach at, a cell.
type PlacementRequest struct {
	Card     cards.CardDefinition
	Position state.Position
	PlayerID string
	// Ignore names an instance that is leaving the cell or board as part of
	// the same action (moves, metamorphosis); it is invisible to the checks.
	Ignore string
	// SkipCost disables the resource check.
	SkipCost bool
}

// Payment is what a legal placement costs the acting player.
type Payment struct {
	Energy  int
	Exhaust []string
}

// PlacementValidator decides whether a card may legally enter the grid.
// It never mutates the state it inspects.
type PlacementValidator struct {
	tables *cards.Tables
}

// NewPlacementValidator creates a validator over the static tables.
func NewPlacementValidator(tables *cards.Tables) *PlacementValidator {
	return &PlacementValidator{tables: tables}
}

// Validate runs the placement checks in order and returns the payment the
// placement requires. The first failing check determines the violation.
func (pv *PlacementValidator) Validate(s *state.GameState, req PlacementRequest) (Payment, error) {
	if req.Card.Category == cards.CategoryHome {
		return Payment{}, Violatef(ReasonInvalidAction, "HOME cards cannot be played")
	}
	if _, ok := s.Player(req.PlayerID); !ok {
		return Payment{}, Violate(ReasonNotYourTurn)
	}
	if !s.InBounds(req.Position) {
		return Payment{}, Violate(ReasonInvalidPosition)
	}

	if req.Card.Category.IsAttachment() {
		return pv.validateAttachment(s, req)
	}

	if occupant, ok := s.At(req.Position); ok && occupant.InstanceID != req.Ignore {
		return Payment{}, Violate(ReasonPositionOccupied)
	}

	neighbors := pv.neighbors(s, req.Position, req.Ignore)
	if len(neighbors) == 0 {
		return Payment{}, Violate(ReasonAdjacency)
	}

	if err := pv.checkTrophicConnection(s, req.Card, neighbors); err != nil {
		return Payment{}, err
	}
	if err := pv.checkDomain(req.Card, neighbors); err != nil {
		return Payment{}, err
	}
	if req.SkipCost {
		return Payment{}, nil
	}
	return pv.checkCost(s, req, neighbors)
}

func (pv *PlacementValidator) validateAttachment(s *state.GameState, req PlacementRequest) (Payment, error) {
	host, ok := s.At(req.Position)
	if !ok || !host.IsLiving() || host.InstanceID == req.Ignore {
		return Payment{}, Violatef(ReasonInvalidTarget, "%s cards must attach to a living host", req.Card.Category)
	}
	hostDef, ok := pv.tables.Card(host.CardID)
	if !ok {
		return Payment{}, Violate(ReasonInvalidTarget)
	}
	if !DomainIncludes(hostDef.Domain, req.Card.Domain) {
		return Payment{}, Violatef(ReasonDomainMismatch, "%s host cannot carry a %s attachment", hostDef.Domain, req.Card.Domain)
	}
	if req.SkipCost {
		return Payment{}, nil
	}
	return pv.checkCost(s, req, pv.neighbors(s, req.Position, req.Ignore))
}

func (pv *PlacementValidator) neighbors(s *state.GameState, pos state.Position, ignore string) []*state.CardInstance {
	all := s.Neighbors(pos)
	if ignore == "" {
		return all
	}
	out := all[:0:0]
	for _, n := range all {
		if n.InstanceID != ignore {
			out = append(out, n)
		}
	}
	return out
}

func (pv *PlacementValidator) checkTrophicConnection(s *state.GameState, card cards.CardDefinition, neighbors []*state.CardInstance) error {
	switch card.Category {
	case cards.CategoryProducer:
		return nil

	case cards.CategoryChemoautotroph:
		if s.Settings.ChemoautotrophHomeBypass && anyNeighbor(neighbors, func(n *state.CardInstance) bool { return n.IsHome }) {
			return nil
		}
		if anyNeighbor(neighbors, func(n *state.CardInstance) bool {
			return n.IsDetritus || (n.IsLiving() && pv.category(n) == cards.CategorySaprotroph)
		}) {
			return nil
		}
		return Violatef(ReasonTrophicConnection, "chemoautotrophs need adjacent detritus or a saprotroph")

	case cards.CategorySaprotroph:
		if anyNeighbor(neighbors, func(n *state.CardInstance) bool { return n.IsDetritus }) {
			return nil
		}
		return Violatef(ReasonTrophicConnection, "saprotrophs must be adjacent to detritus")

	case cards.CategoryDetritivore:
		if anyNeighbor(neighbors, func(n *state.CardInstance) bool {
			return n.IsLiving() && pv.category(n) == cards.CategorySaprotroph
		}) {
			return nil
		}
		return Violatef(ReasonTrophicConnection, "detritivores must be adjacent to a saprotroph")

	case cards.CategoryHerbivore, cards.CategoryOmnivore, cards.CategoryCarnivore:
		return pv.checkConsumer(s, card, neighbors)
	}
	return nil
}

func (pv *PlacementValidator) checkConsumer(s *state.GameState, card cards.CardDefinition, neighbors []*state.CardInstance) error {
	want := card.TrophicLevel - 1
	opportunist := s.Settings.OpportunistBypass && pv.tables.HasNamedKeyword(card, cards.KeywordOpportunist)

	for _, n := range neighbors {
		if !n.IsLiving() {
			continue
		}
		def, ok := pv.tables.Card(n.CardID)
		if !ok {
			continue
		}
		level := n.EffectiveTrophicLevel(def)
		if level == want {
			return nil
		}
		if card.Category == cards.CategoryOmnivore && def.Category.IsProducer() {
			return nil
		}
		if opportunist && level >= 1 && level < card.TrophicLevel {
			return nil
		}
	}
	return Violatef(ReasonTrophicConnection, "%s requires an adjacent card at trophic level %d", card.Name, want)
}

func (pv *PlacementValidator) checkDomain(card cards.CardDefinition, neighbors []*state.CardInstance) error {
	for _, n := range neighbors {
		if DomainsCompatible(card.Domain, pv.domain(n)) {
			return nil
		}
	}
	return Violatef(ReasonDomainMismatch, "no adjacent card is compatible with %s", card.Domain)
}

func (pv *PlacementValidator) checkCost(s *state.GameState, req PlacementRequest, neighbors []*state.CardInstance) (Payment, error) {
	player, _ := s.Player(req.PlayerID)
	cost := req.Card.Cost
	if player.Energy < cost.Energy {
		return Payment{}, Violatef(ReasonInsufficientResources, "need %d energy, have %d", cost.Energy, player.Energy)
	}

	pay := Payment{Energy: cost.Energy}
	used := map[string]bool{}
	for _, need := range cost.Requirements {
		found := 0
		for _, n := range neighbors {
			if found == need.Count {
				break
			}
			if used[n.InstanceID] || n.Exhausted || !n.IsLiving() || n.OwnerID != req.PlayerID {
				continue
			}
			if pv.category(n) != need.Category {
				continue
			}
			used[n.InstanceID] = true
			pay.Exhaust = append(pay.Exhaust, n.InstanceID)
			found++
		}
		if found < need.Count {
			return Payment{}, Violatef(ReasonInsufficientResources, "need %d ready adjacent %s", need.Count, need.Category)
		}
	}
	return pay, nil
}

func (pv *PlacementValidator) category(n *state.CardInstance) cards.TrophicCategory {
	if n.IsHome {
		return cards.CategoryHome
	}
	def, ok := pv.tables.Card(n.CardID)
	if !ok {
		return ""
	}
	return def.Category
}

func (pv *PlacementValidator) domain(n *state.CardInstance) cards.Domain {
	if n.IsHome {
		return cards.DomainHome
	}
	def, ok := pv.tables.Card(n.CardID)
	if !ok {
		return ""
	}
	return def.Domain
}

func anyNeighbor(neighbors []*state.CardInstance, pred func(*state.CardInstance) bool) bool {
	for _, n := range neighbors {
		if pred(n) {
			return true
		}
	}
	return false
}
