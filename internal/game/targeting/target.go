package targeting

import (
	"github.com/biomasters/biomasters-server-go/internal/game/cards"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// Zone says where a resolved target lives.
type Zone string

const (
	// ZoneGrid is a living primary or attachment on the board
	ZoneGrid Zone = "grid"
	// ZoneDetritus is a detritus tile on the board
	ZoneDetritus Zone = "detritus"
	// ZoneHand is a card in a player's hand
	ZoneHand Zone = "hand"
	// ZoneGone is an instance that has already left play, e.g. the source
	// of a leave-play trigger
	ZoneGone Zone = "gone"
)

// Target is one resolved target of an effect.
type Target struct {
	InstanceID string
	CardID     int
	OwnerID    string
	Zone       Zone
}

// Context carries everything selector resolution looks at besides the
// state itself.
type Context struct {
	// Source is the instance whose ability is resolving. It may no longer
	// be on the grid.
	Source *state.CardInstance
	// ActorID is the player the ability resolves for.
	ActorID string
	// TargetID is the explicit choice for singular selectors.
	TargetID string
	// RandomDraw picks among candidates for the random selector.
	RandomDraw int
}

// Resolver turns selectors and filters into target lists. It never mutates
// the state.
type Resolver struct {
	tables *cards.Tables
}

// NewResolver creates a resolver over the static tables.
func NewResolver(tables *cards.Tables) *Resolver {
	return &Resolver{tables: tables}
}

// Candidates lists every instance the effect's selector and filter admit,
// in a deterministic order. Singular selectors return the pool the choice
// is made from.
func (r *Resolver) Candidates(s *state.GameState, eff cards.Effect, ctx Context) []Target {
	var out []Target
	add := func(inst *state.CardInstance, zone Zone) {
		if r.matches(inst, eff.Filter) {
			out = append(out, gridTarget(inst, zone))
		}
	}

	switch eff.Selector {
	case cards.SelectorSelf:
		if ctx.Source == nil {
			return nil
		}
		if _, _, ok := s.Find(ctx.Source.InstanceID); ok {
			out = append(out, gridTarget(ctx.Source, ZoneGrid))
		} else {
			out = append(out, gridTarget(ctx.Source, ZoneGone))
		}

	case cards.SelectorHost:
		if ctx.Source == nil {
			return nil
		}
		if _, host, ok := s.Find(ctx.Source.InstanceID); ok && host != nil {
			add(host, ZoneGrid)
		}

	case cards.SelectorAdjacent, cards.SelectorAdjacentTarget:
		for _, n := range r.sourceNeighbors(s, ctx) {
			if n.IsLiving() {
				add(n, ZoneGrid)
			}
		}

	case cards.SelectorDetritus:
		for _, n := range r.sourceNeighbors(s, ctx) {
			if n.IsDetritus {
				add(n, ZoneDetritus)
			}
		}

	case cards.SelectorTarget, cards.SelectorRandom, cards.SelectorAll:
		for _, inst := range livingInstances(s) {
			add(inst, ZoneGrid)
		}

	case cards.SelectorAllOwn, cards.SelectorAllOpponent:
		own := eff.Selector == cards.SelectorAllOwn
		for _, inst := range livingInstances(s) {
			if (inst.OwnerID == ctx.ActorID) == own {
				add(inst, ZoneGrid)
			}
		}

	case cards.SelectorSameDomain, cards.SelectorDifferentDomain:
		if ctx.Source == nil {
			return nil
		}
		srcDef, ok := r.tables.Card(ctx.Source.CardID)
		if !ok {
			return nil
		}
		same := eff.Selector == cards.SelectorSameDomain
		for _, inst := range livingInstances(s) {
			if inst.InstanceID == ctx.Source.InstanceID {
				continue
			}
			def, ok := r.tables.Card(inst.CardID)
			if ok && (def.Domain == srcDef.Domain) == same {
				add(inst, ZoneGrid)
			}
		}

	case cards.SelectorHand:
		p, ok := s.Player(ctx.ActorID)
		if !ok {
			return nil
		}
		for _, ref := range p.Hand {
			def, ok := r.tables.Card(ref.CardID)
			if ok && eff.Filter.Matches(def, def.TrophicLevel) {
				out = append(out, Target{InstanceID: ref.InstanceID, CardID: ref.CardID, OwnerID: p.ID, Zone: ZoneHand})
			}
		}
	}
	return out
}

func (r *Resolver) matches(inst *state.CardInstance, f cards.Filter) bool {
	if f.IsEmpty() {
		return true
	}
	def, ok := r.tables.Card(inst.CardID)
	if !ok {
		return false
	}
	return f.Matches(def, inst.EffectiveTrophicLevel(def))
}

// sourceNeighbors returns the occupied cells around the source, using the
// host's cell for attachments.
func (r *Resolver) sourceNeighbors(s *state.GameState, ctx Context) []*state.CardInstance {
	if ctx.Source == nil {
		return nil
	}
	inst, _, ok := s.Find(ctx.Source.InstanceID)
	if !ok || inst.Position == nil {
		return nil
	}
	return s.Neighbors(*inst.Position)
}

// livingInstances lists living primaries and their attachments in board
// order.
func livingInstances(s *state.GameState) []*state.CardInstance {
	var out []*state.CardInstance
	for _, inst := range s.Instances() {
		if inst.IsLiving() {
			out = append(out, inst)
		}
	}
	return out
}

func gridTarget(inst *state.CardInstance, zone Zone) Target {
	return Target{InstanceID: inst.InstanceID, CardID: inst.CardID, OwnerID: inst.OwnerID, Zone: zone}
}
