package effects

import (
	"go.uber.org/zap"

	"github.com/biomasters/biomasters-server-go/internal/game/cards"
	"github.com/biomasters/biomasters-server-go/internal/game/modifiers"
	"github.com/biomasters/biomasters-server-go/internal/game/rules"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
	"github.com/biomasters/biomasters-server-go/internal/game/targeting"
)

// apply performs one effect action on one resolved target. Targets that
// have moved since resolution are ignored.
func (r *Resolver) apply(s *state.GameState, eff cards.Effect, t targeting.Target, ctx targeting.Context, log *rules.EventLog, depth int) {
	switch eff.Action {
	case cards.ActionGainResource, cards.ActionLoseResource,
		cards.ActionGainVP, cards.ActionLoseVP, cards.ActionDraw:
		r.applyToPlayer(s, eff, t.OwnerID, log)
		return
	case cards.ActionAttach:
		r.attach(s, t, ctx, log, depth)
		return
	}

	switch t.Zone {
	case targeting.ZoneGone:
		return
	case targeting.ZoneHand:
		applyToHand(s, eff, t, log)
		return
	}

	inst, host, ok := s.Find(t.InstanceID)
	if !ok {
		return
	}
	event := rules.Event{PlayerID: inst.OwnerID, InstanceID: inst.InstanceID, CardID: inst.CardID, SourceID: sourceID(ctx)}

	switch eff.Action {
	case cards.ActionExhaust:
		if inst.IsLiving() {
			inst.Exhausted = true
			event.Type = rules.EventCardExhausted
		}

	case cards.ActionReady:
		if inst.IsLiving() {
			inst.Exhausted = false
			event.Type = rules.EventCardReadied
		}

	case cards.ActionDestroy:
		if inst.Modifiers.Has(modifiers.KindShield) {
			return
		}
		snapshot := inst.Clone()
		if s.Destroy(inst.InstanceID) {
			event.Type = rules.EventCardDestroyed
			event.Position = snapshot.Position
			log.Record(event)
			r.leavePlay(s, snapshot, ctx.RandomDraw, log, depth)
			return
		}

	case cards.ActionRemove:
		snapshot := inst.Clone()
		if s.RemoveFromGame(inst.InstanceID) {
			event.Type = rules.EventCardRemoved
			log.Record(event)
			r.leavePlay(s, snapshot, ctx.RandomDraw, log, depth)
			return
		}

	case cards.ActionToHand:
		snapshot := inst.Clone()
		if toHand, ok := s.MoveToHand(inst.InstanceID, s.Settings.MaxHandSize); ok {
			event.Type = rules.EventCardReturned
			if !toHand {
				event.Type = rules.EventCardDiscarded
			}
			log.Record(event)
			r.leavePlay(s, snapshot, ctx.RandomDraw, log, depth)
			return
		}

	case cards.ActionToScorePile:
		snapshot := inst.Clone()
		if s.MoveToScorePile(inst.InstanceID, ctx.ActorID) {
			event.Type = rules.EventCardScored
			event.PlayerID = ctx.ActorID
			log.Record(event)
			r.leavePlay(s, snapshot, ctx.RandomDraw, log, depth)
			return
		}

	case cards.ActionDiscard:
		snapshot := inst.Clone()
		if s.MoveToDiscard(inst.InstanceID) {
			event.Type = rules.EventCardDiscarded
			log.Record(event)
			r.leavePlay(s, snapshot, ctx.RandomDraw, log, depth)
			return
		}

	case cards.ActionDetach:
		if host == nil {
			return
		}
		snapshot := inst.Clone()
		if _, ok := s.Detach(inst.InstanceID); ok {
			event.Type = rules.EventCardDetached
			log.Record(event)
			r.leavePlay(s, snapshot, ctx.RandomDraw, log, depth)
			return
		}

	case cards.ActionApplyModifier:
		if !inst.IsLiving() {
			return
		}
		inst.Modifiers = inst.Modifiers.Add(modifiers.New(eff.Modifier, eff.Magnitude, eff.Duration, sourceID(ctx)))
		event.Type = rules.EventModifierAdded
		event.Amount = eff.Magnitude
		event.Description = string(eff.Modifier)

	case cards.ActionSuppressReady:
		if !inst.IsLiving() {
			return
		}
		duration := eff.Duration
		if duration <= 0 {
			duration = 1
		}
		inst.Modifiers = inst.Modifiers.Add(modifiers.New(modifiers.KindSuppressReady, 0, duration, sourceID(ctx)))
		event.Type = rules.EventModifierAdded
		event.Description = string(modifiers.KindSuppressReady)

	case cards.ActionRemoveModifier:
		var removed bool
		inst.Modifiers, removed = inst.Modifiers.Remove(eff.Modifier)
		if removed {
			event.Type = rules.EventModifierRemoved
			event.Description = string(eff.Modifier)
		}
	}

	if event.Type != "" {
		log.Record(event)
	}
}

func (r *Resolver) applyToPlayer(s *state.GameState, eff cards.Effect, playerID string, log *rules.EventLog) {
	p, ok := s.Player(playerID)
	if !ok {
		return
	}
	amount := eff.Magnitude
	switch eff.Action {
	case cards.ActionGainResource:
		p.Energy += amount
		log.Record(rules.Event{Type: rules.EventResourceChanged, PlayerID: p.ID, Amount: amount})
	case cards.ActionLoseResource:
		amount = min(amount, p.Energy)
		p.Energy -= amount
		log.Record(rules.Event{Type: rules.EventResourceChanged, PlayerID: p.ID, Amount: -amount})
	case cards.ActionGainVP:
		p.VictoryPoints += amount
		log.Record(rules.Event{Type: rules.EventVictoryPoints, PlayerID: p.ID, Amount: amount})
	case cards.ActionLoseVP:
		amount = min(amount, p.VictoryPoints)
		p.VictoryPoints -= amount
		log.Record(rules.Event{Type: rules.EventVictoryPoints, PlayerID: p.ID, Amount: -amount})
	case cards.ActionDraw:
		if amount <= 0 {
			amount = 1
		}
		Draw(s, p.ID, amount, log)
	}
}

// attach tucks t under the source, or under the source's host when the
// source is itself attached. The host's domain must include the target's.
// A card attached from hand enters play and fires its enter-play triggers.
func (r *Resolver) attach(s *state.GameState, t targeting.Target, ctx targeting.Context, log *rules.EventLog, depth int) {
	src, srcHost, ok := s.Find(sourceID(ctx))
	if !ok {
		return
	}
	host := src
	if srcHost != nil {
		host = srcHost
	}
	if !host.IsLiving() || host.InstanceID == t.InstanceID {
		return
	}
	hostDef, ok := r.tables.Card(host.CardID)
	if !ok {
		return
	}
	def, ok := r.tables.Card(t.CardID)
	if !ok || !rules.DomainIncludes(hostDef.Domain, def.Domain) {
		r.logger.Debug("attach skipped: domain mismatch",
			zap.String("game_id", s.GameID),
			zap.String("host_id", host.InstanceID),
			zap.String("instance_id", t.InstanceID),
		)
		return
	}

	var inst *state.CardInstance
	switch t.Zone {
	case targeting.ZoneHand:
		inst, ok = s.AttachFromHand(t.OwnerID, t.InstanceID, *host.Position)
	case targeting.ZoneGrid:
		inst, ok = s.Attach(t.InstanceID, host.InstanceID)
	default:
		return
	}
	if !ok {
		return
	}
	log.Record(rules.Event{
		Type:       rules.EventCardAttached,
		PlayerID:   inst.OwnerID,
		InstanceID: inst.InstanceID,
		CardID:     inst.CardID,
		SourceID:   sourceID(ctx),
		Position:   inst.Position,
	})
	if t.Zone == targeting.ZoneHand {
		r.fire(s, inst, cards.TriggerOnEnterPlay, ctx.RandomDraw, log, depth+1)
	}
}

func applyToHand(s *state.GameState, eff cards.Effect, t targeting.Target, log *rules.EventLog) {
	p, ok := s.Player(t.OwnerID)
	if !ok {
		return
	}
	switch eff.Action {
	case cards.ActionDiscard:
		if ref, ok := p.TakeFromHand(t.InstanceID); ok {
			p.Discard = append(p.Discard, ref)
			log.Record(rules.Event{Type: rules.EventCardDiscarded, PlayerID: p.ID, InstanceID: ref.InstanceID, CardID: ref.CardID})
		}
	case cards.ActionToScorePile:
		if ref, ok := p.TakeFromHand(t.InstanceID); ok {
			p.AddToScorePile(ref)
			log.Record(rules.Event{Type: rules.EventCardScored, PlayerID: p.ID, InstanceID: ref.InstanceID, CardID: ref.CardID})
		}
	}
}

// LeavePlay handles an instance that has just left the grid: modifiers it
// granted lapse and its leave-play triggers fire, along with those of the
// attachments that went with it. snapshot is the instance as it was
// before the move.
func (r *Resolver) LeavePlay(s *state.GameState, snapshot *state.CardInstance, randomDraw int, log *rules.EventLog) {
	r.leavePlay(s, snapshot, randomDraw, log, 0)
}

func (r *Resolver) leavePlay(s *state.GameState, snapshot *state.CardInstance, randomDraw int, log *rules.EventLog, depth int) {
	if !snapshot.IsLiving() {
		return
	}
	CleanupSourceModifiers(s, snapshot.InstanceID)
	r.fire(s, snapshot, cards.TriggerOnLeavePlay, randomDraw, log, depth+1)
	for _, a := range snapshot.Attachments {
		CleanupSourceModifiers(s, a.InstanceID)
		r.fire(s, a, cards.TriggerOnLeavePlay, randomDraw, log, depth+1)
	}
}
