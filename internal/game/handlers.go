package game

import (
	"github.com/biomasters/biomasters-server-go/internal/game/cards"
	"github.com/biomasters/biomasters-server-go/internal/game/effects"
	"github.com/biomasters/biomasters-server-go/internal/game/rules"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// handCard finds the hand card an action refers to, by instance id or,
// failing that, the first copy of cardID.
func handCard(p *state.Player, instanceID string, cardID int) (state.CardRef, bool) {
	if instanceID != "" {
		if i := p.HandIndex(instanceID); i >= 0 {
			return p.Hand[i], true
		}
		return state.CardRef{}, false
	}
	for _, ref := range p.Hand {
		if cardID != 0 && ref.CardID == cardID {
			return ref, true
		}
	}
	return state.CardRef{}, false
}

func (e *Engine) cardDef(cardID int) (cards.CardDefinition, error) {
	def, ok := e.tables.Card(cardID)
	if !ok {
		return cards.CardDefinition{}, rules.Violatef(rules.ReasonInvalidAction, "unknown card %d", cardID)
	}
	return def, nil
}

// pay deducts a placement's energy and exhausts the instances it names.
func pay(s *state.GameState, p *state.Player, payment rules.Payment, log *rules.EventLog) {
	if payment.Energy > 0 {
		p.Energy -= payment.Energy
		log.Record(rules.Event{Type: rules.EventResourceChanged, PlayerID: p.ID, Amount: -payment.Energy})
	}
	for _, id := range payment.Exhaust {
		if inst, _, ok := s.Find(id); ok {
			inst.Exhausted = true
			log.Record(rules.Event{Type: rules.EventCardExhausted, PlayerID: p.ID, InstanceID: inst.InstanceID, CardID: inst.CardID})
		}
	}
}

func (e *Engine) playCard(s *state.GameState, a PlayCard, log *rules.EventLog) error {
	p, _ := s.Player(a.PlayerID)
	ref, ok := handCard(p, a.InstanceID, a.CardID)
	if !ok {
		return rules.Violate(rules.ReasonCardNotInHand)
	}
	def, err := e.cardDef(ref.CardID)
	if err != nil {
		return err
	}
	payment, err := e.placement.Validate(s, rules.PlacementRequest{Card: def, Position: a.Position, PlayerID: p.ID})
	if err != nil {
		return err
	}

	pay(s, p, payment, log)
	var (
		inst   *state.CardInstance
		placed bool
		event  = rules.EventCardPlayed
	)
	if def.Category.IsAttachment() {
		inst, placed = s.AttachFromHand(p.ID, ref.InstanceID, a.Position)
		event = rules.EventCardAttached
	} else {
		inst, placed = s.PlaceFromHand(p.ID, ref.InstanceID, a.Position)
	}
	if !placed {
		return rules.Violatef(rules.ReasonInvalidPosition, "cannot place at %s", a.Position)
	}
	pos := a.Position
	log.Record(rules.Event{Type: event, PlayerID: p.ID, InstanceID: inst.InstanceID, CardID: inst.CardID, Position: &pos})

	e.abilities.Fire(s, inst, cards.TriggerOnEnterPlay, a.RandomDraw, log)
	e.spendAction(s, p, log)
	return nil
}

func (e *Engine) activateAbility(s *state.GameState, a ActivateAbility, log *rules.EventLog) error {
	p, _ := s.Player(a.PlayerID)
	err := e.abilities.Activate(s, effects.Activation{
		PlayerID:   a.PlayerID,
		InstanceID: a.InstanceID,
		AbilityID:  a.AbilityID,
		TargetID:   a.TargetID,
		RandomDraw: a.RandomDraw,
	}, log)
	if err != nil {
		return err
	}
	e.spendAction(s, p, log)
	return nil
}

// ownPrimary finds an own living instance occupying a cell of its own.
func ownPrimary(s *state.GameState, playerID, instanceID string) (*state.CardInstance, error) {
	inst, host, ok := s.Find(instanceID)
	if !ok {
		return nil, rules.Violatef(rules.ReasonInvalidTarget, "unknown instance %s", instanceID)
	}
	if inst.OwnerID != playerID {
		return nil, rules.Violatef(rules.ReasonInvalidTarget, "instance %s belongs to another player", instanceID)
	}
	if host != nil || !inst.IsLiving() {
		return nil, rules.Violatef(rules.ReasonInvalidTarget, "instance %s cannot be used this way", instanceID)
	}
	return inst, nil
}

func (e *Engine) moveCard(s *state.GameState, a MoveCard, log *rules.EventLog) error {
	p, _ := s.Player(a.PlayerID)
	inst, err := ownPrimary(s, p.ID, a.InstanceID)
	if err != nil {
		return err
	}
	if inst.Exhausted {
		return rules.Violate(rules.ReasonCardExhausted)
	}
	if *inst.Position == a.To {
		return rules.Violatef(rules.ReasonInvalidPosition, "instance is already at %s", a.To)
	}
	def, err := e.cardDef(inst.CardID)
	if err != nil {
		return err
	}
	if _, err := e.placement.Validate(s, rules.PlacementRequest{
		Card:     def,
		Position: a.To,
		PlayerID: p.ID,
		Ignore:   inst.InstanceID,
		SkipCost: true,
	}); err != nil {
		return err
	}

	if !s.Relocate(inst.InstanceID, a.To) {
		return rules.Violatef(rules.ReasonInvalidPosition, "cannot move to %s", a.To)
	}
	inst.Exhausted = true
	to := a.To
	log.Record(rules.Event{Type: rules.EventCardMoved, PlayerID: p.ID, InstanceID: inst.InstanceID, CardID: inst.CardID, Position: &to})
	e.spendAction(s, p, log)
	return nil
}

func (e *Engine) removeCard(s *state.GameState, a RemoveCard, log *rules.EventLog) error {
	p, _ := s.Player(a.PlayerID)
	inst, _, ok := s.Find(a.InstanceID)
	if !ok {
		return rules.Violatef(rules.ReasonInvalidTarget, "unknown instance %s", a.InstanceID)
	}
	if inst.IsHome {
		return rules.Violatef(rules.ReasonInvalidTarget, "HOME cannot be removed")
	}
	if inst.OwnerID != p.ID {
		return rules.Violatef(rules.ReasonInvalidTarget, "instance %s belongs to another player", a.InstanceID)
	}

	snapshot := inst.Clone()
	if !s.MoveToDiscard(inst.InstanceID) {
		return rules.Violatef(rules.ReasonInvalidTarget, "instance %s cannot be removed", a.InstanceID)
	}
	log.Record(rules.Event{Type: rules.EventCardRemoved, PlayerID: p.ID, InstanceID: snapshot.InstanceID, CardID: snapshot.CardID, Position: snapshot.Position})
	e.abilities.LeavePlay(s, snapshot, 0, log)
	e.spendAction(s, p, log)
	return nil
}

func (e *Engine) metamorphosis(s *state.GameState, a Metamorphosis, log *rules.EventLog) error {
	p, _ := s.Player(a.PlayerID)
	inst, err := ownPrimary(s, p.ID, a.InstanceID)
	if err != nil {
		return err
	}
	ref, ok := handCard(p, a.HandInstanceID, a.CardID)
	if !ok {
		return rules.Violate(rules.ReasonCardNotInHand)
	}
	def, err := e.cardDef(ref.CardID)
	if err != nil {
		return err
	}
	if !e.tables.HasNamedKeyword(def, cards.KeywordMetamorphosis) {
		return rules.Violatef(rules.ReasonInvalidAction, "%s cannot metamorphose", def.Name)
	}
	if def.Category.IsAttachment() {
		return rules.Violatef(rules.ReasonInvalidAction, "%s cannot replace a grid card", def.Name)
	}
	payment, err := e.placement.Validate(s, rules.PlacementRequest{
		Card:     def,
		Position: *inst.Position,
		PlayerID: p.ID,
		Ignore:   inst.InstanceID,
	})
	if err != nil {
		return err
	}

	pay(s, p, payment, log)
	snapshot := inst.Clone()
	snapshot.Attachments = nil
	next, ok := s.Replace(inst.InstanceID, ref.InstanceID)
	if !ok {
		return rules.Violatef(rules.ReasonInvalidTarget, "instance %s cannot metamorphose", inst.InstanceID)
	}
	log.Record(rules.Event{
		Type:       rules.EventMetamorphosis,
		PlayerID:   p.ID,
		InstanceID: next.InstanceID,
		SourceID:   snapshot.InstanceID,
		CardID:     next.CardID,
		Position:   next.Position,
	})
	e.abilities.LeavePlay(s, snapshot, a.RandomDraw, log)
	if found, _, ok := s.Find(next.InstanceID); ok {
		e.abilities.Fire(s, found, cards.TriggerOnEnterPlay, a.RandomDraw, log)
	}
	e.spendAction(s, p, log)
	return nil
}

func (e *Engine) playerReady(s *state.GameState, a PlayerReady, log *rules.EventLog) error {
	p, _ := s.Player(a.PlayerID)
	if !p.Ready {
		p.Ready = true
		log.Record(rules.Event{Type: rules.EventPlayerReady, PlayerID: p.ID})
	}
	e.maybeStart(s, log)
	return nil
}

func (e *Engine) forfeit(s *state.GameState, a Forfeit, log *rules.EventLog) error {
	reason := a.Reason
	switch reason {
	case "":
		reason = state.EndReasonForfeit
	case state.EndReasonForfeit, state.EndReasonPlayerQuit, state.EndReasonTimeLimit:
	default:
		return rules.Violatef(rules.ReasonInvalidAction, "unknown forfeit reason %q", a.Reason)
	}

	p, _ := s.Player(a.PlayerID)
	wasCurrent := s.CurrentPlayer() == p
	if s.Phase == state.PhaseFinalTurn && !wasCurrent && stillToPlay(s, s.PlayerIndex(p.ID)) {
		s.FinalTurnsRemaining--
	}
	p.Forfeited = true
	p.ActionsRemaining = 0
	log.Record(rules.Event{Type: rules.EventPlayerForfeited, PlayerID: p.ID, Description: reason})

	if active := len(s.ActivePlayers()); active == 0 || (active < 2 && len(s.Players) > 1) {
		e.finish(s, reason, log)
		return nil
	}
	switch s.Phase {
	case state.PhaseSetup:
		e.maybeStart(s, log)
	case state.PhasePlaying, state.PhaseFinalTurn:
		if wasCurrent {
			e.endTurn(s, log)
		}
	}
	return nil
}

// stillToPlay reports whether seat has a turn left in the final round.
func stillToPlay(s *state.GameState, seat int) bool {
	n := len(s.Players)
	left := s.FinalTurnsRemaining - 1
	for step := 1; step <= n && left > 0; step++ {
		i := (s.CurrentPlayerIndex + step) % n
		if s.Players[i].Forfeited {
			continue
		}
		if i == seat {
			return true
		}
		left--
	}
	return false
}

// spendAction uses one of the player's actions. Running out ends the turn.
func (e *Engine) spendAction(s *state.GameState, p *state.Player, log *rules.EventLog) {
	p.ActionsRemaining--
	if p.ActionsRemaining <= 0 && !s.IsTerminal() {
		p.ActionsRemaining = 0
		e.endTurn(s, log)
	}
}
