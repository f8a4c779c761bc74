package effects

import (
	"go.uber.org/zap"

	"github.com/biomasters/biomasters-server-go/internal/game/cards"
	"github.com/biomasters/biomasters-server-go/internal/game/modifiers"
	"github.com/biomasters/biomasters-server-go/internal/game/rules"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
	"github.com/biomasters/biomasters-server-go/internal/game/targeting"
)

// maxTriggerDepth bounds chains of leave-play triggers firing each other.
const maxTriggerDepth = 8

// Activation is a player's request to use an on_activate ability.
type Activation struct {
	PlayerID   string
	InstanceID string
	AbilityID  int
	TargetID   string
	RandomDraw int
}

// Resolver executes ability pipelines against a game state. It mutates the
// state it is handed; callers pass a clone.
type Resolver struct {
	tables  *cards.Tables
	targets *targeting.Resolver
	logger  *zap.Logger
}

// NewResolver creates an ability resolver over the static tables.
func NewResolver(tables *cards.Tables, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		tables:  tables,
		targets: targeting.NewResolver(tables),
		logger:  logger,
	}
}

// Targets exposes the selector resolver.
func (r *Resolver) Targets() *targeting.Resolver {
	return r.targets
}

// CanActivate checks a manual activation without changing anything and
// returns the ability it would resolve.
func (r *Resolver) CanActivate(s *state.GameState, a Activation) (cards.AbilityDefinition, error) {
	inst, _, ok := s.Find(a.InstanceID)
	if !ok {
		return cards.AbilityDefinition{}, rules.Violatef(rules.ReasonInvalidTarget, "unknown instance %s", a.InstanceID)
	}
	if inst.OwnerID != a.PlayerID {
		return cards.AbilityDefinition{}, rules.Violatef(rules.ReasonInvalidTarget, "instance %s belongs to another player", a.InstanceID)
	}
	if !inst.IsLiving() {
		return cards.AbilityDefinition{}, rules.Violatef(rules.ReasonInvalidTarget, "instance %s cannot act", a.InstanceID)
	}
	if inst.Exhausted {
		return cards.AbilityDefinition{}, rules.Violate(rules.ReasonCardExhausted)
	}

	def, ok := r.tables.Card(inst.CardID)
	if !ok || !def.HasAbility(a.AbilityID) {
		return cards.AbilityDefinition{}, rules.Violatef(rules.ReasonInvalidAction, "card has no ability %d", a.AbilityID)
	}
	ability, ok := r.tables.Ability(a.AbilityID)
	if !ok {
		return cards.AbilityDefinition{}, rules.Violatef(rules.ReasonInvalidAction, "unknown ability %d", a.AbilityID)
	}
	if ability.Trigger != cards.TriggerOnActivate {
		return cards.AbilityDefinition{}, rules.Violatef(rules.ReasonInvalidAction, "%s cannot be activated", ability.Name)
	}

	ctx := targeting.Context{Source: inst, ActorID: a.PlayerID, TargetID: a.TargetID, RandomDraw: a.RandomDraw}
	if err := r.targets.ValidateChoice(s, ability, ctx); err != nil {
		return cards.AbilityDefinition{}, err
	}
	return ability, nil
}

// Activate validates a, exhausts the source and resolves the ability.
func (r *Resolver) Activate(s *state.GameState, a Activation, log *rules.EventLog) error {
	ability, err := r.CanActivate(s, a)
	if err != nil {
		return err
	}
	inst, _, _ := s.Find(a.InstanceID)
	inst.Exhausted = true
	log.Record(rules.Event{Type: rules.EventCardExhausted, PlayerID: a.PlayerID, InstanceID: inst.InstanceID, CardID: inst.CardID})

	ctx := targeting.Context{Source: inst, ActorID: a.PlayerID, TargetID: a.TargetID, RandomDraw: a.RandomDraw}
	if err := r.resolve(s, ability, ctx, log, 0, true); err != nil {
		return err
	}

	r.logger.Debug("ability activated",
		zap.String("game_id", s.GameID),
		zap.String("player_id", a.PlayerID),
		zap.String("instance_id", a.InstanceID),
		zap.String("ability", ability.Name),
	)
	return nil
}

// Fire resolves every ability of inst with the given trigger on behalf of
// its owner. Effects that need an explicit choice are skipped.
func (r *Resolver) Fire(s *state.GameState, inst *state.CardInstance, trigger cards.TriggerKind, randomDraw int, log *rules.EventLog) {
	r.fire(s, inst, trigger, randomDraw, log, 0)
}

// FireForPlayer fires trigger on every living instance playerID owns, in
// board order. Instances that leave play part way through are skipped.
func (r *Resolver) FireForPlayer(s *state.GameState, playerID string, trigger cards.TriggerKind, randomDraw int, log *rules.EventLog) {
	var ids []string
	for _, inst := range s.Instances() {
		if inst.OwnerID == playerID && inst.IsLiving() {
			ids = append(ids, inst.InstanceID)
		}
	}
	for _, id := range ids {
		inst, _, ok := s.Find(id)
		if !ok || !inst.IsLiving() {
			continue
		}
		r.fire(s, inst, trigger, randomDraw, log, 0)
	}
}

func (r *Resolver) fire(s *state.GameState, inst *state.CardInstance, trigger cards.TriggerKind, randomDraw int, log *rules.EventLog, depth int) {
	if depth > maxTriggerDepth {
		r.logger.Warn("trigger chain too deep",
			zap.String("game_id", s.GameID),
			zap.String("instance_id", inst.InstanceID),
		)
		return
	}
	def, ok := r.tables.Card(inst.CardID)
	if !ok {
		return
	}
	for _, aid := range def.Abilities {
		ability, ok := r.tables.Ability(aid)
		if !ok || ability.Trigger != trigger {
			continue
		}
		ctx := targeting.Context{Source: inst, ActorID: inst.OwnerID, RandomDraw: randomDraw}
		_ = r.resolve(s, ability, ctx, log, depth, false)
	}
}

// resolve applies the effects of ability in order. Each effect sees the
// mutations of the ones before it. In strict mode a target failure aborts
// the pipeline; otherwise the effect is skipped.
func (r *Resolver) resolve(s *state.GameState, ability cards.AbilityDefinition, ctx targeting.Context, log *rules.EventLog, depth int, strict bool) error {
	for _, eff := range ability.Effects {
		targets, err := r.targets.Resolve(s, eff, ctx)
		if err != nil {
			if strict {
				return err
			}
			r.logger.Debug("effect skipped",
				zap.String("game_id", s.GameID),
				zap.String("ability", ability.Name),
				zap.Error(err),
			)
			continue
		}
		for _, t := range targets {
			r.apply(s, eff, t, ctx, log, depth)
		}
	}
	log.Record(rules.Event{
		Type:        rules.EventAbilityResolved,
		PlayerID:    ctx.ActorID,
		SourceID:    sourceID(ctx),
		Amount:      ability.ID,
		Description: ability.Name,
	})
	return nil
}

// IsReadySuppressed reports whether inst must stay exhausted through the
// ready sub-phase, either from a modifier on it or from a persistent
// ability on the board that selects it.
func (r *Resolver) IsReadySuppressed(s *state.GameState, inst *state.CardInstance) bool {
	if inst.Modifiers.Has(modifiers.KindSuppressReady) {
		return true
	}
	for _, src := range s.Instances() {
		if !src.IsLiving() {
			continue
		}
		def, ok := r.tables.Card(src.CardID)
		if !ok {
			continue
		}
		for _, aid := range def.Abilities {
			ability, ok := r.tables.Ability(aid)
			if !ok || ability.Trigger != cards.TriggerPersistent {
				continue
			}
			for _, eff := range ability.Effects {
				if eff.Action != cards.ActionSuppressReady {
					continue
				}
				ctx := targeting.Context{Source: src, ActorID: src.OwnerID}
				for _, t := range r.targets.Candidates(s, eff, ctx) {
					if t.InstanceID == inst.InstanceID {
						return true
					}
				}
			}
		}
	}
	return false
}

func sourceID(ctx targeting.Context) string {
	if ctx.Source == nil {
		return ""
	}
	return ctx.Source.InstanceID
}
