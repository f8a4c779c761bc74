package targeting

import (
	"github.com/biomasters/biomasters-server-go/internal/game/cards"
	"github.com/biomasters/biomasters-server-go/internal/game/rules"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// Resolve narrows the candidates of eff to the targets it applies to.
// List selectors return every candidate. Selectors needing a choice
// require ctx.TargetID to name one of the candidates; the random selector
// picks with ctx.RandomDraw and yields nothing when the pool is empty.
func (r *Resolver) Resolve(s *state.GameState, eff cards.Effect, ctx Context) ([]Target, error) {
	candidates := r.Candidates(s, eff, ctx)
	if !eff.Selector.Singular() {
		return candidates, nil
	}

	if eff.Selector == cards.SelectorRandom {
		if len(candidates) == 0 {
			return nil, nil
		}
		return []Target{candidates[Pick(ctx.RandomDraw, len(candidates))]}, nil
	}

	if ctx.TargetID == "" {
		return nil, rules.Violatef(rules.ReasonInvalidTarget, "%s effect requires a target", eff.Selector)
	}
	for _, c := range candidates {
		if c.InstanceID == ctx.TargetID {
			return []Target{c}, nil
		}
	}
	return nil, rules.Violatef(rules.ReasonInvalidTarget, "%s is not a legal %s", ctx.TargetID, eff.Selector)
}

// ValidateChoice checks an explicit target against every effect of the
// ability that needs one, without resolving anything.
func (r *Resolver) ValidateChoice(s *state.GameState, ability cards.AbilityDefinition, ctx Context) error {
	for _, eff := range ability.Effects {
		if !eff.Selector.NeedsChoice() {
			continue
		}
		if _, err := r.Resolve(s, eff, ctx); err != nil {
			return err
		}
	}
	return nil
}

// Pick maps an external random draw onto [0, n).
func Pick(draw, n int) int {
	if n <= 0 {
		return 0
	}
	i := draw % n
	if i < 0 {
		i += n
	}
	return i
}
