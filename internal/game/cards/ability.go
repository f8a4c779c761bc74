package cards

import (
	"fmt"

	"github.com/biomasters/biomasters-server-go/internal/game/modifiers"
)

// TriggerKind says when an ability fires.
type TriggerKind string

const (
	TriggerOnActivate  TriggerKind = "on_activate"
	TriggerOnEnterPlay TriggerKind = "on_enter_play"
	TriggerOnLeavePlay TriggerKind = "on_leave_play"
	TriggerPersistent  TriggerKind = "persistent"
	TriggerTurnStart   TriggerKind = "turn_start"
	TriggerTurnEnd     TriggerKind = "turn_end"
)

// Selector names how an effect finds its targets.
type Selector string

const (
	SelectorSelf            Selector = "self"
	SelectorAdjacent        Selector = "adjacent"
	SelectorAdjacentTarget  Selector = "adjacent_target"
	SelectorTarget          Selector = "target"
	SelectorRandom          Selector = "random"
	SelectorAll             Selector = "all"
	SelectorAllOwn          Selector = "all_own"
	SelectorAllOpponent     Selector = "all_opponent"
	SelectorSameDomain      Selector = "same_domain"
	SelectorDifferentDomain Selector = "different_domain"
	SelectorDetritus        Selector = "detritus"
	SelectorHand            Selector = "hand"
	SelectorHost            Selector = "host"
)

// Singular reports whether the selector resolves to one chosen target
// rather than every match.
func (s Selector) Singular() bool {
	switch s {
	case SelectorAdjacentTarget, SelectorTarget, SelectorRandom:
		return true
	}
	return false
}

// NeedsChoice reports whether the player supplies the target explicitly.
func (s Selector) NeedsChoice() bool {
	return s == SelectorAdjacentTarget || s == SelectorTarget
}

// ActionKind is the concrete mutation an effect performs on each target.
type ActionKind string

const (
	ActionExhaust        ActionKind = "exhaust"
	ActionReady          ActionKind = "ready"
	ActionDestroy        ActionKind = "destroy"
	ActionRemove         ActionKind = "remove"
	ActionToHand         ActionKind = "to_hand"
	ActionToScorePile    ActionKind = "to_score_pile"
	ActionDiscard        ActionKind = "discard"
	ActionApplyModifier  ActionKind = "apply_modifier"
	ActionRemoveModifier ActionKind = "remove_modifier"
	ActionAttach         ActionKind = "attach"
	ActionDetach         ActionKind = "detach"
	ActionGainResource   ActionKind = "gain_resource"
	ActionLoseResource   ActionKind = "lose_resource"
	ActionGainVP         ActionKind = "gain_vp"
	ActionLoseVP         ActionKind = "lose_vp"
	ActionDraw           ActionKind = "draw"
	ActionSuppressReady  ActionKind = "suppress_ready"
)

var knownActions = map[ActionKind]bool{
	ActionExhaust: true, ActionReady: true, ActionDestroy: true, ActionRemove: true,
	ActionToHand: true, ActionToScorePile: true, ActionDiscard: true,
	ActionApplyModifier: true, ActionRemoveModifier: true, ActionAttach: true, ActionDetach: true,
	ActionGainResource: true, ActionLoseResource: true, ActionGainVP: true,
	ActionLoseVP: true, ActionDraw: true, ActionSuppressReady: true,
}

var knownSelectors = map[Selector]bool{
	SelectorSelf: true, SelectorAdjacent: true, SelectorAdjacentTarget: true,
	SelectorTarget: true, SelectorRandom: true, SelectorAll: true,
	SelectorAllOwn: true, SelectorAllOpponent: true, SelectorSameDomain: true,
	SelectorDifferentDomain: true, SelectorDetritus: true, SelectorHand: true,
	SelectorHost: true,
}

var knownTriggers = map[TriggerKind]bool{
	TriggerOnActivate: true, TriggerOnEnterPlay: true, TriggerOnLeavePlay: true,
	TriggerPersistent: true, TriggerTurnStart: true, TriggerTurnEnd: true,
}

// Filter narrows a selector's candidates. Each non-empty list must match;
// entries within one list are alternatives.
type Filter struct {
	Keywords   []int             `yaml:"keywords" json:"keywords,omitempty"`
	Categories []TrophicCategory `yaml:"categories" json:"categories,omitempty"`
	Levels     []int             `yaml:"levels" json:"levels,omitempty"`
	Domains    []Domain          `yaml:"domains" json:"domains,omitempty"`
}

// IsEmpty reports whether the filter lets everything through.
func (f Filter) IsEmpty() bool {
	return len(f.Keywords) == 0 && len(f.Categories) == 0 && len(f.Levels) == 0 && len(f.Domains) == 0
}

// Matches checks a card definition against the filter. level is the
// effective trophic level of the instance, which modifiers may shift.
func (f Filter) Matches(def CardDefinition, level int) bool {
	if len(f.Keywords) > 0 {
		found := false
		for _, k := range f.Keywords {
			if def.HasKeyword(k) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, def.Category) {
		return false
	}
	if len(f.Levels) > 0 && !containsInt(f.Levels, level) {
		return false
	}
	if len(f.Domains) > 0 && !containsDomain(f.Domains, def.Domain) {
		return false
	}
	return true
}

// Effect is one step of an ability pipeline.
type Effect struct {
	Selector  Selector       `yaml:"selector" json:"selector"`
	Action    ActionKind     `yaml:"action" json:"action"`
	Magnitude int            `yaml:"magnitude" json:"magnitude,omitempty"`
	Modifier  modifiers.Kind `yaml:"modifier" json:"modifier,omitempty"`
	Duration  int            `yaml:"duration" json:"duration,omitempty"`
	Filter    Filter         `yaml:"filter" json:"filter"`
}

// AbilityDefinition is the static data behind a card ability.
type AbilityDefinition struct {
	ID      int         `yaml:"id" json:"id"`
	Name    string      `yaml:"name" json:"name"`
	Trigger TriggerKind `yaml:"trigger" json:"trigger"`
	Effects []Effect    `yaml:"effects" json:"effects"`
}

// NeedsChoice reports whether any effect requires an explicit target.
func (a AbilityDefinition) NeedsChoice() bool {
	for _, eff := range a.Effects {
		if eff.Selector.NeedsChoice() {
			return true
		}
	}
	return false
}

func (a AbilityDefinition) validate() error {
	if a.ID <= 0 {
		return fmt.Errorf("ability %q: id must be positive", a.Name)
	}
	if !knownTriggers[a.Trigger] {
		return fmt.Errorf("ability %d: unknown trigger %q", a.ID, a.Trigger)
	}
	for i, eff := range a.Effects {
		if !knownSelectors[eff.Selector] {
			return fmt.Errorf("ability %d effect %d: unknown selector %q", a.ID, i, eff.Selector)
		}
		if !knownActions[eff.Action] {
			return fmt.Errorf("ability %d effect %d: unknown action %q", a.ID, i, eff.Action)
		}
		if (eff.Action == ActionApplyModifier || eff.Action == ActionRemoveModifier) && eff.Modifier == "" {
			return fmt.Errorf("ability %d effect %d: modifier kind required", a.ID, i)
		}
	}
	return nil
}

func containsCategory(list []TrophicCategory, c TrophicCategory) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

func containsDomain(list []Domain, d Domain) bool {
	for _, v := range list {
		if v == d {
			return true
		}
	}
	return false
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
