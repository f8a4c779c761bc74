// Package testkit holds a small, fixed card set shared by tests across
// packages. It mirrors data/cards.yaml closely enough that tests read like
// real games.
package testkit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biomasters/biomasters-server-go/internal/game/cards"
	"github.com/biomasters/biomasters-server-go/internal/game/modifiers"
)

// Card ids.
const (
	Home             = 1
	OakTree          = 2
	KelpForest       = 3
	FieldRabbit      = 4
	RedFox           = 5
	MycenaFungus     = 6
	Earthworm        = 7
	VentBacteria     = 8
	MycorrhizalFungi = 9
	DeerTick         = 10
	Raccoon          = 11
	RedTailedHawk    = 12
	Caterpillar      = 13
	MonarchButterfly = 14
	Duckweed         = 15
	GrayWolf         = 16
	AnemoneShrimp    = 17
	FreshwaterLeech  = 18
)

// Ability ids.
const (
	AbilityGraze            = 1
	AbilityHunt             = 2
	AbilityNutrientExchange = 3
	AbilityParasiticDrain   = 4
	AbilityDecompose        = 5
	AbilityScatter          = 6
	AbilityTidalBloom       = 7
	AbilityMolt             = 8
	AbilityGrowth           = 9
)

// Keyword ids.
const (
	KeywordOpportunist   = 1
	KeywordMetamorphosis = 2
	KeywordNocturnal     = 3
)

// Keywords is the keyword-name table.
func Keywords() map[int]string {
	return map[int]string{
		KeywordOpportunist:   cards.KeywordOpportunist,
		KeywordMetamorphosis: cards.KeywordMetamorphosis,
		KeywordNocturnal:     "NOCTURNAL",
	}
}

// Abilities is the ability table.
func Abilities() []cards.AbilityDefinition {
	return []cards.AbilityDefinition{
		{ID: AbilityGraze, Name: "Graze", Trigger: cards.TriggerOnActivate, Effects: []cards.Effect{
			{Selector: cards.SelectorAdjacentTarget, Action: cards.ActionExhaust, Filter: cards.Filter{Categories: []cards.TrophicCategory{cards.CategoryProducer}}},
			{Selector: cards.SelectorSelf, Action: cards.ActionGainResource, Magnitude: 1},
		}},
		{ID: AbilityHunt, Name: "Hunt", Trigger: cards.TriggerOnActivate, Effects: []cards.Effect{
			{Selector: cards.SelectorAdjacentTarget, Action: cards.ActionDestroy, Filter: cards.Filter{Levels: []int{2}}},
			{Selector: cards.SelectorSelf, Action: cards.ActionGainVP, Magnitude: 1},
		}},
		{ID: AbilityNutrientExchange, Name: "Nutrient Exchange", Trigger: cards.TriggerOnEnterPlay, Effects: []cards.Effect{
			{Selector: cards.SelectorHost, Action: cards.ActionApplyModifier, Modifier: modifiers.KindVictoryPoints, Magnitude: 1},
		}},
		{ID: AbilityParasiticDrain, Name: "Parasitic Drain", Trigger: cards.TriggerPersistent, Effects: []cards.Effect{
			{Selector: cards.SelectorHost, Action: cards.ActionSuppressReady},
		}},
		{ID: AbilityDecompose, Name: "Decompose", Trigger: cards.TriggerOnActivate, Effects: []cards.Effect{
			{Selector: cards.SelectorDetritus, Action: cards.ActionToScorePile},
		}},
		{ID: AbilityScatter, Name: "Scatter", Trigger: cards.TriggerOnActivate, Effects: []cards.Effect{
			{Selector: cards.SelectorRandom, Action: cards.ActionToHand, Filter: cards.Filter{Levels: []int{2}}},
		}},
		{ID: AbilityTidalBloom, Name: "Tidal Bloom", Trigger: cards.TriggerTurnStart, Effects: []cards.Effect{
			{Selector: cards.SelectorSelf, Action: cards.ActionGainResource, Magnitude: 1},
		}},
		{ID: AbilityMolt, Name: "Molt", Trigger: cards.TriggerOnLeavePlay, Effects: []cards.Effect{
			{Selector: cards.SelectorSelf, Action: cards.ActionDraw, Magnitude: 1},
		}},
		{ID: AbilityGrowth, Name: "Growth", Trigger: cards.TriggerOnActivate, Effects: []cards.Effect{
			{Selector: cards.SelectorSelf, Action: cards.ActionApplyModifier, Modifier: modifiers.KindTrophicShift, Magnitude: 1, Duration: 1},
		}},
	}
}

// Cards is the card table.
func Cards() []cards.CardDefinition {
	return []cards.CardDefinition{
		{ID: Home, Name: "HOME", TrophicLevel: 0, Category: cards.CategoryHome, Domain: cards.DomainHome},
		{ID: OakTree, Name: "Oak Tree", TrophicLevel: 1, Category: cards.CategoryProducer, Domain: cards.DomainTerrestrial, VictoryPoints: 1},
		{ID: KelpForest, Name: "Kelp Forest", TrophicLevel: 1, Category: cards.CategoryProducer, Domain: cards.DomainMarine,
			Abilities: []int{AbilityTidalBloom}, VictoryPoints: 1},
		{ID: FieldRabbit, Name: "Field Rabbit", TrophicLevel: 2, Category: cards.CategoryHerbivore, Domain: cards.DomainTerrestrial,
			Cost: cards.Cost{Energy: 1}, Abilities: []int{AbilityGraze}, VictoryPoints: 1},
		{ID: RedFox, Name: "Red Fox", TrophicLevel: 3, Category: cards.CategoryCarnivore, Domain: cards.DomainTerrestrial,
			Cost: cards.Cost{Energy: 2}, Keywords: []int{KeywordNocturnal}, Abilities: []int{AbilityHunt}, VictoryPoints: 2},
		{ID: MycenaFungus, Name: "Mycena Fungus", TrophicLevel: -1, Category: cards.CategorySaprotroph, Domain: cards.DomainTerrestrial,
			Abilities: []int{AbilityDecompose}, VictoryPoints: 1},
		{ID: Earthworm, Name: "Earthworm", TrophicLevel: -2, Category: cards.CategoryDetritivore, Domain: cards.DomainTerrestrial, VictoryPoints: 1},
		{ID: VentBacteria, Name: "Vent Bacteria", TrophicLevel: 1, Category: cards.CategoryChemoautotroph, Domain: cards.DomainMarine, VictoryPoints: 1},
		{ID: MycorrhizalFungi, Name: "Mycorrhizal Fungi", TrophicLevel: 0, Category: cards.CategoryMutualist, Domain: cards.DomainTerrestrial,
			Abilities: []int{AbilityNutrientExchange}},
		{ID: DeerTick, Name: "Deer Tick", TrophicLevel: 0, Category: cards.CategoryParasite, Domain: cards.DomainTerrestrial,
			Abilities: []int{AbilityParasiticDrain}},
		{ID: Raccoon, Name: "Raccoon", TrophicLevel: 3, Category: cards.CategoryOmnivore, Domain: cards.DomainTerrestrial,
			Cost: cards.Cost{Energy: 1}, Abilities: []int{AbilityGrowth}, VictoryPoints: 2},
		{ID: RedTailedHawk, Name: "Red-tailed Hawk", TrophicLevel: 4, Category: cards.CategoryCarnivore, Domain: cards.DomainTerrestrial,
			Cost: cards.Cost{Energy: 2}, Keywords: []int{KeywordOpportunist}, Abilities: []int{AbilityScatter}, VictoryPoints: 3},
		{ID: Caterpillar, Name: "Caterpillar", TrophicLevel: 2, Category: cards.CategoryHerbivore, Domain: cards.DomainTerrestrial,
			Keywords: []int{KeywordMetamorphosis}, Abilities: []int{AbilityMolt}, VictoryPoints: 1},
		{ID: MonarchButterfly, Name: "Monarch Butterfly", TrophicLevel: 2, Category: cards.CategoryHerbivore, Domain: cards.DomainTerrestrial,
			Cost: cards.Cost{Energy: 1}, Keywords: []int{KeywordMetamorphosis}, VictoryPoints: 3},
		{ID: Duckweed, Name: "Duckweed", TrophicLevel: 1, Category: cards.CategoryProducer, Domain: cards.DomainFreshwater, VictoryPoints: 1},
		{ID: GrayWolf, Name: "Gray Wolf", TrophicLevel: 4, Category: cards.CategoryCarnivore, Domain: cards.DomainTerrestrial,
			Cost: cards.Cost{Energy: 2, Requirements: []cards.CostRequirement{{Category: cards.CategoryCarnivore, Count: 1}}}, VictoryPoints: 4},
		{ID: AnemoneShrimp, Name: "Anemone Shrimp", TrophicLevel: 0, Category: cards.CategoryMutualist, Domain: cards.DomainMarine},
		{ID: FreshwaterLeech, Name: "Freshwater Leech", TrophicLevel: 0, Category: cards.CategoryParasite, Domain: cards.DomainFreshwater},
	}
}

// Tables builds the shared tables, failing tb on error.
func Tables(tb testing.TB) *cards.Tables {
	tb.Helper()
	t, err := cards.NewTables(Cards(), Abilities(), Keywords())
	require.NoError(tb, err)
	return t
}
