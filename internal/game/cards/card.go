package cards

import (
	"fmt"
	"strings"
)

// TrophicCategory is the feeding classification of a card.
type TrophicCategory string

const (
	CategoryProducer       TrophicCategory = "producer"
	CategoryChemoautotroph TrophicCategory = "chemoautotroph"
	CategoryHerbivore      TrophicCategory = "herbivore"
	CategoryOmnivore       TrophicCategory = "omnivore"
	CategoryCarnivore      TrophicCategory = "carnivore"
	CategorySaprotroph     TrophicCategory = "saprotroph"
	CategoryDetritivore    TrophicCategory = "detritivore"
	CategoryParasite       TrophicCategory = "parasite"
	CategoryMutualist      TrophicCategory = "mutualist"
	CategoryHome           TrophicCategory = "home"
)

var knownCategories = map[TrophicCategory]bool{
	CategoryProducer:       true,
	CategoryChemoautotroph: true,
	CategoryHerbivore:      true,
	CategoryOmnivore:       true,
	CategoryCarnivore:      true,
	CategorySaprotroph:     true,
	CategoryDetritivore:    true,
	CategoryParasite:       true,
	CategoryMutualist:      true,
	CategoryHome:           true,
}

// Valid reports whether the category is one the engine understands.
func (c TrophicCategory) Valid() bool {
	return knownCategories[c]
}

// IsAttachment reports whether cards of this category tuck under a host
// instead of occupying their own cell.
func (c TrophicCategory) IsAttachment() bool {
	return c == CategoryParasite || c == CategoryMutualist
}

// IsProducer reports whether the category sits at the base of the chain.
func (c TrophicCategory) IsProducer() bool {
	return c == CategoryProducer || c == CategoryChemoautotroph
}

// Domain is the habitat tag of a card.
type Domain string

const (
	DomainTerrestrial          Domain = "terrestrial"
	DomainFreshwater           Domain = "freshwater"
	DomainMarine               Domain = "marine"
	DomainAmphibiousFreshwater Domain = "amphibious_freshwater"
	DomainAmphibiousMarine     Domain = "amphibious_marine"
	DomainEuryhaline           Domain = "euryhaline"
	DomainHome                 Domain = "home"
)

var knownDomains = map[Domain]bool{
	DomainTerrestrial:          true,
	DomainFreshwater:           true,
	DomainMarine:               true,
	DomainAmphibiousFreshwater: true,
	DomainAmphibiousMarine:     true,
	DomainEuryhaline:           true,
	DomainHome:                 true,
}

// Valid reports whether the domain is one the engine understands.
func (d Domain) Valid() bool {
	return knownDomains[d]
}

// CostRequirement asks for Count ready instances of Category next to the
// target cell, owned by the player paying.
type CostRequirement struct {
	Category TrophicCategory `yaml:"category" json:"category"`
	Count    int             `yaml:"count" json:"count"`
}

// Cost is the price of putting a card into play.
type Cost struct {
	Energy       int               `yaml:"energy" json:"energy"`
	Requirements []CostRequirement `yaml:"requirements" json:"requirements,omitempty"`
}

// IsFree reports whether the cost has no component at all.
func (c Cost) IsFree() bool {
	return c.Energy <= 0 && len(c.Requirements) == 0
}

// CardDefinition is the immutable description of a card.
type CardDefinition struct {
	ID            int             `yaml:"id" json:"id"`
	Name          string          `yaml:"name" json:"name"`
	TrophicLevel  int             `yaml:"trophic_level" json:"trophic_level"`
	Category      TrophicCategory `yaml:"category" json:"category"`
	Domain        Domain          `yaml:"domain" json:"domain"`
	Cost          Cost            `yaml:"cost" json:"cost"`
	Keywords      []int           `yaml:"keywords" json:"keywords,omitempty"`
	Abilities     []int           `yaml:"abilities" json:"abilities,omitempty"`
	VictoryPoints int             `yaml:"victory_points" json:"victory_points"`
}

// HasKeyword reports whether the card carries the keyword id.
func (c CardDefinition) HasKeyword(id int) bool {
	for _, k := range c.Keywords {
		if k == id {
			return true
		}
	}
	return false
}

// HasAbility reports whether the card lists the ability id.
func (c CardDefinition) HasAbility(id int) bool {
	for _, a := range c.Abilities {
		if a == id {
			return true
		}
	}
	return false
}

func (c CardDefinition) validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("card %q: id must be positive", c.Name)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("card %d: name is required", c.ID)
	}
	if !c.Category.Valid() {
		return fmt.Errorf("card %d: unknown trophic category %q", c.ID, c.Category)
	}
	if !c.Domain.Valid() {
		return fmt.Errorf("card %d: unknown domain %q", c.ID, c.Domain)
	}
	if c.Cost.Energy < 0 {
		return fmt.Errorf("card %d: negative energy cost", c.ID)
	}
	for _, req := range c.Cost.Requirements {
		if !req.Category.Valid() || req.Count <= 0 {
			return fmt.Errorf("card %d: invalid cost requirement %+v", c.ID, req)
		}
	}
	return nil
}
