package cards

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known keyword names the rules engine looks for in the keyword table.
const (
	KeywordOpportunist   = "OPPORTUNIST"
	KeywordMetamorphosis = "METAMORPHOSIS"
)

// Tables bundles the read-only lookup tables a game is constructed with.
// Nothing mutates a Tables value after NewTables returns.
type Tables struct {
	cards     map[int]CardDefinition
	abilities map[int]AbilityDefinition
	keywords  map[int]string
	homeID    int
}

// NewTables validates and indexes the supplied definitions.
func NewTables(cardDefs []CardDefinition, abilityDefs []AbilityDefinition, keywords map[int]string) (*Tables, error) {
	t := &Tables{
		cards:     make(map[int]CardDefinition, len(cardDefs)),
		abilities: make(map[int]AbilityDefinition, len(abilityDefs)),
		keywords:  make(map[int]string, len(keywords)),
	}

	for id, name := range keywords {
		t.keywords[id] = strings.ToUpper(strings.TrimSpace(name))
	}

	for _, a := range abilityDefs {
		if err := a.validate(); err != nil {
			return nil, err
		}
		if _, dup := t.abilities[a.ID]; dup {
			return nil, fmt.Errorf("duplicate ability id %d", a.ID)
		}
		t.abilities[a.ID] = a
	}

	for _, c := range cardDefs {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, dup := t.cards[c.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %d", c.ID)
		}
		for _, aid := range c.Abilities {
			if _, ok := t.abilities[aid]; !ok {
				return nil, fmt.Errorf("card %d references unknown ability %d", c.ID, aid)
			}
		}
		for _, kid := range c.Keywords {
			if _, ok := t.keywords[kid]; !ok {
				return nil, fmt.Errorf("card %d references unknown keyword %d", c.ID, kid)
			}
		}
		t.cards[c.ID] = c
		if c.Category == CategoryHome && (t.homeID == 0 || c.ID < t.homeID) {
			t.homeID = c.ID
		}
	}

	if t.homeID == 0 {
		return nil, fmt.Errorf("card table has no %s card", CategoryHome)
	}
	return t, nil
}

// Card looks up a card definition.
func (t *Tables) Card(id int) (CardDefinition, bool) {
	c, ok := t.cards[id]
	return c, ok
}

// Ability looks up an ability definition.
func (t *Tables) Ability(id int) (AbilityDefinition, bool) {
	a, ok := t.abilities[id]
	return a, ok
}

// KeywordName returns the upper-cased keyword name for id.
func (t *Tables) KeywordName(id int) (string, bool) {
	k, ok := t.keywords[id]
	return k, ok
}

// HomeCardID is the definition used for every player's HOME instance.
func (t *Tables) HomeCardID() int {
	return t.homeID
}

// HasNamedKeyword reports whether def carries a keyword with the given name.
func (t *Tables) HasNamedKeyword(def CardDefinition, name string) bool {
	name = strings.ToUpper(name)
	for _, kid := range def.Keywords {
		if t.keywords[kid] == name {
			return true
		}
	}
	return false
}

// CardIDs returns every card id in ascending order.
func (t *Tables) CardIDs() []int {
	ids := make([]int, 0, len(t.cards))
	for id := range t.cards {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// File is the on-disk layout of a static data file.
type File struct {
	Keywords  map[int]string      `yaml:"keywords"`
	Abilities []AbilityDefinition `yaml:"abilities"`
	Cards     []CardDefinition    `yaml:"cards"`
}

// Tables validates the file's contents and indexes them.
func (f File) Tables() (*Tables, error) {
	return NewTables(f.Cards, f.Abilities, f.Keywords)
}

// ParseFile decodes a YAML document without validating it.
func ParseFile(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("decode card tables: %w", err)
	}
	return f, nil
}

// ParseTables decodes a YAML document into validated tables.
func ParseTables(data []byte) (*Tables, error) {
	f, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	return f.Tables()
}

// LoadTables reads static data from a YAML file.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card tables: %w", err)
	}
	return ParseTables(data)
}
