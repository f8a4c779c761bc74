package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/biomasters/biomasters-server-go/internal/game/cards"
)

const columnCount = 10

// readCards parses every data row. Rows that cannot be parsed are
// reported and skipped; they do not stop the import.
func readCards(r io.Reader) ([]cards.CardDefinition, []error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []error{fmt.Errorf("read CSV: %w", err)}
	}
	if len(records) < 2 {
		return nil, []error{fmt.Errorf("CSV file is empty or has no data rows")}
	}

	var (
		defs []cards.CardDefinition
		errs []error
	)
	for i, record := range records[1:] { // skip header
		def, err := parseRow(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+2, err))
			continue
		}
		defs = append(defs, def)
	}
	return defs, errs
}

func parseRow(record []string) (cards.CardDefinition, error) {
	if len(record) < columnCount {
		return cards.CardDefinition{}, fmt.Errorf("insufficient columns: %d", len(record))
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	var (
		def cards.CardDefinition
		err error
	)
	if def.ID, err = strconv.Atoi(record[0]); err != nil {
		return def, fmt.Errorf("id: %w", err)
	}
	def.Name = record[1]
	if def.TrophicLevel, err = strconv.Atoi(record[2]); err != nil {
		return def, fmt.Errorf("trophic_level: %w", err)
	}
	def.Category = cards.TrophicCategory(strings.ToLower(record[3]))
	def.Domain = cards.Domain(strings.ToLower(record[4]))
	if def.Cost.Energy, err = atoiOrZero(record[5]); err != nil {
		return def, fmt.Errorf("energy_cost: %w", err)
	}
	if def.Cost.Requirements, err = parseRequirements(record[6]); err != nil {
		return def, fmt.Errorf("requirements: %w", err)
	}
	if def.Keywords, err = parseIDs(record[7]); err != nil {
		return def, fmt.Errorf("keywords: %w", err)
	}
	if def.Abilities, err = parseIDs(record[8]); err != nil {
		return def, fmt.Errorf("abilities: %w", err)
	}
	if def.VictoryPoints, err = atoiOrZero(record[9]); err != nil {
		return def, fmt.Errorf("victory_points: %w", err)
	}
	return def, nil
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseIDs(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(s, ";") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseRequirements(s string) ([]cards.CostRequirement, error) {
	if s == "" {
		return nil, nil
	}
	var reqs []cards.CostRequirement
	for _, part := range strings.Split(s, ";") {
		category, count, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("expected category:count, got %q", part)
		}
		n, err := strconv.Atoi(count)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, cards.CostRequirement{Category: cards.TrophicCategory(strings.ToLower(category)), Count: n})
	}
	return reqs, nil
}

// merge overlays rows onto base by card id and returns the result sorted
// by id.
func merge(base cards.File, rows []cards.CardDefinition) (merged cards.File, added, replaced int) {
	byID := make(map[int]cards.CardDefinition, len(base.Cards)+len(rows))
	for _, c := range base.Cards {
		byID[c.ID] = c
	}
	for _, c := range rows {
		if _, ok := byID[c.ID]; ok {
			replaced++
		} else {
			added++
		}
		byID[c.ID] = c
	}

	merged = base
	merged.Cards = make([]cards.CardDefinition, 0, len(byID))
	for _, c := range byID {
		merged.Cards = append(merged.Cards, c)
	}
	sort.Slice(merged.Cards, func(i, j int) bool { return merged.Cards[i].ID < merged.Cards[j].ID })
	return merged, added, replaced
}
