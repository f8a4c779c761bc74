package rules

import "github.com/biomasters/biomasters-server-go/internal/game/cards"

// compatiblePairs lists which habitats may border each other. The table is
// closed under symmetry in init; HOME is handled separately.
var compatiblePairs = [][2]cards.Domain{
	{cards.DomainTerrestrial, cards.DomainTerrestrial},
	{cards.DomainFreshwater, cards.DomainFreshwater},
	{cards.DomainMarine, cards.DomainMarine},
	{cards.DomainAmphibiousFreshwater, cards.DomainAmphibiousFreshwater},
	{cards.DomainAmphibiousMarine, cards.DomainAmphibiousMarine},
	{cards.DomainEuryhaline, cards.DomainEuryhaline},
	{cards.DomainTerrestrial, cards.DomainAmphibiousFreshwater},
	{cards.DomainTerrestrial, cards.DomainAmphibiousMarine},
	{cards.DomainFreshwater, cards.DomainAmphibiousFreshwater},
	{cards.DomainFreshwater, cards.DomainEuryhaline},
	{cards.DomainMarine, cards.DomainAmphibiousMarine},
	{cards.DomainMarine, cards.DomainEuryhaline},
	{cards.DomainAmphibiousFreshwater, cards.DomainAmphibiousMarine},
	{cards.DomainAmphibiousFreshwater, cards.DomainEuryhaline},
	{cards.DomainAmphibiousMarine, cards.DomainEuryhaline},
}

// domainIncludes lists, for composite habitats, the simple habitats they
// span. A host "includes" an attachment's domain when listed here.
var domainIncludes = map[cards.Domain][]cards.Domain{
	cards.DomainAmphibiousFreshwater: {cards.DomainTerrestrial, cards.DomainFreshwater},
	cards.DomainAmphibiousMarine:     {cards.DomainTerrestrial, cards.DomainMarine},
	cards.DomainEuryhaline:           {cards.DomainFreshwater, cards.DomainMarine},
}

var compatibility = map[cards.Domain]map[cards.Domain]bool{}

func init() {
	for _, pair := range compatiblePairs {
		link(pair[0], pair[1])
		link(pair[1], pair[0])
	}
}

func link(a, b cards.Domain) {
	if compatibility[a] == nil {
		compatibility[a] = map[cards.Domain]bool{}
	}
	compatibility[a][b] = true
}

// DomainsCompatible reports whether cards of domains a and b may be
// neighbours. The relation is symmetric and HOME is compatible with all.
func DomainsCompatible(a, b cards.Domain) bool {
	if a == cards.DomainHome || b == cards.DomainHome {
		return true
	}
	return compatibility[a][b]
}

// DomainIncludes reports whether a host of domain host can carry an
// attachment of domain d.
func DomainIncludes(host, d cards.Domain) bool {
	if host == d {
		return true
	}
	for _, inc := range domainIncludes[host] {
		if inc == d {
			return true
		}
	}
	return false
}
