package rules

import "github.com/trophicgame/trophic-server-go/internal/game/cards"

// compatibleDomains is the symmetric Domain Compatibility Matrix. The
// amphibious variants and euryhaline widen a card's compatible set; they do
// not bypass the matrix.
var compatibleDomains = map[cards.Domain]map[cards.Domain]bool{
	cards.DomainTerrestrial: {
		cards.DomainTerrestrial: true,
	},
	cards.DomainFreshwater: {
		cards.DomainFreshwater: true,
	},
	cards.DomainMarine: {
		cards.DomainMarine: true,
	},
	cards.DomainAmphibiousFreshwater: {
		cards.DomainTerrestrial: true,
		cards.DomainFreshwater:  true,
	},
	cards.DomainAmphibiousMarine: {
		cards.DomainTerrestrial: true,
		cards.DomainMarine:      true,
	},
	cards.DomainEuryhaline: {
		cards.DomainFreshwater: true,
		cards.DomainMarine:     true,
	},
}

// DomainCompatible reports whether two habitat domains are compatible per
// the matrix. HOME is a universal anchor, compatible with everything.
func DomainCompatible(a, b cards.Domain) bool {
	if a == cards.DomainHome || b == cards.DomainHome {
		return true
	}
	if compatibleDomains[a][b] {
		return true
	}
	return compatibleDomains[b][a]
}

// IsBridgeDomain reports whether a domain can act as an amphibious bridge
// for effects that reach through it.
func IsBridgeDomain(d cards.Domain) bool {
	switch d {
	case cards.DomainAmphibiousFreshwater, cards.DomainAmphibiousMarine, cards.DomainEuryhaline:
		return true
	}
	return false
}
