package tiervalues

import (
	"slices"
	"strings"

	"loltools/pkg/apierrors"
)

// Tier is a coarse ranked band, e.g. DIAMOND.
type Tier string

// Division is the band inside a tier, from IV (lowest) to I.
type Division string

const (
	Iron        Tier = "IRON"
	Bronze      Tier = "BRONZE"
	Silver      Tier = "SILVER"
	Gold        Tier = "GOLD"
	Platinum    Tier = "PLATINUM"
	Emerald     Tier = "EMERALD"
	Diamond     Tier = "DIAMOND"
	Master      Tier = "MASTER"
	Grandmaster Tier = "GRANDMASTER"
	Challenger  Tier = "CHALLENGER"
)

const (
	DivisionI   Division = "I"
	DivisionII  Division = "II"
	DivisionIII Division = "III"
	DivisionIV  Division = "IV"
)

var tierValues = map[string]int{
	"IRON":        0,
	"BRONZE":      10000,
	"SILVER":      20000,
	"GOLD":        30000,
	"PLATINUM":    40000,
	"EMERALD":     50000,
	"DIAMOND":     60000,
	"MASTER":      70000,
	"GRANDMASTER": 80000,
	"CHALLENGER":  90000,
}

var rankValues = map[string]int{
	"IV":  0,
	"III": 2500,
	"II":  5000,
	"I":   7500,
}

// Tier letters accepted on the two character rank code.
// Only the tiers that have divisions can be paginated this way.
var tierAliases = map[byte]Tier{
	'i': Iron,
	'b': Bronze,
	's': Silver,
	'g': Gold,
	'p': Platinum,
	'e': Emerald,
	'd': Diamond,
}

var divisionAliases = map[byte]Division{
	'1': DivisionI,
	'2': DivisionII,
	'3': DivisionIII,
	'4': DivisionIV,
}

var highElos = []string{"MASTER", "GRANDMASTER", "CHALLENGER"}

// ParseRank decomposes a code like "d1" into DIAMOND and I.
func ParseRank(code string) (Tier, Division, error) {
	if len(code) != 2 {
		return "", "", apierrors.InvalidArgument("rank must be 2 characters long, {tier}{division}, got %q", code)
	}

	tier, exists := tierAliases[strings.ToLower(code[:1])[0]]
	if !exists {
		return "", "", apierrors.InvalidArgument("tier %c not found", code[0])
	}

	division, exists := divisionAliases[code[1]]
	if !exists {
		return "", "", apierrors.InvalidArgument("division %c not found", code[1])
	}

	return tier, division, nil
}

// Calculate numeric rank from tier and division.
func CalculateRank(tier string, rank string, lp int) int {
	// Normalize the tier entry.
	tier = strings.ToUpper(tier)
	tier = strings.TrimSpace(tier)

	baseValue, exists := tierValues[tier]
	if !exists {
		return 0 // Unknown tier
	}

	// Normalize the rank entry.
	rank = strings.ToUpper(rank)
	rank = strings.TrimSpace(rank)

	divisionValue, exists := rankValues[rank]
	if !exists {
		return baseValue
	}

	// Don't add the division value if it's a highelo.
	if slices.Contains(highElos, tier) {
		divisionValue = 0
	}

	// Return the sum of the ratings and lp.
	return baseValue + divisionValue + lp
}
