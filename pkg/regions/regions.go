package regions

import (
	"strings"

	"loltools/pkg/apierrors"
)

// Simple package containing the region list and the aliases accepted by the tools.
// Create the types for clarity.
type (
	MainRegion string
	SubRegion  string
)

// List of regions.
var RegionList = map[MainRegion][]SubRegion{
	"AMERICAS": {"BR1", "LA1", "LA2", "NA1"},
	"EUROPE":   {"EUN1", "EUW1", "TR1", "ME1", "RU"},
	"ASIA":     {"KR", "JP1"},
	"SEA":      {"OC1", "SG2", "TW2", "VN2"},
}

// Short names used by players and by the wiki, mapped to the platform code.
var subRegionAliases = map[string]SubRegion{
	"NA":   "NA1",
	"EUW":  "EUW1",
	"EUNE": "EUN1",
	"EUN":  "EUN1",
	"JP":   "JP1",
	"OCE":  "OC1",
	"OC":   "OC1",
	"BR":   "BR1",
	"LAN":  "LA1",
	"LAS":  "LA2",
	"TR":   "TR1",
	"ME":   "ME1",
	"SG":   "SG2",
	"TW":   "TW2",
	"VN":   "VN2",
}

// Built once from the region list and the aliases, never mutated afterwards.
var subRegionLookup = buildSubRegionLookup()

func buildSubRegionLookup() map[string]SubRegion {
	lookup := make(map[string]SubRegion)
	for _, subRegions := range RegionList {
		for _, subRegion := range subRegions {
			lookup[string(subRegion)] = subRegion
		}
	}
	for alias, subRegion := range subRegionAliases {
		lookup[alias] = subRegion
	}
	return lookup
}

// ParseSubRegion resolves a case insensitive region name to its platform code.
func ParseSubRegion(region string) (SubRegion, error) {
	subRegion, exists := subRegionLookup[strings.ToUpper(strings.TrimSpace(region))]
	if !exists {
		return "", apierrors.InvalidArgument("region %s not found", region)
	}
	return subRegion, nil
}

// Host returns the value used on the API hostname, e.g. "euw1".
func (s SubRegion) Host() string {
	return strings.ToLower(string(s))
}
