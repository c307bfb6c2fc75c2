package queuevalues

import (
	"strings"

	"loltools/pkg/apierrors"
)

// Canonical queue values used on the league endpoints.
const (
	RankedSolo   = "RANKED_SOLO_5x5"
	RankedFlex   = "RANKED_FLEX_SR"
	RankedFlexTT = "RANKED_FLEX_TT"
)

// Every accepted spelling, lower cased.
var queueAliases = map[string]string{
	"soloq":           RankedSolo,
	"solo queue":      RankedSolo,
	"solo":            RankedSolo,
	"ranked_solo_5x5": RankedSolo,
	"flexq":           RankedFlex,
	"flex queue":      RankedFlex,
	"flex":            RankedFlex,
	"ranked_flex_sr":  RankedFlex,
	"tft":             RankedFlexTT,
	"tt":              RankedFlexTT,
	"ranked_flex_tt":  RankedFlexTT,
}

// ParseQueue resolves a case insensitive queue alias to the canonical queue value.
func ParseQueue(queue string) (string, error) {
	value, exists := queueAliases[strings.ToLower(strings.TrimSpace(queue))]
	if !exists {
		return "", apierrors.InvalidArgument("queue %s not found", queue)
	}
	return value, nil
}
