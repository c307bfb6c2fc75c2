package tiervalues

import (
	"testing"

	"loltools/pkg/apierrors"

	"github.com/stretchr/testify/assert"
)

func TestParseRank(t *testing.T) {
	tests := []struct {
		code     string
		tier     Tier
		division Division
	}{
		{"d1", Diamond, DivisionI},
		{"D1", Diamond, DivisionI},
		{"g4", Gold, DivisionIV},
		{"e2", Emerald, DivisionII},
		{"i3", Iron, DivisionIII},
		{"B1", Bronze, DivisionI},
		{"s2", Silver, DivisionII},
		{"p3", Platinum, DivisionIII},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			tier, division, err := ParseRank(tt.code)
			assert.NoError(t, err)
			assert.Equal(t, tt.tier, tier)
			assert.Equal(t, tt.division, division)
		})
	}
}

func TestParseRankInvalid(t *testing.T) {
	for _, code := range []string{"xx", "d5", "d0", "g", "g44", "", "m1", "1d"} {
		t.Run(code, func(t *testing.T) {
			_, _, err := ParseRank(code)
			assert.ErrorIs(t, err, apierrors.ErrInvalidArgument)
		})
	}
}

func TestCalculateRank(t *testing.T) {
	tests := []struct {
		name     string
		tier     string
		rank     string
		lp       int
		expected int
	}{
		{name: "gold four", tier: "GOLD", rank: "IV", lp: 50, expected: 30050},
		{name: "diamond one", tier: "diamond", rank: "i", lp: 99, expected: 67599},
		{name: "high elo ignores division", tier: "MASTER", rank: "I", lp: 300, expected: 70300},
		{name: "unknown tier", tier: "WOOD", rank: "I", lp: 10, expected: 0},
		{name: "unknown rank", tier: "SILVER", rank: "V", lp: 10, expected: 20000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateRank(tt.tier, tt.rank, tt.lp))
		})
	}
}
