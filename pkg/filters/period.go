package filters

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"loltools/pkg/apierrors"
)

// Bounds used when a range side is left open.
const (
	DefaultMin = -1
	DefaultMax = 9999999
)

// Period is either a inclusive numeric range or a set of accepted values.
type Period struct {
	Min    float64
	Max    float64
	Values []string
}

// Range creates a numeric period, both bounds included.
func Range(min, max float64) Period {
	return Period{Min: min, Max: max}
}

// Values creates a period accepting only the given values.
func Values(values ...string) Period {
	return Period{Values: values}
}

// DefaultPeriod accepts every non negative count.
func DefaultPeriod() Period {
	return Range(DefaultMin, DefaultMax)
}

// IsSet reports if the period is a set of values instead of a range.
func (p Period) IsSet() bool {
	return len(p.Values) > 0
}

// Contains reports if the value is in the period.
// A range only accepts numbers, a set compares the printed value.
func (p Period) Contains(value any) (bool, error) {
	if value == nil {
		return false, nil
	}

	if p.IsSet() {
		return slices.Contains(p.Values, fmt.Sprint(value)), nil
	}

	number, ok := toFloat(value)
	if !ok {
		return false, fmt.Errorf("value %v is not numeric", value)
	}
	return number >= p.Min && number <= p.Max, nil
}

func (p Period) String() string {
	if p.IsSet() {
		return strings.Join(p.Values, ",")
	}
	return formatFloat(p.Min) + ":" + formatFloat(p.Max)
}

// Condition keeps the rows whose column is in the period, or out of it when inverted.
type Condition struct {
	Column  string
	Period  Period
	Inverse bool
}

func (c Condition) String() string {
	prefix := ""
	if c.Inverse {
		prefix = "!"
	}
	return prefix + c.Column + "=" + c.Period.String()
}

// Mask returns, for each row, if it passes every condition.
// A row missing a condition column is a error.
func Mask(rows []map[string]any, conditions []Condition) ([]bool, error) {
	mask := make([]bool, len(rows))
	for i := range mask {
		mask[i] = true
	}

	for _, condition := range conditions {
		for i, row := range rows {
			value, exists := row[condition.Column]
			if !exists {
				return nil, apierrors.InvalidArgument("unknown column %s", condition.Column)
			}

			contains, err := condition.Period.Contains(value)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", condition.Column, err)
			}

			mask[i] = mask[i] && contains != condition.Inverse
		}
	}

	return mask, nil
}

// Apply returns only the rows passing every condition, in the same order.
func Apply(rows []map[string]any, conditions []Condition) ([]map[string]any, error) {
	mask, err := Mask(rows, conditions)
	if err != nil {
		return nil, err
	}

	filtered := make([]map[string]any, 0, len(rows))
	for i, row := range rows {
		if mask[i] {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// ParseCondition reads a condition like "wins=10:100", "tier=GOLD,PLATINUM" or "!veteran=true".
// Open range sides take the default bounds, e.g. "leaguePoints=50:".
func ParseCondition(raw string) (Condition, error) {
	raw = strings.TrimSpace(raw)

	var condition Condition
	if strings.HasPrefix(raw, "!") {
		condition.Inverse = true
		raw = raw[1:]
	}

	column, period, found := strings.Cut(raw, "=")
	column = strings.TrimSpace(column)
	if !found || column == "" || strings.TrimSpace(period) == "" {
		return Condition{}, apierrors.InvalidArgument("filter must be {column}={min}:{max} or {column}={value},{value}, got %q", raw)
	}
	condition.Column = column

	if minRaw, maxRaw, isRange := strings.Cut(period, ":"); isRange {
		min, err := parseBound(minRaw, DefaultMin)
		if err != nil {
			return Condition{}, err
		}
		max, err := parseBound(maxRaw, DefaultMax)
		if err != nil {
			return Condition{}, err
		}
		if min > max {
			return Condition{}, apierrors.InvalidArgument("filter %s has min greater than max", column)
		}
		condition.Period = Range(min, max)
		return condition, nil
	}

	var values []string
	for _, value := range strings.Split(period, ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}
	if len(values) == 0 {
		return Condition{}, apierrors.InvalidArgument("filter %s has no values", column)
	}
	condition.Period = Values(values...)

	return condition, nil
}

// Conditions is a repeatable flag value.
type Conditions []Condition

func (c *Conditions) String() string {
	parts := make([]string, len(*c))
	for i, condition := range *c {
		parts[i] = condition.String()
	}
	return strings.Join(parts, " ")
}

// Set parses and appends a condition.
func (c *Conditions) Set(raw string) error {
	condition, err := ParseCondition(raw)
	if err != nil {
		return err
	}
	*c = append(*c, condition)
	return nil
}

func parseBound(raw string, defaultValue float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) {
		return 0, apierrors.InvalidArgument("range bound %q is not a number", raw)
	}
	return value, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
