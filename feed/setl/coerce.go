package setl

import (
	"strconv"
	"strings"
	"time"
)

// truthyValues is the vocabulary the feed uses for boolean flags.
var truthyValues = map[string]struct{}{
	"да":   {},
	"yes":  {},
	"true": {},
	"1":    {},
	"y":    {},
}

// timeLayouts are tried in order; the feed mixes full RFC3339 timestamps
// with offset-less datetimes and bare dates between revisions.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDecimal converts a feed number to a float64. The feed switches
// between decimal comma and decimal point depending on the locale of
// whoever exported it, so both are accepted. Returns false for empty or
// non-numeric input.
func parseDecimal(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseInt converts via parseDecimal and truncates toward zero, so
// "12,9" becomes 12.
func parseInt(raw string) (int, bool) {
	v, ok := parseDecimal(raw)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// parseTime accepts ISO-8601 timestamps, including a trailing literal Z.
func parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseBool matches the feed's truthy vocabulary case-insensitively.
// Everything else, including absence, is false.
func parseBool(raw string) bool {
	_, ok := truthyValues[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Pointer-returning variants used when filling the record: absent or
// malformed input stays nil instead of degrading to zero.

func decimalPtr(raw string) *float64 {
	if v, ok := parseDecimal(raw); ok {
		return &v
	}
	return nil
}

func intPtr(raw string) *int {
	if v, ok := parseInt(raw); ok {
		return &v
	}
	return nil
}

func timePtr(raw string) *time.Time {
	if t, ok := parseTime(raw); ok {
		return &t
	}
	return nil
}
