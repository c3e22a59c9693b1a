package schema

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts is the set of layouts attempted when classifying a CSV
// cell as a Timestamp. Ordered most-specific first: try a handful of
// common layouts rather than a single strict one, since real-world
// exports mix RFC3339, space-separated, and date-only forms.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// classifyCSVCell infers the CellType of a non-empty, already-trimmed CSV
// cell value, trying Boolean, then WholeNumber, then FloatingPoint, then
// Timestamp, and finally falling back to Text.
func classifyCSVCell(trimmed string) CellType {
	if isBooleanString(trimmed) {
		return Boolean
	}
	if _, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return WholeNumber
	}
	if isFloatString(trimmed) {
		return FloatingPoint
	}
	if _, ok := parseTimestamp(trimmed); ok {
		return Timestamp
	}
	return Text
}

func isBooleanString(s string) bool {
	lower := strings.ToLower(s)
	return lower == "true" || lower == "false"
}

func isFloatString(s string) bool {
	cleaned := strings.ReplaceAll(s, ",", "")
	switch cleaned {
	case "NaN", "Infinity", "-Infinity", "+Infinity":
		return true
	}
	_, err := strconv.ParseFloat(cleaned, 64)
	return err == nil
}

func parseTimestamp(s string) (time.Time, bool) {
	return ParseTimestamp(s)
}

// ParseTimestamp tries every layout this package recognizes as a
// Timestamp cell, in order, and reports the first successful parse.
// Exported so cell formatting (in the morph package) can round-trip a raw
// value through the same layouts used for type inference.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// classifyJSONValue infers the CellType of a raw JSON value and reports
// whether the value is JSON null (which never changes a column's type but
// marks it nullable).
func classifyJSONValue(raw json.RawMessage) (t CellType, isNull bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return Null, true
	}
	switch trimmed[0] {
	case '"':
		return Text, false
	case '{':
		return JsonObject, false
	case '[':
		return JsonArray, false
	case 't', 'f':
		return Boolean, false
	default:
		if strings.ContainsAny(trimmed, ".eE") {
			return FloatingPoint, false
		}
		if _, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return WholeNumber, false
		}
		// Big integer outside int64 range: big-integer fallback to Text.
		return Text, false
	}
}
