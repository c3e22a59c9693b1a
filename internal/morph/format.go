package morph

import (
	"strconv"
	"strings"

	"github.com/scrapbird/datamorph/internal/schema"
)

// Invalid is the literal string produced when a cast/parse fails at
// display time; it is never an error, since a malformed source cell must
// not stop the UI from rendering the rest of the row.
const Invalid = "<invalid>"

// DefaultTimestampLayout is the display layout used for Timestamp columns
// that carry no ColumnSchema.DisplayFormat override.
const DefaultTimestampLayout = "2006-01-02 15:04:05"

// FormatCell renders raw according to target's formatting rules, using
// DefaultTimestampLayout for Timestamp columns. It is idempotent:
// FormatCell(FormatCell(x, t), t) == FormatCell(x, t), since every
// successful parse is re-formatted to the same canonical text.
func FormatCell(raw string, target schema.CellType) string {
	return FormatCellWithLayout(raw, target, "")
}

// FormatCellWithLayout renders raw like FormatCell, but a non-empty
// displayFormat overrides the default Go time layout used for Timestamp
// columns, so a host can apply its own display preference per session.
func FormatCellWithLayout(raw string, target schema.CellType, displayFormat string) string {
	trimmed := strings.TrimSpace(raw)
	switch target {
	case schema.WholeNumber:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return Invalid
		}
		return strconv.FormatInt(n, 10)
	case schema.FloatingPoint:
		f, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64)
		if err != nil {
			return Invalid
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case schema.Boolean:
		b, ok := parseBool(trimmed)
		if !ok {
			return Invalid
		}
		if b {
			return "true"
		}
		return "false"
	case schema.Timestamp:
		t, ok := schema.ParseTimestamp(trimmed)
		if !ok {
			return Invalid
		}
		layout := displayFormat
		if layout == "" {
			layout = DefaultTimestampLayout
		}
		return t.Format(layout)
	default: // Text, JsonObject, JsonArray, Null
		return raw
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
