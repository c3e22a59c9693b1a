package filterindex

import (
	"strconv"
	"strings"

	"github.com/scrapbird/datamorph/internal/csvrow"
	"github.com/scrapbird/datamorph/internal/jsonrecord"
	"github.com/scrapbird/datamorph/internal/morph"
	"github.com/scrapbird/datamorph/internal/schema"
)

// extractValue reads the raw display string for colIndex out of a raw
// record, the same way rowsource.Source.Cell would for the base table: a
// positional CSV field, or a named JSON Lines property.
func (idx *Indexer) extractValue(record []byte, colIndex int) string {
	if idx.format == schema.JsonLines {
		if colIndex < 0 || colIndex >= len(idx.columnNames) {
			return "<null>"
		}
		return jsonrecord.ExtractCell(record, idx.columnNames[colIndex])
	}
	fields := csvrow.Split(record)
	if colIndex < 0 || colIndex >= len(fields) {
		return ""
	}
	return fields[colIndex]
}

// evaluateFilter implements evaluate_filter: text operators are always a
// case-insensitive string comparison regardless of the column's effective
// type; numeric operators parse both sides and exclude the row (return
// false) on any parse failure, including when the effective type is Text.
func evaluateFilter(raw string, spec morph.FilterSpec) bool {
	switch spec.Op {
	case morph.Equals, morph.NotEquals, morph.Contains, morph.NotContains, morph.StartsWith, morph.EndsWith:
		return evaluateTextOp(raw, spec.Op, spec.Value)
	default:
		return evaluateNumericOp(raw, spec)
	}
}

func evaluateTextOp(raw string, op morph.FilterOp, value string) bool {
	a := strings.ToLower(raw)
	b := strings.ToLower(value)
	switch op {
	case morph.Equals:
		return a == b
	case morph.NotEquals:
		return a != b
	case morph.Contains:
		return strings.Contains(a, b)
	case morph.NotContains:
		return !strings.Contains(a, b)
	case morph.StartsWith:
		return strings.HasPrefix(a, b)
	case morph.EndsWith:
		return strings.HasSuffix(a, b)
	default:
		return false
	}
}

func evaluateNumericOp(raw string, spec morph.FilterSpec) bool {
	switch spec.EffectiveType {
	case schema.WholeNumber, schema.FloatingPoint:
		a, aok := parseNumeric(raw)
		b, bok := parseNumeric(spec.Value)
		if !aok || !bok {
			return false
		}
		return compareOrdered(a, spec.Op, b)
	case schema.Timestamp:
		at, aok := schema.ParseTimestamp(strings.TrimSpace(raw))
		bt, bok := schema.ParseTimestamp(strings.TrimSpace(spec.Value))
		if !aok || !bok {
			return false
		}
		return compareOrdered(float64(at.UnixNano()), spec.Op, float64(bt.UnixNano()))
	default:
		// Numeric operator on a Text column: exclude the row.
		return false
	}
}

func parseNumeric(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func compareOrdered(a float64, op morph.FilterOp, b float64) bool {
	switch op {
	case morph.GreaterThan:
		return a > b
	case morph.GreaterThanOrEqual:
		return a >= b
	case morph.LessThan:
		return a < b
	case morph.LessThanOrEqual:
		return a <= b
	default:
		return false
	}
}
