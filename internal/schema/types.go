// Package schema infers and incrementally refines a TableSchema from a
// CSV or JSON Lines data source: an initial synchronous scan over a
// data-bearing prefix, followed by a best-effort background refinement as
// the rest of the file is observed.
package schema

import (
	"fmt"

	"github.com/scrapbird/datamorph/internal/dmerrors"
	"github.com/scrapbird/datamorph/internal/scanner"
)

// CellType is the inferred type of a column's values.
type CellType int

const (
	// Null marks a column that has not yet observed any non-null value.
	// It is the identity element of the type lattice: resolving it
	// against any observed type yields that type.
	Null CellType = iota
	Text
	WholeNumber
	FloatingPoint
	Boolean
	Timestamp
	JsonObject
	JsonArray
)

func (t CellType) String() string {
	switch t {
	case Null:
		return "Null"
	case Text:
		return "Text"
	case WholeNumber:
		return "WholeNumber"
	case FloatingPoint:
		return "FloatingPoint"
	case Boolean:
		return "Boolean"
	case Timestamp:
		return "Timestamp"
	case JsonObject:
		return "JsonObject"
	case JsonArray:
		return "JsonArray"
	default:
		return "Unknown"
	}
}

// SourceFormat identifies the on-disk shape a TableSchema was derived from.
type SourceFormat int

const (
	Csv SourceFormat = iota
	JsonLines
	JsonArraySource
	JsonObjectSource
)

// FormatFromScanner maps a scanner.Format to its schema SourceFormat.
func FormatFromScanner(f scanner.Format) SourceFormat {
	if f == scanner.FormatJSONLines {
		return JsonLines
	}
	return Csv
}

// ColumnSchema describes one column of a TableSchema.
type ColumnSchema struct {
	Name          string
	Type          CellType
	Nullable      bool
	ColumnIndex   int
	DisplayFormat string
}

// TableSchema is an ordered, immutable list of columns with an O(1)
// name-to-index lookup. Every published TableSchema value is treated as
// read-only by convention; refinement always produces a new value rather
// than mutating an existing one.
type TableSchema struct {
	SourceFormat SourceFormat
	Columns      []ColumnSchema

	byName map[string]int
}

// NewTableSchema validates and constructs a TableSchema. Column names must
// be non-empty and unique; ColumnIndex must be non-negative and equal to
// the column's position in the slice.
func NewTableSchema(format SourceFormat, columns []ColumnSchema) (*TableSchema, error) {
	byName := make(map[string]int, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: column %d has an empty name", dmerrors.ErrArgumentInvalid, i)
		}
		if c.ColumnIndex != i {
			return nil, fmt.Errorf("%w: column %q has column_index %d, want %d", dmerrors.ErrArgumentInvalid, c.Name, c.ColumnIndex, i)
		}
		if _, dup := byName[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate column name %q", dmerrors.ErrArgumentInvalid, c.Name)
		}
		byName[c.Name] = i
	}
	return &TableSchema{SourceFormat: format, Columns: columns, byName: byName}, nil
}

// mustNewTableSchema is used internally by refinement code paths that
// construct columns from an already-valid schema plus incremental changes,
// where the invariants above hold by construction.
func mustNewTableSchema(format SourceFormat, columns []ColumnSchema) *TableSchema {
	ts, err := NewTableSchema(format, columns)
	if err != nil {
		panic(err)
	}
	return ts
}

// ColumnByName returns the column named name and true, or the zero value
// and false if no such column exists.
func (s *TableSchema) ColumnByName(name string) (ColumnSchema, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return ColumnSchema{}, false
	}
	return s.Columns[idx], true
}

// IndexOf returns the column index for name, or -1 if not found.
func (s *TableSchema) IndexOf(name string) int {
	idx, ok := s.byName[name]
	if !ok {
		return -1
	}
	return idx
}

// resolveType implements the commutative, idempotent type-priority
// lattice: Null is the identity, Text dominates everything (including
// Boolean, which never merges with a non-Boolean type), and
// WholeNumber/FloatingPoint merge into FloatingPoint.
func resolveType(a, b CellType) CellType {
	if a == Null {
		return b
	}
	if b == Null {
		return a
	}
	if a == b {
		return a
	}
	if a == Text || b == Text {
		return Text
	}
	if a == Boolean || b == Boolean {
		return Text
	}
	if (a == WholeNumber && b == FloatingPoint) || (a == FloatingPoint && b == WholeNumber) {
		return FloatingPoint
	}
	return Text
}
