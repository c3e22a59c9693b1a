// Package rowsource adapts a raw row cache plus a TableSchema into the
// cell-level table contract (Rows, Columns, ColumnNames, Cell) that the
// lazy transformer projects over. It owns no I/O of its own; it decodes
// each cache hit into fields (CSV) or looks a key up (JSON Lines).
package rowsource

import (
	"sync/atomic"

	"github.com/scrapbird/datamorph/internal/csvrow"
	"github.com/scrapbird/datamorph/internal/jsonrecord"
	"github.com/scrapbird/datamorph/internal/schema"
)

// Cache is the subset of rowcache.Cache the source depends on.
type Cache interface {
	TotalRows() int64
	GetRow(i int64) []byte
}

// Source presents a base (unprojected) table over a Cache, reading column
// names and types through whatever TableSchema was most recently
// published. Schema updates are swapped in atomically: a Cell call
// in flight always sees a single consistent schema snapshot.
type Source struct {
	cache  Cache
	format schema.SourceFormat
	schema atomic.Pointer[schema.TableSchema]
}

// New creates a Source over cache, starting with initial as its schema.
func New(cache Cache, format schema.SourceFormat, initial *schema.TableSchema) *Source {
	s := &Source{cache: cache, format: format}
	s.schema.Store(initial)
	return s
}

// UpdateSchema atomically swaps in a newly refined schema. It is the
// publish callback passed to schema.BackgroundRefine.
func (s *Source) UpdateSchema(ts *schema.TableSchema) {
	s.schema.Store(ts)
}

// Schema returns the currently published schema snapshot.
func (s *Source) Schema() *schema.TableSchema {
	return s.schema.Load()
}

// Rows returns the number of rows in the underlying cache.
func (s *Source) Rows() int64 {
	return s.cache.TotalRows()
}

// Columns returns the current column count.
func (s *Source) Columns() int {
	return len(s.schema.Load().Columns)
}

// ColumnNames returns the current column names, in column_index order.
func (s *Source) ColumnNames() []string {
	cols := s.schema.Load().Columns
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// Cell returns the raw (unformatted) string value of row, col. For CSV, a
// column index beyond the row's field count yields the empty string. For
// JSON Lines, it implements the display-time extraction contract:
// "<error>" for a line that fails to parse as an object, "<null>" for a
// missing key or explicit JSON null.
func (s *Source) Cell(row int64, col int) string {
	raw := s.cache.GetRow(row)
	cols := s.schema.Load().Columns
	if col < 0 || col >= len(cols) {
		return ""
	}

	if s.format == schema.JsonLines {
		return jsonrecord.ExtractCell(raw, cols[col].Name)
	}

	fields := csvrow.Split(raw)
	if col >= len(fields) {
		return ""
	}
	return fields[col]
}
