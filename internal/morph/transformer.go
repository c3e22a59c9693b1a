package morph

import (
	"github.com/scrapbird/datamorph/internal/dmerrors"
	"github.com/scrapbird/datamorph/internal/schema"
)

// Source is the base (unprojected) table the transformer reads from.
type Source interface {
	Rows() int64
	Cell(row int64, col int) string
}

// FilterIndex is the subset of filterindex.Indexer the transformer
// consults when one or more Filter actions are active.
type FilterIndex interface {
	TotalMatchedRows() int64
	GetSourceRow(filteredRow int64) int64
}

// workingColumn is one entry of the working list W folded from the base
// schema's columns. deleted marks a column removed by a Delete action; it
// stays in W (so source indices of later columns never shift) but is
// skipped when the output columns are emitted.
type workingColumn struct {
	sourceIndex   int
	name          string
	typ           schema.CellType
	displayFormat string
	deleted       bool
}

// Transformer presents a projected table derived from a base Source, an
// original TableSchema, and an ordered list of Actions. It holds no
// ownership over the source and performs no I/O itself; constructing it is
// pure.
type Transformer struct {
	source Source

	sourceColumnIndices []int
	outputNames         []string
	outputTypes         []schema.CellType
	outputDisplayFmts   []string
	filterSpecs         []FilterSpec

	filterIndex FilterIndex // nil when no Filter action is active
}

// New folds actions over base to compute the projected output schema and
// returns a Transformer ready to serve Rows/Columns/ColumnNames/Cell.
// filterIndex may be nil; it is consulted for Rows and Cell only when at
// least one Filter action resolved to a FilterSpec.
func New(source Source, base *schema.TableSchema, actions []Action, filterIndex FilterIndex) (*Transformer, error) {
	if source == nil || base == nil {
		return nil, dmerrors.ErrArgumentInvalid
	}

	w := make([]workingColumn, len(base.Columns))
	nameIdx := make(map[string]int, len(base.Columns))
	for i, c := range base.Columns {
		w[i] = workingColumn{sourceIndex: i, name: c.Name, typ: c.Type, displayFormat: c.DisplayFormat}
		nameIdx[c.Name] = i
	}

	var specs []FilterSpec
	for _, a := range actions {
		switch a.Type {
		case Rename:
			idx, ok := nameIdx[a.OldName]
			if !ok {
				continue
			}
			delete(nameIdx, a.OldName)
			w[idx].name = a.NewName
			nameIdx[a.NewName] = idx
		case Delete:
			idx, ok := nameIdx[a.Name]
			if !ok {
				continue
			}
			delete(nameIdx, a.Name)
			w[idx].deleted = true
		case Cast:
			idx, ok := nameIdx[a.Name]
			if !ok {
				continue
			}
			w[idx].typ = a.TargetType
		case Filter:
			idx, ok := nameIdx[a.Name]
			if !ok {
				continue
			}
			specs = append(specs, FilterSpec{
				SourceColumnIndex: w[idx].sourceIndex,
				EffectiveType:     w[idx].typ,
				Op:                a.Op,
				Value:             a.Value,
			})
		}
	}

	var sourceCols []int
	var names []string
	var types []schema.CellType
	var displayFmts []string
	for _, c := range w {
		if c.deleted {
			continue
		}
		sourceCols = append(sourceCols, c.sourceIndex)
		names = append(names, c.name)
		types = append(types, c.typ)
		displayFmts = append(displayFmts, c.displayFormat)
	}

	t := &Transformer{
		source:              source,
		sourceColumnIndices: sourceCols,
		outputNames:         names,
		outputTypes:         types,
		outputDisplayFmts:   displayFmts,
		filterSpecs:         specs,
	}
	if len(specs) > 0 {
		t.filterIndex = filterIndex
	}
	return t, nil
}

// FilterSpecs returns the resolved Filter specs, for use by a
// filterindex.Indexer built against this transformer's projection.
func (t *Transformer) FilterSpecs() []FilterSpec {
	return t.filterSpecs
}

// Rows returns filterIndex.TotalMatchedRows() if any filter is active,
// otherwise the base source's row count.
func (t *Transformer) Rows() int64 {
	if t.filterIndex != nil {
		return t.filterIndex.TotalMatchedRows()
	}
	return t.source.Rows()
}

// Columns returns the number of output columns.
func (t *Transformer) Columns() int {
	return len(t.outputNames)
}

// ColumnNames returns the output column names, in output order.
func (t *Transformer) ColumnNames() []string {
	return t.outputNames
}

// Cell returns the formatted display value at (row, col). It raises
// dmerrors.ErrOutOfRange for an out-of-bounds row or column rather than
// failing silently. A row whose filter membership has not yet been
// confirmed by the background filter indexer returns the empty string.
func (t *Transformer) Cell(row int64, col int) (string, error) {
	if row < 0 || row >= t.Rows() {
		return "", dmerrors.ErrOutOfRange
	}
	if col < 0 || col >= len(t.outputNames) {
		return "", dmerrors.ErrOutOfRange
	}

	sourceRow := row
	if t.filterIndex != nil {
		sourceRow = t.filterIndex.GetSourceRow(row)
		if sourceRow < 0 {
			return "", nil
		}
	}

	raw := t.source.Cell(sourceRow, t.sourceColumnIndices[col])
	return FormatCellWithLayout(raw, t.outputTypes[col], t.outputDisplayFmts[col]), nil
}
