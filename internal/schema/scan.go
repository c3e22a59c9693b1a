package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/scrapbird/datamorph/internal/csvrow"
	"github.com/scrapbird/datamorph/internal/dmerrors"
	"github.com/scrapbird/datamorph/internal/headernorm"
	"github.com/scrapbird/datamorph/internal/jsonrecord"
	"github.com/scrapbird/datamorph/internal/scanner"
)

// DefaultInitialScanRows is the default number of data records the initial
// scan reads before publishing the first TableSchema.
const DefaultInitialScanRows = 200

// Reader is the subset of rowreader.Reader the scanner depends on.
type Reader interface {
	ReadRecords(byteOffset int64, skip int, maxCount int) ([][]byte, error)
}

// columnState accumulates the observed type and nullability of one column
// during a scan, before it is frozen into a ColumnSchema.
type columnState struct {
	name     string
	typ      CellType
	nullable bool
}

func (c *columnState) observe(t CellType, isNull bool) {
	if isNull {
		c.nullable = true
		return
	}
	c.typ = resolveType(c.typ, t)
}

func freezeColumns(states []*columnState) []ColumnSchema {
	cols := make([]ColumnSchema, len(states))
	for i, st := range states {
		cols[i] = ColumnSchema{Name: st.name, Type: st.typ, Nullable: st.nullable, ColumnIndex: i}
	}
	return cols
}

// readRecordsSkipMalformed collects up to maxCount records the way
// r.ReadRecords does, but when a JSON Lines record fails validation it
// keeps whatever records were already collected and resumes right past
// the bad one instead of aborting the whole scan, matching the "malformed
// records are skipped" contract.
func readRecordsSkipMalformed(r Reader, byteOffset int64, skip int, maxCount int) ([][]byte, error) {
	var out [][]byte
	nextSkip := skip
	remaining := maxCount

	for remaining > 0 {
		batch, err := r.ReadRecords(byteOffset, nextSkip, remaining)
		out = append(out, batch...)
		remaining -= len(batch)
		nextSkip += len(batch)
		if err != nil {
			if !errors.Is(err, dmerrors.ErrMalformedRecord) {
				return out, err
			}
			// Skip past the malformed record itself and keep going.
			nextSkip++
			continue
		}
		if len(batch) == 0 {
			break
		}
	}
	return out, nil
}

// InitialScan reads up to n data records (DefaultInitialScanRows if n <= 0)
// through r and builds the initial TableSchema for format.
func InitialScan(r Reader, format scanner.Format, n int) (*TableSchema, error) {
	if n <= 0 {
		n = DefaultInitialScanRows
	}
	switch format {
	case scanner.FormatCSV:
		return initialScanCSV(r, n)
	case scanner.FormatJSONLines:
		return initialScanJSONLines(r, n)
	default:
		return nil, fmt.Errorf("schema: unsupported source format %v", format)
	}
}

func initialScanCSV(r Reader, n int) (*TableSchema, error) {
	header, err := readRecordsSkipMalformed(r, 0, 0, 1)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return NewTableSchema(Csv, nil)
	}
	names := headernorm.Normalize(csvrow.Split(header[0]))

	states := make([]*columnState, len(names))
	for i, name := range names {
		states[i] = &columnState{name: name}
	}

	rows, err := readRecordsSkipMalformed(r, 0, 1, n)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		observeCSVRow(states, row)
	}

	return NewTableSchema(Csv, freezeColumns(states))
}

func observeCSVRow(states []*columnState, row []byte) {
	cells := csvrow.Split(row)
	for i, st := range states {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		trimmed := strings.TrimSpace(cell)
		if trimmed == "" {
			st.observe(Null, true)
			continue
		}
		st.observe(classifyCSVCell(trimmed), false)
	}
}

func initialScanJSONLines(r Reader, n int) (*TableSchema, error) {
	records, err := readRecordsSkipMalformed(r, 0, 0, n)
	if err != nil {
		return nil, err
	}

	var states []*columnState
	index := make(map[string]int)
	for _, rec := range records {
		observeJSONRecord(&states, index, rec)
	}
	// A column whose key is absent from any well-formed object record is
	// nullable.
	for _, rec := range records {
		keys, _, ok := jsonrecord.DecodeOrderedObject(rec)
		if !ok {
			continue
		}
		present := make(map[string]bool, len(keys))
		for _, k := range keys {
			present[k] = true
		}
		for _, st := range states {
			if !present[st.name] {
				st.nullable = true
			}
		}
	}

	return NewTableSchema(JsonLines, freezeColumns(states))
}

func observeJSONRecord(states *[]*columnState, index map[string]int, record []byte) {
	keys, values, ok := jsonrecord.DecodeOrderedObject(record)
	if !ok {
		return
	}
	for i, key := range keys {
		idx, exists := index[key]
		if !exists {
			idx = len(*states)
			index[key] = idx
			*states = append(*states, &columnState{name: key})
		}
		t, isNull := classifyJSONValue(values[i])
		(*states)[idx].observe(t, isNull)
	}
}
