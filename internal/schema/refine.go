package schema

import (
	"context"
	"errors"
	"strings"

	"github.com/scrapbird/datamorph/internal/csvrow"
	"github.com/scrapbird/datamorph/internal/dmerrors"
	"github.com/scrapbird/datamorph/internal/jsonrecord"
)

// refineBatchSize is the number of records read per ReadRecords call during
// background refinement.
const refineBatchSize = 1000

// RefineSchema reconciles one additional record against schema, returning a
// new TableSchema only if a column's type or nullability changed or a new
// column was discovered. If nothing changed, it returns schema unchanged
// (same pointer), making RefineSchema idempotent: refining twice with the
// same record converges to the same value after the first call.
//
// A record that fails to parse (JSON Lines only) is skipped: schema is
// returned unchanged.
func RefineSchema(ts *TableSchema, record []byte) *TableSchema {
	switch ts.SourceFormat {
	case JsonLines:
		return refineJSONLines(ts, record)
	default:
		return refineCSV(ts, record)
	}
}

func refineCSV(ts *TableSchema, record []byte) *TableSchema {
	cells := csvrow.Split(record)
	next := make([]ColumnSchema, len(ts.Columns))
	changed := false

	for i, col := range ts.Columns {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		trimmed := strings.TrimSpace(cell)
		updated := col

		if trimmed == "" {
			if !col.Nullable {
				updated.Nullable = true
				changed = true
			}
		} else {
			resolved := resolveType(col.Type, classifyCSVCell(trimmed))
			if resolved != col.Type {
				updated.Type = resolved
				changed = true
			}
		}
		next[i] = updated
	}

	if !changed {
		return ts
	}
	return mustNewTableSchema(ts.SourceFormat, next)
}

func refineJSONLines(ts *TableSchema, record []byte) *TableSchema {
	keys, values, ok := jsonrecord.DecodeOrderedObject(record)
	if !ok {
		return ts
	}

	next := append([]ColumnSchema(nil), ts.Columns...)
	index := make(map[string]int, len(next))
	for i, c := range next {
		index[c.Name] = i
	}
	changed := false
	present := make(map[string]bool, len(keys))

	for i, key := range keys {
		present[key] = true
		t, isNull := classifyJSONValue(values[i])
		idx, exists := index[key]
		if !exists {
			idx = len(next)
			index[key] = idx
			col := ColumnSchema{Name: key, ColumnIndex: idx}
			if isNull {
				col.Nullable = true
			} else {
				col.Type = t
			}
			next = append(next, col)
			changed = true
			continue
		}

		col := next[idx]
		if isNull {
			if !col.Nullable {
				col.Nullable = true
				next[idx] = col
				changed = true
			}
			continue
		}
		resolved := resolveType(col.Type, t)
		if resolved != col.Type {
			col.Type = resolved
			next[idx] = col
			changed = true
		}
	}

	// A column whose key is absent from this record is observed-missing.
	for i, col := range next {
		if !present[col.Name] && !col.Nullable {
			next[i].Nullable = true
			changed = true
		}
	}

	if !changed {
		return ts
	}
	return mustNewTableSchema(ts.SourceFormat, next)
}

// PublishFunc receives each refined TableSchema snapshot as soon as it
// differs from the one previously published. Implementations are expected
// to swap an atomic/volatile reference, not block.
type PublishFunc func(*TableSchema)

// CheckpointSource is the subset of rowindex.Indexer used to skip directly
// to the next unread batch of records instead of re-scanning from the
// start of the file on every call.
type CheckpointSource interface {
	GetCheckPoint(targetRow int64) (byteOffset int64, rowOffset int64)
}

// BackgroundRefine reads the rest of the file past the first alreadyRead
// records already consumed by InitialScan, in batches of refineBatchSize,
// applying RefineSchema record by record and invoking publish whenever the
// schema changes. checkpoints is consulted before each batch so the reader
// seeks directly to the next unread row rather than rescanning the
// already-read prefix. It honors ctx cancellation between batches,
// returning dmerrors.ErrCancelled if stopped early. The final schema
// (whether reached by completion or cancellation) is always published
// before return, even if it is identical to the initial one.
func BackgroundRefine(ctx context.Context, r Reader, checkpoints CheckpointSource, initial *TableSchema, alreadyRead int64, publish PublishFunc) (*TableSchema, error) {
	current := initial
	nextRow := alreadyRead

	for {
		select {
		case <-ctx.Done():
			publish(current)
			return current, dmerrors.ErrCancelled
		default:
		}

		byteOffset, rowOffset := checkpoints.GetCheckPoint(nextRow)
		if byteOffset < 0 {
			publish(current)
			return current, nil
		}

		batch, err := r.ReadRecords(byteOffset, int(rowOffset), refineBatchSize)
		if err != nil && !errors.Is(err, dmerrors.ErrMalformedRecord) {
			return current, err
		}
		if err == nil && len(batch) == 0 {
			publish(current)
			return current, nil
		}

		for _, rec := range batch {
			refined := RefineSchema(current, rec)
			if refined != current {
				current = refined
				publish(current)
			}
		}
		nextRow += int64(len(batch))
		if err != nil {
			// Skip past the malformed record itself before the next batch.
			nextRow++
		}
	}
}
