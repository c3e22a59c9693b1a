package schema

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapbird/datamorph/internal/dmerrors"
	"github.com/scrapbird/datamorph/internal/rowindex"
	"github.com/scrapbird/datamorph/internal/rowreader"
	"github.com/scrapbird/datamorph/internal/scanner"
)

// TestRefineSchema_S6_MonotoneRefinement mirrors the literal scenario:
// WholeNumber -> FloatingPoint -> nullable, then a no-op record returns
// the identical schema value (copy-on-write identity).
func TestRefineSchema_S6_MonotoneRefinement(t *testing.T) {
	initial, err := NewTableSchema(JsonLines, []ColumnSchema{
		{Name: "value", Type: WholeNumber, ColumnIndex: 0},
	})
	require.NoError(t, err)

	afterFloat := RefineSchema(initial, rec(`{"value":1.5}`))
	require.NotSame(t, initial, afterFloat)
	col, _ := afterFloat.ColumnByName("value")
	assert.Equal(t, FloatingPoint, col.Type)
	assert.False(t, col.Nullable)

	afterNull := RefineSchema(afterFloat, rec(`{}`))
	require.NotSame(t, afterFloat, afterNull)
	col, _ = afterNull.ColumnByName("value")
	assert.Equal(t, FloatingPoint, col.Type)
	assert.True(t, col.Nullable)

	identity := RefineSchema(afterNull, rec(`{"value":1}`))
	assert.Same(t, afterNull, identity)
}

func TestRefineSchema_Idempotent(t *testing.T) {
	initial, err := NewTableSchema(Csv, []ColumnSchema{{Name: "a", ColumnIndex: 0}})
	require.NoError(t, err)

	once := RefineSchema(initial, rec("3.14"))
	twice := RefineSchema(once, rec("3.14"))
	assert.Same(t, once, twice)
}

func TestRefineSchema_MalformedJSONRecordSkipped(t *testing.T) {
	initial, err := NewTableSchema(JsonLines, []ColumnSchema{{Name: "a", Type: WholeNumber, ColumnIndex: 0}})
	require.NoError(t, err)

	same := RefineSchema(initial, rec("not-json"))
	assert.Same(t, initial, same)
}

func TestRefineSchema_NewColumnAppended(t *testing.T) {
	initial, err := NewTableSchema(JsonLines, []ColumnSchema{{Name: "a", Type: WholeNumber, ColumnIndex: 0}})
	require.NoError(t, err)

	next := RefineSchema(initial, rec(`{"a":1,"b":"x"}`))
	require.Len(t, next.Columns, 2)
	assert.Equal(t, "b", next.Columns[1].Name)
	assert.Equal(t, Text, next.Columns[1].Type)
}

type fakeCheckpoints struct{}

func (fakeCheckpoints) GetCheckPoint(targetRow int64) (int64, int64) { return 0, targetRow }

func TestBackgroundRefine_PublishesOnlyOnChange(t *testing.T) {
	initial, err := NewTableSchema(JsonLines, []ColumnSchema{{Name: "value", Type: WholeNumber, ColumnIndex: 0}})
	require.NoError(t, err)

	r := &fakeReader{rows: [][]byte{
		rec(`{"value":1}`),
		rec(`{"value":2.5}`),
		rec(`{"value":3}`),
	}}

	var published []*TableSchema
	final, err := BackgroundRefine(context.Background(), r, fakeCheckpoints{}, initial, 0, func(s *TableSchema) {
		published = append(published, s)
	})
	require.NoError(t, err)
	require.Len(t, published, 2) // one change (float), one final publish on completion
	col, _ := final.ColumnByName("value")
	assert.Equal(t, FloatingPoint, col.Type)
}

func TestBackgroundRefine_Cancellation(t *testing.T) {
	initial, err := NewTableSchema(JsonLines, nil)
	require.NoError(t, err)

	r := &fakeReader{rows: [][]byte{rec(`{"a":1}`)}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = BackgroundRefine(ctx, r, fakeCheckpoints{}, initial, 0, func(*TableSchema) {})
	assert.ErrorIs(t, err, dmerrors.ErrCancelled)
}

// TestBackgroundRefine_MalformedRecordViaRealReader exercises a malformed
// record through the real rowreader.Reader and rowindex.Indexer, whose
// ReadRecords hard-errors with dmerrors.ErrMalformedRecord instead of
// silently skipping the bad line. BackgroundRefine must not abort: it
// should keep refining from the well-formed records on both sides of it.
func TestBackgroundRefine_MalformedRecordViaRealReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonl")
	contents := `{"value":1}` + "\n" + "not-json" + "\n" + `{"value":2.5}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	idx := rowindex.New(path, scanner.FormatJSONLines, nil)
	require.NoError(t, idx.BuildIndex())

	r, err := rowreader.New(path, scanner.FormatJSONLines)
	require.NoError(t, err)
	defer r.Close()

	initial, err := NewTableSchema(JsonLines, []ColumnSchema{{Name: "value", Type: WholeNumber, ColumnIndex: 0}})
	require.NoError(t, err)

	final, err := BackgroundRefine(context.Background(), r, idx, initial, 0, func(*TableSchema) {})
	require.NoError(t, err)
	col, ok := final.ColumnByName("value")
	require.True(t, ok)
	assert.Equal(t, FloatingPoint, col.Type)
}
