package rowsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapbird/datamorph/internal/schema"
)

type fakeCache struct {
	rows [][]byte
}

func (f *fakeCache) TotalRows() int64 { return int64(len(f.rows)) }
func (f *fakeCache) GetRow(i int64) []byte {
	if i < 0 || i >= int64(len(f.rows)) {
		return []byte{}
	}
	return f.rows[i]
}

func mustSchema(t *testing.T, format schema.SourceFormat, cols []schema.ColumnSchema) *schema.TableSchema {
	t.Helper()
	ts, err := schema.NewTableSchema(format, cols)
	require.NoError(t, err)
	return ts
}

func TestSource_CSVCell(t *testing.T) {
	cache := &fakeCache{rows: [][]byte{[]byte("a,b,c"), []byte("1,2")}}
	ts := mustSchema(t, schema.Csv, []schema.ColumnSchema{
		{Name: "X", ColumnIndex: 0},
		{Name: "Y", ColumnIndex: 1},
		{Name: "Z", ColumnIndex: 2},
	})
	src := New(cache, schema.Csv, ts)

	assert.Equal(t, "a", src.Cell(0, 0))
	assert.Equal(t, "c", src.Cell(0, 2))
	assert.Equal(t, "", src.Cell(1, 2)) // missing trailing field
	assert.Equal(t, []string{"X", "Y", "Z"}, src.ColumnNames())
	assert.Equal(t, int64(2), src.Rows())
}

func TestSource_JSONCell(t *testing.T) {
	cache := &fakeCache{rows: [][]byte{[]byte(`{"id":1,"name":"Alice"}`), []byte("not-json")}}
	ts := mustSchema(t, schema.JsonLines, []schema.ColumnSchema{
		{Name: "id", ColumnIndex: 0},
		{Name: "name", ColumnIndex: 1},
		{Name: "age", ColumnIndex: 2},
	})
	src := New(cache, schema.JsonLines, ts)

	assert.Equal(t, "Alice", src.Cell(0, 1))
	assert.Equal(t, "<null>", src.Cell(0, 2))
	assert.Equal(t, "<error>", src.Cell(1, 0))
}

func TestSource_SchemaSwap(t *testing.T) {
	cache := &fakeCache{rows: [][]byte{[]byte("1")}}
	ts := mustSchema(t, schema.Csv, []schema.ColumnSchema{{Name: "a", ColumnIndex: 0}})
	src := New(cache, schema.Csv, ts)
	assert.Equal(t, 1, src.Columns())

	next := mustSchema(t, schema.Csv, []schema.ColumnSchema{
		{Name: "a", ColumnIndex: 0},
		{Name: "b", ColumnIndex: 1},
	})
	src.UpdateSchema(next)
	assert.Equal(t, 2, src.Columns())
}
