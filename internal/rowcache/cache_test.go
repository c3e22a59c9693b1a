package rowcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndexer struct {
	total int64
	ready bool
}

func (f *fakeIndexer) TotalRows() int64 { return f.total }
func (f *fakeIndexer) GetCheckPoint(target int64) (int64, int64) {
	if !f.ready {
		return -1, 0
	}
	return 0, target
}

type fakeReader struct {
	rows       [][]byte
	lastOffset int64
	lastSkip   int
	lastMax    int
}

func (f *fakeReader) ReadRecords(byteOffset int64, skip int, maxCount int) ([][]byte, error) {
	f.lastOffset = byteOffset
	f.lastSkip = skip
	f.lastMax = maxCount
	end := skip + maxCount
	if end > len(f.rows) {
		end = len(f.rows)
	}
	if skip >= end {
		return nil, nil
	}
	return f.rows[skip:end], nil
}

func makeRows(n int) [][]byte {
	rows := make([][]byte, n)
	for i := range rows {
		rows[i] = []byte{byte(i)}
	}
	return rows
}

func TestCache_GetRow_OutOfRange(t *testing.T) {
	idx := &fakeIndexer{total: 10, ready: true}
	rd := &fakeReader{rows: makeRows(10)}
	c := New(idx, rd, 4)

	assert.Equal(t, []byte{}, c.GetRow(-1))
	assert.Equal(t, []byte{}, c.GetRow(10))
}

func TestCache_GetRow_NotReady(t *testing.T) {
	idx := &fakeIndexer{total: 10, ready: false}
	rd := &fakeReader{rows: makeRows(10)}
	c := New(idx, rd, 4)

	assert.Equal(t, []byte{}, c.GetRow(0))
}

func TestCache_GetRow_HitsAndWindowSize(t *testing.T) {
	idx := &fakeIndexer{total: 100, ready: true}
	rd := &fakeReader{rows: makeRows(100)}
	c := New(idx, rd, 10)

	row := c.GetRow(50)
	require.Equal(t, []byte{50}, row)
	assert.LessOrEqual(t, len(c.window), 10)

	// Row still within window: no further reader read needed for the
	// window to remain contiguous and to contain the requested row.
	row = c.GetRow(51)
	assert.Equal(t, []byte{51}, row)
}

func TestCache_GetRow_ClampsNearEnd(t *testing.T) {
	idx := &fakeIndexer{total: 20, ready: true}
	rd := &fakeReader{rows: makeRows(20)}
	c := New(idx, rd, 10)

	row := c.GetRow(19)
	assert.Equal(t, []byte{19}, row)
	assert.LessOrEqual(t, len(c.window), 10)
}
