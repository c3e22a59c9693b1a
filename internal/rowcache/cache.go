// Package rowcache provides a sliding-window cache over a Reader, serving
// random GetRow(i) requests from a contiguous in-memory window rather than
// re-scanning the file on every access.
package rowcache

// DefaultCacheSize is the default window size, in rows.
const DefaultCacheSize = 200

// Indexer is the subset of rowindex.Indexer the cache depends on.
type Indexer interface {
	TotalRows() int64
	GetCheckPoint(targetRow int64) (byteOffset int64, rowOffset int64)
}

// Reader is the subset of rowreader.Reader the cache depends on.
type Reader interface {
	ReadRecords(byteOffset int64, skip int, maxCount int) ([][]byte, error)
}

// Cache maps row index to raw record bytes, keeping at most size
// consecutive records in memory. It is intended for single-threaded (UI
// thread) access; the underlying Indexer may still be growing concurrently
// in the background, and growth is observed the next time a miss triggers
// a refill.
type Cache struct {
	indexer Indexer
	reader  Reader
	size    int

	hasWindow bool
	startRow  int64
	window    [][]byte
}

// New creates a Cache of the given window size (DefaultCacheSize if size
// <= 0) over reader, consulting indexer for checkpoint lookups.
func New(indexer Indexer, reader Reader, size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{indexer: indexer, reader: reader, size: size}
}

// TotalRows delegates to the underlying indexer.
func (c *Cache) TotalRows() int64 {
	return c.indexer.TotalRows()
}

// GetRow returns the raw bytes of row i, or an empty (non-nil) slice if i
// is out of [0, TotalRows) or the index is not ready yet. GetRow never
// panics.
func (c *Cache) GetRow(i int64) []byte {
	total := c.TotalRows()
	if i < 0 || i >= total {
		return []byte{}
	}

	if !c.hasWindow || i < c.startRow || i >= c.startRow+int64(len(c.window)) {
		if !c.refill(i, total) {
			return []byte{}
		}
	}

	localIdx := i - c.startRow
	if localIdx < 0 || int(localIdx) >= len(c.window) {
		return []byte{}
	}
	return c.window[localIdx]
}

// refill re-centers the window on row i and reloads it from the reader.
// It returns false if the indexer is not yet ready or the read fails,
// leaving any previous window untouched.
func (c *Cache) refill(i, total int64) bool {
	half := int64(c.size) / 2
	start := i - half
	if start < 0 {
		start = 0
	}
	maxStart := total - int64(c.size)
	if maxStart < 0 {
		maxStart = 0
	}
	if start > maxStart {
		start = maxStart
	}

	byteOffset, rowOffset := c.indexer.GetCheckPoint(start)
	if byteOffset < 0 {
		return false
	}

	want := int64(c.size)
	if remain := total - start; want > remain {
		want = remain
	}
	if want <= 0 {
		return false
	}

	recs, err := c.reader.ReadRecords(byteOffset, int(rowOffset), int(want))
	if err != nil {
		return false
	}

	c.startRow = start
	c.window = recs
	c.hasWindow = true
	return true
}
