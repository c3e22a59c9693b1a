// Package filterindex builds, in the background, the list of source row
// indices that satisfy every active Filter action (AND semantics), so the
// lazy transformer can present a filtered row count and map filtered row
// positions back to source rows without rescanning on every cell access.
package filterindex

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/scrapbird/datamorph/internal/dmerrors"
	"github.com/scrapbird/datamorph/internal/morph"
	"github.com/scrapbird/datamorph/internal/schema"
)

// BatchSize is the number of records read per ReadRecords call while
// building the index; the indexer yields cooperatively between batches.
const BatchSize = 1000

// Reader is the subset of rowreader.Reader the indexer depends on. The
// filter indexer always uses its own Reader instance, separate from the
// display cache's, so the two I/O paths stay independent and the total
// bytes read across a file stay O(file size) per consumer.
type Reader interface {
	ReadRecords(byteOffset int64, skip int, maxCount int) ([][]byte, error)
}

// CheckpointSource is the subset of rowindex.Indexer used to seek directly
// to the next unscanned row.
type CheckpointSource interface {
	GetCheckPoint(targetRow int64) (byteOffset int64, rowOffset int64)
}

// Indexer incrementally scans a file's records against a fixed list of
// FilterSpecs, accumulating the source row indices that pass all of them.
type Indexer struct {
	reader      Reader
	checkpoints CheckpointSource
	format      schema.SourceFormat
	columnNames []string
	specs       []morph.FilterSpec

	mu      sync.Mutex
	matched []int64

	totalMatched int64 // atomic
}

// New creates an Indexer. columnNames must be indexed the same way as the
// schema the specs were resolved against (used to resolve a JSON Lines
// FilterSpec's SourceColumnIndex to the property name it reads).
func New(reader Reader, checkpoints CheckpointSource, format schema.SourceFormat, columnNames []string, specs []morph.FilterSpec) *Indexer {
	return &Indexer{
		reader:      reader,
		checkpoints: checkpoints,
		format:      format,
		columnNames: columnNames,
		specs:       specs,
	}
}

// TotalMatchedRows is safe to call concurrently with BuildIndexAsync.
func (idx *Indexer) TotalMatchedRows() int64 {
	return atomic.LoadInt64(&idx.totalMatched)
}

// GetSourceRow returns the source row index for filteredRow, or -1 if that
// position has not been scanned (confirmed as a match) yet.
func (idx *Indexer) GetSourceRow(filteredRow int64) int64 {
	if filteredRow < 0 {
		return -1
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if int(filteredRow) >= len(idx.matched) {
		return -1
	}
	return idx.matched[filteredRow]
}

// BuildIndexAsync scans the file once in batches of BatchSize, evaluating
// every FilterSpec (AND) against each record, until the file is exhausted
// or ctx is cancelled. It is intended to run on a background goroutine; it
// yields cooperatively between batches so it cannot starve the caller of
// GetSourceRow / TotalMatchedRows.
func (idx *Indexer) BuildIndexAsync(ctx context.Context) error {
	var nextRow int64

	for {
		select {
		case <-ctx.Done():
			return dmerrors.ErrCancelled
		default:
		}

		byteOffset, rowOffset := idx.checkpoints.GetCheckPoint(nextRow)
		if byteOffset < 0 {
			return nil
		}

		batch, err := idx.reader.ReadRecords(byteOffset, int(rowOffset), BatchSize)
		if err != nil && !errors.Is(err, dmerrors.ErrMalformedRecord) {
			return err
		}
		if err == nil && len(batch) == 0 {
			return nil
		}

		for i, rec := range batch {
			sourceRow := nextRow + int64(i)
			if idx.evaluateAll(rec) {
				idx.appendMatch(sourceRow)
			}
		}
		nextRow += int64(len(batch))
		if err != nil {
			// A malformed record never matches; skip past it too.
			nextRow++
		}

		runtime.Gosched()
	}
}

func (idx *Indexer) appendMatch(sourceRow int64) {
	idx.mu.Lock()
	idx.matched = append(idx.matched, sourceRow)
	idx.mu.Unlock()
	atomic.AddInt64(&idx.totalMatched, 1)
}

func (idx *Indexer) evaluateAll(record []byte) bool {
	for _, spec := range idx.specs {
		if !evaluateFilter(idx.extractValue(record, spec.SourceColumnIndex), spec) {
			return false
		}
	}
	return true
}
