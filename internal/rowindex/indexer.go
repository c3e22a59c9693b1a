// Package rowindex drives a single streaming pass over a file, recording a
// sparse set of byte-offset checkpoints so later random access needs only a
// bounded re-scan from the nearest checkpoint rather than the start of the
// file.
package rowindex

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/scrapbird/datamorph/internal/scanner"
)

// CheckpointInterval is the number of data rows between recorded
// checkpoints.
const CheckpointInterval = 1000

// Checkpoint pairs a byte offset with the data-row index whose first byte
// it is.
type Checkpoint struct {
	ByteOffset int64
	RowIndex   int64
}

// ProgressFunc reports indexing progress; current/total are row counts,
// total is -1 while still unknown.
type ProgressFunc func(stage string, current, total int64, message string)

// Indexer performs one streaming scan of a file, counting data rows and
// checkpointing every CheckpointInterval of them. It owns the file handle
// used for scanning and the checkpoint list; TotalRows and GetCheckPoint
// are safe to call concurrently with BuildIndex from another goroutine.
type Indexer struct {
	filePath string
	format   scanner.Format
	progress ProgressFunc

	mu          sync.Mutex
	checkpoints []Checkpoint

	totalRows int64 // atomic
	built     int32 // atomic bool
}

// New creates an Indexer for filePath. BuildIndex must be called exactly
// once, typically from a background worker, before GetCheckPoint returns
// anything but the "not ready" sentinel for a CSV source.
func New(filePath string, format scanner.Format, progress ProgressFunc) *Indexer {
	idx := &Indexer{
		filePath: filePath,
		format:   format,
		progress: progress,
	}
	if format == scanner.FormatJSONLines {
		// JSON Lines has no header to skip, so row 0 always starts at
		// byte 0; seed the checkpoint so GetCheckPoint is always safe,
		// even before BuildIndex runs.
		idx.checkpoints = []Checkpoint{{ByteOffset: 0, RowIndex: 0}}
	}
	return idx
}

// TotalRows returns the most recently published row count: a multiple of
// CheckpointInterval while BuildIndex is still running, the final count
// once it completes.
func (idx *Indexer) TotalRows() int64 {
	return atomic.LoadInt64(&idx.totalRows)
}

// Built reports whether BuildIndex has completed (successfully or not).
func (idx *Indexer) Built() bool {
	return atomic.LoadInt32(&idx.built) != 0
}

// BuildIndex scans the file once, populating checkpoints and TotalRows. It
// is not cancellable: a partial checkpoint list from an I/O error remains
// valid to use for everything already checkpointed.
func (idx *Indexer) BuildIndex() error {
	f, err := os.Open(idx.filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := scanner.New(idx.format)
	stream := scanner.NewRecordStream(f, sc)

	var offset int64
	var rowCount int64

	if idx.format == scanner.FormatCSV {
		header, herr := stream.Next()
		if herr == io.EOF {
			atomic.StoreInt32(&idx.built, 1)
			return nil
		}
		if herr != nil {
			return herr
		}
		offset += int64(len(header))
		idx.appendCheckpoint(Checkpoint{ByteOffset: offset, RowIndex: 0})
	}

	for {
		rec, rerr := stream.Next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}

		offset += int64(len(rec))
		rowCount++

		if rowCount%CheckpointInterval == 0 {
			idx.appendCheckpoint(Checkpoint{ByteOffset: offset, RowIndex: rowCount})
			atomic.StoreInt64(&idx.totalRows, rowCount)
		}
		if idx.progress != nil && rowCount%CheckpointInterval == 0 {
			idx.progress("indexing", rowCount, -1, "")
		}
	}

	atomic.StoreInt64(&idx.totalRows, rowCount)
	atomic.StoreInt32(&idx.built, 1)
	if idx.progress != nil {
		idx.progress("indexing", rowCount, rowCount, "index complete")
	}
	return nil
}

func (idx *Indexer) appendCheckpoint(cp Checkpoint) {
	idx.mu.Lock()
	idx.checkpoints = append(idx.checkpoints, cp)
	idx.mu.Unlock()
}

// GetCheckPoint returns the largest checkpoint at or before targetRow,
// along with the number of rows still to skip from it to reach targetRow.
// If no checkpoint exists yet (pre-BuildIndex for a CSV source), it
// returns the (-1, 0) "not ready" sentinel. GetCheckPoint never allocates.
func (idx *Indexer) GetCheckPoint(targetRow int64) (byteOffset int64, rowOffset int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if len(idx.checkpoints) == 0 {
		return -1, 0
	}

	// Binary search for the largest checkpoint with RowIndex <= targetRow.
	lo, hi := 0, len(idx.checkpoints)-1
	best := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		if idx.checkpoints[mid].RowIndex <= targetRow {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	cp := idx.checkpoints[best]
	return cp.ByteOffset, targetRow - cp.RowIndex
}

// Checkpoints returns a copy of the currently known checkpoints, for
// diagnostics and tests.
func (idx *Indexer) Checkpoints() []Checkpoint {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	out := make([]Checkpoint, len(idx.checkpoints))
	copy(out, idx.checkpoints)
	return out
}
