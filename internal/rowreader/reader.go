// Package rowreader extracts a batch of raw records starting at a given
// (byteOffset, skip) pair, re-scanning minimally rather than re-reading the
// file from the start.
package rowreader

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ohler55/ojg/oj"

	"github.com/scrapbird/datamorph/internal/dmerrors"
	"github.com/scrapbird/datamorph/internal/scanner"
)

// Reader owns a positioned view of a file (memory-mapped where available,
// otherwise a plain *os.File) and a scratch scanner used to re-derive
// record boundaries on every call. It holds no state between calls beyond
// that: reads are stateless with respect to prior ReadRecords calls.
type Reader struct {
	format scanner.Format
	path   string

	mu       sync.Mutex
	file     *os.File
	size     int64
	src      io.ReaderAt
	closeSrc func() error
	disposed bool
}

// Path returns the file path this Reader was opened against, so a caller
// that needs a second independent Reader over the same file (e.g. the
// filter row indexer) does not have to re-derive it.
func (r *Reader) Path() string {
	return r.path
}

// New opens filePath for random-access record reads.
func New(filePath string, format scanner.Format) (*Reader, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := stat.Size()

	src, closeSrc, ok := tryMmap(f, size)
	if !ok {
		src = f
		closeSrc = nil
	}

	return &Reader{
		format:   format,
		path:     filePath,
		file:     f,
		size:     size,
		src:      src,
		closeSrc: closeSrc,
	}, nil
}

// Close releases the reader's file handle (and mapping, if any). Further
// calls to ReadRecords fail with dmerrors.ErrDisposed.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return nil
	}
	r.disposed = true

	var err error
	if r.closeSrc != nil {
		err = r.closeSrc()
	}
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadRecords collects up to maxCount records starting byteOffset bytes
// into the file, after skipping skip completed records. Each returned
// slice has its trailing terminator (and optional CR) stripped and is
// owned by the caller. It returns an empty (nil) slice, not an error, when
// byteOffset is at or beyond EOF or skip exhausts the file before the
// collect phase begins. If a JSON Lines record fails validation,
// ReadRecords stops there and returns dmerrors.ErrMalformedRecord
// alongside the records already collected before it, rather than
// discarding them; the caller can keep those and resume past the bad
// record.
func (r *Reader) ReadRecords(byteOffset int64, skip int, maxCount int) ([][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return nil, dmerrors.ErrDisposed
	}
	if byteOffset < 0 || skip < 0 || maxCount < 0 {
		return nil, dmerrors.ErrArgumentInvalid
	}
	if byteOffset >= r.size {
		return nil, nil
	}

	section := io.NewSectionReader(r.src, byteOffset, r.size-byteOffset)
	sc := scanner.New(r.format)
	stream := scanner.NewRecordStream(section, sc)

	for i := 0; i < skip; i++ {
		if _, err := stream.Next(); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}
	}

	var out [][]byte
	for i := 0; i < maxCount; i++ {
		rec, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		trimmed := scanner.TrimTerminator(rec)
		owned := make([]byte, len(trimmed))
		copy(owned, trimmed)

		if r.format == scanner.FormatJSONLines && len(owned) > 0 {
			if _, verr := oj.Parse(owned); verr != nil {
				return out, fmt.Errorf("%w: record %d: %v", dmerrors.ErrMalformedRecord, i, verr)
			}
		}

		out = append(out, owned)
	}
	return out, nil
}
