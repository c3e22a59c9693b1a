package scanner

import "bytes"

// csvScanSet holds the two bytes a CSV scan cares about: the record
// terminator and the quote character. bytes.IndexAny on a two-byte set
// compiles down to a SIMD byte-set search on amd64/arm64, which keeps the
// scanner allocation-free and branch-light instead of a per-byte switch.
const csvScanSet = "\n\""

// CSVScanner implements LineScanner for RFC-4180-ish CSV: a newline inside
// a quoted field does not terminate the record.
type CSVScanner struct {
	inQuotes bool
}

// FindNextLineLength scans buf for the next unescaped record terminator.
func (s *CSVScanner) FindNextLineLength(buf []byte) (completed bool, consumed int) {
	if len(buf) == 0 {
		return false, 0
	}

	pos := 0
	for {
		rel := bytes.IndexAny(buf[pos:], csvScanSet)
		if rel == -1 {
			// Nothing of interest in the remainder; the whole buffer
			// belongs to the record in progress.
			return false, len(buf)
		}
		idx := pos + rel
		switch buf[idx] {
		case '"':
			s.inQuotes = !s.inQuotes
		case '\n':
			if !s.inQuotes {
				return true, idx + 1
			}
		}
		pos = idx + 1
		if pos >= len(buf) {
			return false, len(buf)
		}
	}
}
