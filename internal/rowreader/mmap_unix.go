//go:build unix

package rowreader

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// mmapReaderAt wraps a read-only memory mapping of a file: the whole file
// is mapped once and random access becomes a plain slice read instead of
// a positioned syscall per batch.
type mmapReaderAt struct {
	data []byte
}

// tryMmap memory-maps f for read-only access. ok is false when mmap is
// unavailable or the file is empty, in which case the caller should fall
// back to ordinary positioned reads.
func tryMmap(f *os.File, size int64) (io.ReaderAt, func() error, bool) {
	if size <= 0 {
		return nil, nil, false
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, false
	}
	m := &mmapReaderAt{data: data}
	return m, m.close, true
}

func (m *mmapReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *mmapReaderAt) close() error {
	return unix.Munmap(m.data)
}
