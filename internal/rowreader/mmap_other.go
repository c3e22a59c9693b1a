//go:build !unix

package rowreader

import (
	"io"
	"os"
)

// tryMmap is unavailable outside unix; callers fall back to positioned
// reads through the *os.File directly.
func tryMmap(f *os.File, size int64) (io.ReaderAt, func() error, bool) {
	return nil, nil, false
}
