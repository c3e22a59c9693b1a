// Package compressreader makes gzip, bzip2, xz, and lz4 sources
// transparent to the rest of the engine: it sniffs a file's magic bytes
// and, if compressed, decompresses it once into a plain temporary file
// that the indexer/reader pipeline can mmap and seek within normally.
// Random access into the engine's sparse-checkpoint design requires an
// io.ReaderAt over the whole file, which a streaming decompressor cannot
// provide directly, so compressed sources are materialized up front
// rather than decompressed lazily per read.
package compressreader

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Type identifies the compression format of a file, detected by magic
// bytes rather than file extension.
type Type int

const (
	None Type = iota
	Gzip
	Bzip2
	XZ
	LZ4
)

func (t Type) String() string {
	switch t {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case XZ:
		return "xz"
	case LZ4:
		return "lz4"
	default:
		return "none"
	}
}

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte{0x42, 0x5a, 0x68}
	xzMagic    = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
	lz4Magic   = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Detect reads a file's leading bytes and identifies its compression
// format, or None if no known magic matches.
func Detect(filePath string) (Type, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return None, err
	}
	defer f.Close()

	header := make([]byte, 6)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return None, err
	}
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return Gzip, nil
	case bytes.HasPrefix(header, bzip2Magic):
		return Bzip2, nil
	case bytes.HasPrefix(header, xzMagic):
		return XZ, nil
	case bytes.HasPrefix(header, lz4Magic):
		return LZ4, nil
	default:
		return None, nil
	}
}

// Open returns a path to a plain, uncompressed rendering of filePath,
// ready for random-access reading, and a cleanup func to release any
// temporary resources it created. If filePath is not compressed, it
// returns filePath unchanged and a no-op cleanup.
func Open(filePath string) (path string, cleanup func() error, err error) {
	kind, err := Detect(filePath)
	if err != nil {
		return "", nil, err
	}
	if kind == None {
		return filePath, func() error { return nil }, nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	var reader io.Reader
	switch kind {
	case Gzip:
		gzReader, gerr := gzip.NewReader(f)
		if gerr != nil {
			return "", nil, fmt.Errorf("compressreader: gzip: %w", gerr)
		}
		defer gzReader.Close()
		reader = gzReader
	case Bzip2:
		reader = bzip2.NewReader(f)
	case XZ:
		xzReader, xerr := xz.NewReader(f)
		if xerr != nil {
			return "", nil, fmt.Errorf("compressreader: xz: %w", xerr)
		}
		reader = xzReader
	case LZ4:
		reader = lz4.NewReader(f)
	default:
		return filePath, func() error { return nil }, nil
	}

	tmp, err := os.CreateTemp("", "datamorph-*.decompressed")
	if err != nil {
		return "", nil, err
	}
	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("compressreader: decompressing %s: %w", kind, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}

	name := tmp.Name()
	return name, func() error { return os.Remove(name) }, nil
}
