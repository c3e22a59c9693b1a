package coordinator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/minio/highwayhash"
)

// contentFingerprintKey is the HighwayHash key used for content
// fingerprinting, so a file's hash is stable across sessions regardless
// of which coordinator instance computed it. Deriving it from a fixed
// passphrase guarantees the 32 bytes HighwayHash requires without a
// hand-counted byte literal.
var contentFingerprintKey = sha256.Sum256([]byte("datamorph.coordinator.file-fingerprint"))

// FileHash computes a HighwayHash fingerprint of filePath's content and
// returns it hex-encoded. Files with identical content hash identically,
// whatever their path.
func FileHash(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := highwayhash.New(contentFingerprintKey[:])
	if err != nil {
		return "", fmt.Errorf("coordinator: initializing content hash: %w", err)
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("coordinator: hashing %s: %w", filePath, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
