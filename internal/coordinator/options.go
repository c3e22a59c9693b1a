package coordinator

import "strings"

// OpenOptions carries the per-file settings a host passes when opening a
// source. Every field is optional; DefaultOpenOptions documents the zero
// value's meaning.
type OpenOptions struct {
	// Format forces CSV or JSON Lines interpretation instead of detecting
	// it from the file extension.
	Format FormatOverride

	// InitialScanRows overrides schema.DefaultInitialScanRows when > 0.
	InitialScanRows int

	// CacheSize overrides rowcache.DefaultCacheSize when > 0.
	CacheSize int

	// TimestampDisplayFormat, when non-empty, is applied to every
	// Timestamp column's ColumnSchema.DisplayFormat at schema-publish
	// time.
	TimestampDisplayFormat string
}

// FormatOverride forces a source format instead of detecting one.
type FormatOverride int

const (
	// FormatAuto detects the format from the file extension.
	FormatAuto FormatOverride = iota
	FormatForceCSV
	FormatForceJSONLines
)

// DefaultOpenOptions returns the zero-value OpenOptions: auto-detected
// format, default scan/cache sizes, default timestamp layout.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{}
}

// detectExtensionFormat maps a file path to a source format by extension,
// falling back to CSV for anything it does not recognize. Open passes it
// the resolved path; for a compressed source that is the decompressed
// temp file, whose name carries no format extension, so compressed
// sources are detected as CSV unless Format forces JSON Lines.
func detectExtensionFormat(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".jsonl"), strings.HasSuffix(lower, ".ndjson"), strings.HasSuffix(lower, ".jsonlines"):
		return "jsonlines"
	default:
		return "csv"
	}
}
