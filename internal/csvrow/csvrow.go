// Package csvrow splits a single already-delimited CSV record (as produced
// by the record scanner, terminator already stripped) into its fields,
// honoring RFC 4180 quoting. It is a thin encoding/csv wrapper shared by
// the schema scanner and the table source, which both need field-level
// access to a raw CSV record.
package csvrow

import (
	"encoding/csv"
	"strings"
)

// Split parses raw as one CSV record and returns its fields. It returns nil
// if raw is not a well-formed single CSV record (e.g. an unterminated
// quote).
func Split(raw []byte) []string {
	r := csv.NewReader(strings.NewReader(string(raw)))
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err != nil {
		return nil
	}
	return fields
}
