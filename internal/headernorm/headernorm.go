// Package headernorm replaces empty or whitespace-only CSV header cells
// with spreadsheet-style column names, so every column in a schema always
// has a usable, unique-looking name even when the source file's header
// row is sparse.
package headernorm

import "strings"

// spreadsheetLabels yields successive bijective base-26 column labels
// (A, B, ..., Z, AA, AB, ..., ZZ, AAA, ...) each time it is called,
// starting from A.
func spreadsheetLabels() func() string {
	n := 0
	return func() string {
		label := excelColumnName(n)
		n++
		return label
	}
}

// excelColumnName renders n (0-based) as a bijective base-26 label,
// building the letters least-significant first and reversing in place.
func excelColumnName(n int) string {
	letters := make([]byte, 0, 4)
	for n >= 0 {
		letters = append(letters, byte('A'+n%26))
		n = n/26 - 1
	}
	for i, j := 0, len(letters)-1; i < j; i, j = i+1, j-1 {
		letters[i], letters[j] = letters[j], letters[i]
	}
	return string(letters)
}

// Normalize replaces every empty or whitespace-only header cell with
// Unnamed_A, Unnamed_B, ..., Unnamed_Z, Unnamed_AA, ... in order of
// appearance. Non-empty cells are returned unchanged.
func Normalize(header []string) []string {
	normalized := make([]string, len(header))
	nextLabel := spreadsheetLabels()

	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			normalized[i] = "Unnamed_" + nextLabel()
			continue
		}
		normalized[i] = h
	}

	return normalized
}
