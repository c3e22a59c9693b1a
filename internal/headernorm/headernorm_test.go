package headernorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeReplacesEmptyHeaders(t *testing.T) {
	got := Normalize([]string{"name", "", "age", "  ", "city"})
	assert.Equal(t, []string{"name", "Unnamed_A", "age", "Unnamed_B", "city"}, got)
}

func TestNormalizePreservesNonEmptyHeaders(t *testing.T) {
	got := Normalize([]string{"a", "b", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestExcelColumnNameWrapsPastZ(t *testing.T) {
	assert.Equal(t, "A", excelColumnName(0))
	assert.Equal(t, "Z", excelColumnName(25))
	assert.Equal(t, "AA", excelColumnName(26))
	assert.Equal(t, "AB", excelColumnName(27))
}
