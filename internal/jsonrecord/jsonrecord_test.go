package jsonrecord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOrderedObject_PreservesOrder(t *testing.T) {
	keys, values, ok := DecodeOrderedObject([]byte(`{"id":1,"name":"Alice","age":null}`))
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name", "age"}, keys)
	require.Len(t, values, 3)
	assert.True(t, IsNullRaw(values[2]))
}

func TestDecodeOrderedObject_NonObjectRejected(t *testing.T) {
	_, _, ok := DecodeOrderedObject([]byte(`[1,2,3]`))
	assert.False(t, ok)

	_, _, ok = DecodeOrderedObject([]byte("not-json"))
	assert.False(t, ok)
}

// TestExtractCell_S2 mirrors the literal scenario: name extracts its
// string value, a missing key yields "<null>", and a non-object line
// yields "<error>".
func TestExtractCell_S2(t *testing.T) {
	line := []byte(`{"id":1,"name":"Alice"}`)
	assert.Equal(t, "Alice", ExtractCell(line, "name"))
	assert.Equal(t, "<null>", ExtractCell(line, "age"))
	assert.Equal(t, "<error>", ExtractCell([]byte("not-json"), "id"))
}

func TestExtractCell_ExplicitNull(t *testing.T) {
	line := []byte(`{"age":null}`)
	assert.Equal(t, "<null>", ExtractCell(line, "age"))
}

func TestStringify_Number(t *testing.T) {
	keys, values, ok := DecodeOrderedObject([]byte(`{"n":42}`))
	require.True(t, ok)
	require.Equal(t, []string{"n"}, keys)
	assert.Equal(t, "42", Stringify(values[0]))
}
