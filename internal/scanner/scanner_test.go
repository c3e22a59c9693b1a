package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSVScanner_SimpleLines(t *testing.T) {
	s := New(FormatCSV)
	buf := []byte("col1,col2\nval1,val2\n")

	completed, consumed := s.FindNextLineLength(buf)
	assert.True(t, completed)
	assert.Equal(t, len("col1,col2\n"), consumed)

	completed, consumed = s.FindNextLineLength(buf[consumed:])
	assert.True(t, completed)
	assert.Equal(t, len("val1,val2\n"), consumed)
}

func TestCSVScanner_QuotedNewlineNotTerminator(t *testing.T) {
	s := New(FormatCSV)
	buf := []byte("\"a\nb\",c\n")

	completed, consumed := s.FindNextLineLength(buf)
	assert.True(t, completed)
	assert.Equal(t, len(buf), consumed)
}

func TestCSVScanner_EmptyBuffer(t *testing.T) {
	s := New(FormatCSV)
	completed, consumed := s.FindNextLineLength(nil)
	assert.False(t, completed)
	assert.Equal(t, 0, consumed)
}

func TestCSVScanner_PartialRecord(t *testing.T) {
	s := New(FormatCSV)
	buf := []byte("no newline here")
	completed, consumed := s.FindNextLineLength(buf)
	assert.False(t, completed)
	assert.Equal(t, len(buf), consumed)
}

func TestCSVScanner_SpanningBuffers(t *testing.T) {
	s := New(FormatCSV)
	first := []byte("\"partial")
	completed, consumed := s.FindNextLineLength(first)
	assert.False(t, completed)
	assert.Equal(t, len(first), consumed)

	// Still in quotes from the first window; the newline here must not
	// terminate the record.
	second := []byte(" field\nmore\"\n")
	completed, consumed = s.FindNextLineLength(second)
	assert.True(t, completed)
	assert.Equal(t, len(second), consumed)
}

func TestJSONLinesScanner_SimpleRecords(t *testing.T) {
	s := New(FormatJSONLines)
	buf := []byte(`{"a":1}` + "\n" + `{"a":2}` + "\n")

	completed, consumed := s.FindNextLineLength(buf)
	assert.True(t, completed)
	assert.Equal(t, len(`{"a":1}`+"\n"), consumed)
}

func TestJSONLinesScanner_EscapedQuoteDoesNotCloseString(t *testing.T) {
	s := New(FormatJSONLines)
	buf := []byte(`{"a":"x\"y"}` + "\n")

	completed, consumed := s.FindNextLineLength(buf)
	assert.True(t, completed)
	assert.Equal(t, len(buf), consumed)
}

func TestJSONLinesScanner_EscapedBackslashThenQuoteCloses(t *testing.T) {
	s := New(FormatJSONLines)
	// Value is: x\  (backslash-backslash then closing quote) -> the quote
	// is NOT escaped because the second backslash consumed the escape of
	// the first.
	buf := []byte(`{"a":"x\\"}` + "\n")

	completed, consumed := s.FindNextLineLength(buf)
	assert.True(t, completed)
	assert.Equal(t, len(buf), consumed)
}

func TestJSONLinesScanner_OrdinaryByteClearsEscape(t *testing.T) {
	s := New(FormatJSONLines)
	// \n inside the string is the two-character escape sequence for
	// newline: backslash then the letter n. The letter n is an ordinary
	// byte that must clear the escape flag before the closing quote.
	buf := []byte(`{"a":"x\ny"}` + "\n")

	completed, consumed := s.FindNextLineLength(buf)
	assert.True(t, completed)
	assert.Equal(t, len(buf), consumed)
}

func TestJSONLinesScanner_NewlineInsideStringNotTerminator(t *testing.T) {
	s := New(FormatJSONLines)
	raw := "{\"a\":\"line1\nline2\"}\n"
	buf := []byte(raw)

	completed, consumed := s.FindNextLineLength(buf)
	assert.True(t, completed)
	assert.Equal(t, len(buf), consumed)
}

func TestLineScanner_ConsumedBounds(t *testing.T) {
	for _, format := range []Format{FormatCSV, FormatJSONLines} {
		s := New(format)
		bufs := [][]byte{nil, {}, []byte("x"), []byte("a,b\n"), []byte(`{"a":1}` + "\n")}
		for _, b := range bufs {
			completed, consumed := s.FindNextLineLength(b)
			assert.True(t, consumed >= 0 && consumed <= len(b))
			if len(b) == 0 {
				assert.Equal(t, 0, consumed)
				assert.False(t, completed)
			}
		}
	}
}
