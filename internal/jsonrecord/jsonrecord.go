// Package jsonrecord provides the JSON Lines value decoding shared by the
// schema scanner and the table source: decoding a line into its ordered
// key/value pairs (object property order matters for schema column order,
// which a plain map[string]interface{} unmarshal would lose) and extracting
// a single cell's display string from a line.
package jsonrecord

import (
	"bytes"
	"encoding/json"
)

// DecodeOrderedObject parses record as a single JSON object and returns its
// top-level keys and raw values in declaration order. ok is false if record
// is not a well-formed single JSON object value (e.g. malformed JSON, or a
// JSON array/scalar at the top level).
func DecodeOrderedObject(record []byte) (keys []string, values []json.RawMessage, ok bool) {
	dec := json.NewDecoder(bytes.NewReader(record))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, false
	}
	delim, isDelim := tok.(json.Delim)
	if !isDelim || delim != '{' {
		return nil, nil, false
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, false
		}
		key, isStr := keyTok.(string)
		if !isStr {
			return nil, nil, false
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, false
		}
		keys = append(keys, key)
		values = append(values, raw)
	}

	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, nil, false
	}
	if dec.More() { // trailing data after the object
		return nil, nil, false
	}
	return keys, values, true
}

// IsNullRaw reports whether raw is the JSON null literal (ignoring
// surrounding whitespace) or empty.
func IsNullRaw(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null"
}

// Stringify renders a raw JSON value the way it should be displayed as a
// table cell: unquoted strings, literal text for numbers/booleans, and the
// raw JSON text for objects/arrays. Null values are rendered as "<null>",
// matching ExtractCell's missing-key behavior.
func Stringify(raw json.RawMessage) string {
	if IsNullRaw(raw) {
		return "<null>"
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

// ExtractCell implements the JSON Lines display-time cell extraction
// contract: "<error>" for a line that does not parse as a JSON object,
// "<null>" for a missing key or an explicit JSON null, and the stringified
// value otherwise.
func ExtractCell(record []byte, key string) string {
	keys, values, ok := DecodeOrderedObject(record)
	if !ok {
		return "<error>"
	}
	for i, k := range keys {
		if k == key {
			return Stringify(values[i])
		}
	}
	return "<null>"
}
