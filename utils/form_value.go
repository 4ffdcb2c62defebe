package utils

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FormValue is a string field that also decodes from JSON numbers, booleans,
// null, objects and arrays, so a mistyped JSON field reaches validation
// instead of failing the whole decode. Numbers and booleans keep their
// literal text; null, objects and arrays decode as empty.
type FormValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = FormValue(s)
		return nil
	}
	if len(b) == 0 || b[0] == '{' || b[0] == '[' || string(b) == "null" {
		*v = ""
		return nil
	}
	*v = FormValue(b)
	return nil
}

// Trim returns v without surrounding whitespace.
func (v FormValue) Trim() FormValue {
	return FormValue(strings.TrimSpace(string(v)))
}

func (v FormValue) String() string {
	return string(v)
}
