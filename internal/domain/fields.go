package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RawField is a single form field as captured from a fillable PDF.
type RawField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RawFieldMap is the ordered set of fields captured from one document.
// Names are unique; order is capture order. Callers treat it as immutable.
type RawFieldMap []RawField

// NewRawFieldMap builds a RawFieldMap from (name, value) pairs, keeping the
// first occurrence of a repeated name.
func NewRawFieldMap(pairs ...string) RawFieldMap {
	if len(pairs)%2 != 0 {
		panic("domain.NewRawFieldMap: odd number of arguments")
	}
	m := make(RawFieldMap, 0, len(pairs)/2)
	seen := make(map[string]struct{}, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		if _, ok := seen[pairs[i]]; ok {
			continue
		}
		seen[pairs[i]] = struct{}{}
		m = append(m, RawField{Name: pairs[i], Value: pairs[i+1]})
	}
	return m
}

// Len returns the number of fields.
func (m RawFieldMap) Len() int { return len(m) }

// Names returns field names in capture order.
func (m RawFieldMap) Names() []string {
	names := make([]string, len(m))
	for i, f := range m {
		names[i] = f.Name
	}
	return names
}

// Get returns the value for an exact field name.
func (m RawFieldMap) Get(name string) (string, bool) {
	for _, f := range m {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Without returns a copy of m with the named fields removed, order preserved.
func (m RawFieldMap) Without(consumed map[string]struct{}) RawFieldMap {
	out := make(RawFieldMap, 0, len(m))
	for _, f := range m {
		if _, ok := consumed[f.Name]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

// NonEmpty returns a copy holding only fields with a non-blank value.
func (m RawFieldMap) NonEmpty() RawFieldMap {
	out := make(RawFieldMap, 0, len(m))
	for _, f := range m {
		if strings.TrimSpace(f.Value) != "" {
			out = append(out, f)
		}
	}
	return out
}

// NormalizeFieldName strips a trailing PDF array index, so
// "Form_CompletionDate_A[0]" becomes "Form_CompletionDate_A".
func NormalizeFieldName(name string) string {
	if !strings.HasSuffix(name, "]") {
		return name
	}
	open := strings.LastIndexByte(name, '[')
	if open <= 0 {
		return name
	}
	for _, r := range name[open+1 : len(name)-1] {
		if r < '0' || r > '9' {
			return name
		}
	}
	if open+1 == len(name)-1 {
		return name
	}
	return name[:open]
}

// MarshalJSON writes the fields as a JSON object in capture order.
func (m RawFieldMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of field values, keeping key order.
// Checkbox booleans and numbers are stored in their textual form; null
// becomes the empty string.
func (m *RawFieldMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("raw fields: %w", err)
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("raw fields: expected JSON object")
	}

	out := RawFieldMap{}
	seen := map[string]struct{}{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("raw fields: %w", err)
		}
		name, _ := tok.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("raw fields: field %q: %w", name, err)
		}
		value, err := scalarText(raw)
		if err != nil {
			return fmt.Errorf("raw fields: field %q: %w", name, err)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, RawField{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("raw fields: %w", err)
	}
	*m = out
	return nil
}

func scalarText(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
