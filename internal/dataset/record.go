package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Record is one decoded row: field names in their original column order
// mapped to scalar values. Values are float64, string, bool or nil;
// decoders may also leave nested JSON values in place, the analysis
// layers simply ignore anything they cannot coerce.
type Record struct {
	fields []string
	values map[string]any
}

func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores a value, appending the field to the column order on first use.
func (r *Record) Set(field string, v any) {
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = v
}

func (r *Record) Get(field string) (any, bool) {
	v, ok := r.values[field]
	return v, ok
}

func (r *Record) Value(field string) any {
	return r.values[field]
}

func (r *Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Fields returns field names in first-set order.
func (r *Record) Fields() []string {
	return r.fields
}

func (r *Record) Len() int {
	return len(r.fields)
}

// MarshalJSON emits the record as a JSON object preserving field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(r.values[f])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON rebuilds the record from a JSON object, keeping the key
// order of the document.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("dataset: record must be a JSON object, got %v", tok)
	}

	r.fields = nil
	r.values = make(map[string]any)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("dataset: unexpected object key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		v, err := decodeScalar(raw)
		if err != nil {
			return err
		}
		r.Set(key, v)
	}
	return nil
}

func decodeScalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		if err != nil {
			return n.String(), nil
		}
		return f, nil
	}
	return v, nil
}

// IsNumericValue reports whether v already is a number, or is a string made
// of digits with at most one decimal point. Signed or exponent notation does
// not qualify; this is the strict rule shared by the cleaner and classifier.
func IsNumericValue(v any) bool {
	switch t := v.(type) {
	case float64:
		return !math.IsNaN(t)
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case string:
		return isNumericString(t)
	}
	return false
}

func isNumericString(s string) bool {
	if s == "" {
		return false
	}
	dots := 0
	digits := 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}

// Float coerces v to a float64, accepting any parseable numeric string.
// This is the loose conversion the generators use; callers treat an error
// as a per-field fault and drop that field's contribution.
func Float(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) {
			return 0, fmt.Errorf("dataset: NaN value")
		}
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("dataset: not a number: %q", t)
		}
		return f, nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("dataset: not a number: %T", v)
}

// Truthy mirrors the presence checks of the trend generator: nil, empty
// string and numeric zero do not count as a usable value.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case bool:
		return t
	}
	return true
}

// Stringify renders a scalar the way group keys are built: a label for
// category grouping and chart axes.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// CompareValues orders two raw values: numbers numerically, strings
// lexically, mixed types by their string form. Date values are compared
// this way on purpose; no calendar parsing happens here.
func CompareValues(a, b any) int {
	fa, aerr := Float(a)
	fb, berr := Float(b)
	if aerr == nil && berr == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	sa, sb := Stringify(a), Stringify(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}
