package boostcamp

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is a loosely typed scalar field from a Boostcamp export. The app has
// shipped the same field as a string in one version and a number or null in
// the next, so scalars decode into a Value and formatting is deferred to
// output time. Numbers keep their original literal via json.Number.
type Value struct {
	v any
}

// NewValue wraps a Go value for tests and backfills.
func NewValue(v any) Value {
	return Value{v: v}
}

// UnmarshalJSON accepts any JSON value. Objects and arrays are kept as their
// decoded form rather than rejected; a null decodes to the zero Value.
func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return err
	}
	v.v = out
	return nil
}

// MarshalJSON writes the underlying value back out.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.v)
}

// IsNull reports whether the field was absent or JSON null.
func (v Value) IsNull() bool {
	return v.v == nil
}

// Any returns the decoded value, or nil for absent/null fields.
func (v Value) Any() any {
	return v.v
}

// Or returns the decoded value, or def when the field was absent/null.
func (v Value) Or(def any) any {
	if v.v == nil {
		return def
	}
	return v.v
}

// String renders the value as a cell string. Absent/null becomes "",
// numbers keep their source literal ("100" stays "100", not "100.0").
func (v Value) String() string {
	switch x := v.v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}

// Float returns the numeric value and true when the field holds a number or
// a string that parses as one.
func (v Value) Float() (float64, bool) {
	switch x := v.v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		var n json.Number = json.Number(x)
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
