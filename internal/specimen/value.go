package specimen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	Absent Kind = iota
	String
	Number
	Bool
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	default:
		return "absent"
	}
}

// Value is a raw cell: a string, a number, a boolean, or nothing at all.
// The zero Value is Absent.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Str wraps a string cell.
func Str(s string) Value { return Value{kind: String, str: s} }

// Num wraps a numeric cell. NaN and infinities are not representable in the
// delimited text format and are stored as Absent.
func Num(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: Number, num: f}
}

// Boolean wraps a boolean cell. text is kept as read ("TRUE", "false") so the
// cell writes back unchanged; anything other than a true/false literal is a
// plain String.
func Boolean(text string) Value {
	if _, ok := boolLiteral(text); !ok {
		return Str(text)
	}
	return Value{kind: Bool, str: text}
}

func boolLiteral(s string) (bool, bool) {
	switch s {
	case "true", "TRUE":
		return true, true
	case "false", "FALSE":
		return false, true
	}
	return false, false
}

// Null returns the Absent value.
func Null() Value { return Value{} }

// ValueOf coerces a decoded Go value (as produced by encoding/json or a
// spreadsheet reader) into a Value. Types that cannot be interpreted as a
// scalar become Absent.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case string:
		return Str(x)
	case float64:
		return Num(x)
	case float32:
		return Num(float64(x))
	case int:
		return Num(float64(x))
	case int32:
		return Num(float64(x))
	case int64:
		return Num(float64(x))
	case uint:
		return Num(float64(x))
	case uint32:
		return Num(float64(x))
	case uint64:
		return Num(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Str(x.String())
		}
		return Num(f)
	case bool:
		return Boolean(strconv.FormatBool(x))
	default:
		return Value{}
	}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v carries no data.
func (v Value) IsAbsent() bool { return v.kind == Absent }

// Text returns the string payload when v is a String.
func (v Value) Text() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.str, true
}

// Bool returns the boolean payload when v is a Bool.
func (v Value) Bool() (bool, bool) {
	if v.kind != Bool {
		return false, false
	}
	return boolLiteral(v.str)
}

// Float returns the numeric payload when v is a Number.
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	return v.num, true
}

// String renders v in its canonical text form. Numbers use the shortest
// decimal representation that parses back to the same float; booleans keep
// their source text; Absent is "".
func (v Value) String() string {
	switch v.kind {
	case String, Bool:
		return v.str
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Equal reports whether two values hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case String, Bool:
		return v.str == o.str
	case Number:
		return v.num == o.num
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case String:
		return json.Marshal(v.str)
	case Number:
		return json.Marshal(v.num)
	case Bool:
		b, _ := v.Bool()
		return json.Marshal(b)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*v = Value{}
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Str(s)
	case 't', 'f':
		var x bool
		if err := json.Unmarshal(b, &x); err != nil {
			return err
		}
		*v = Boolean(strconv.FormatBool(x))
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("specimen value: %w", err)
		}
		*v = Num(f)
	}
	return nil
}
