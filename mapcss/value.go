package mapcss

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type ValueKind int

const (
	KindUndefined ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindVector
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindVector:
		return "vector"
	default:
		return "undefined"
	}
}

// Value is the result of evaluating an expression. The zero Value is undefined.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	vec  []float64
}

var Undefined = Value{}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Vector(v ...float64) Value {
	vec := make([]float64, len(v))
	copy(vec, v)
	return Value{kind: KindVector, vec: vec}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsDefined() bool {
	return v.kind != KindUndefined
}

// Float64 returns the numeric interpretation of v. Numeric strings are parsed,
// the empty string is 0, booleans are 1 or 0 and single element vectors unwrap.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, !math.IsNaN(v.num)
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindString:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	case KindVector:
		if len(v.vec) == 1 {
			return v.vec[0], true
		}
	}
	return 0, false
}

// Floats returns the vector elements, or a one element slice for numeric scalars.
func (v Value) Floats() ([]float64, bool) {
	if v.kind == KindVector {
		return v.vec, true
	}
	f, ok := v.Float64()
	if !ok {
		return nil, false
	}
	return []float64{f}, true
}

func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindBool:
		return v.b
	case KindVector:
		return true
	}
	return false
}

// String formats the value as text. Undefined formats as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindVector:
		parts := make([]string, len(v.vec))
		for i, f := range v.vec {
			parts[i] = formatNumber(f)
		}
		return strings.Join(parts, ",")
	}
	return ""
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindVector:
		if len(v.vec) != len(other.vec) {
			return false
		}
		for i := range v.vec {
			if v.vec[i] != other.vec[i] {
				return false
			}
		}
	}
	return true
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindVector:
		return json.Marshal(v.vec)
	}
	return []byte("null"), nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// isNumeric reports whether v takes part in arithmetic as a number rather than as text.
func isNumeric(v Value) bool {
	if v.kind == KindString {
		_, ok := v.Float64()
		return ok && strings.TrimSpace(v.str) != ""
	}
	return v.kind == KindNumber || v.kind == KindBool
}
