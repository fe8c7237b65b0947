package rules

import (
	"strconv"
	"strings"
)

// Kind is the runtime shape of a resolved snapshot value or a condition operand
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindString
	KindBool
	KindList    // list of plain strings
	KindRecords // list of structured records (e.g. intolerances)
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindRecords:
		return "records"
	default:
		return "missing"
	}
}

// Record is one structured list element, keyed by sub-field name
type Record map[string]string

// Value is a field resolved from a snapshot
type Value struct {
	Kind    Kind
	Num     float64
	Str     string
	Bool    bool
	List    []string
	Records []Record
}

// Present reports whether the field exists in the snapshot
func (v Value) Present() bool {
	return v.Kind != KindMissing
}

// Scalar is a statically typed comparison operand
type Scalar struct {
	Kind Kind // KindNumber, KindString or KindBool
	Num  float64
	Str  string
	Bool bool
}

// Number builds a numeric operand
func Number(f float64) Scalar {
	return Scalar{Kind: KindNumber, Num: f}
}

// String builds a string operand
func String(s string) Scalar {
	return Scalar{Kind: KindString, Str: s}
}

// Bool builds a boolean operand
func Bool(b bool) Scalar {
	return Scalar{Kind: KindBool, Bool: b}
}

func (s Scalar) String() string {
	switch s.Kind {
	case KindNumber:
		return strconv.FormatFloat(s.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(s.Bool)
	default:
		return s.Str
	}
}

// matches reports exact equality between a scalar field value and the operand.
// Values of different kinds are never equal.
func (s Scalar) matches(v Value) bool {
	if s.Kind != v.Kind {
		return false
	}
	switch s.Kind {
	case KindNumber:
		return s.Num == v.Num
	case KindString:
		return s.Str == v.Str
	case KindBool:
		return s.Bool == v.Bool
	}
	return false
}

func (s Scalar) matchesString(item string) bool {
	return s.Kind == KindString && s.Str == item
}

func isScalar(k Kind) bool {
	return k == KindNumber || k == KindString || k == KindBool
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func isNonBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
