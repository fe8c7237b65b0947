package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch is reported when an operator cannot be applied to the resolved field
	ErrTypeMismatch = errors.New("operator does not apply to field type")

	// ErrUnknownOperator is reported for operators outside the supported set
	ErrUnknownOperator = errors.New("unknown operator")
)

// Operator is the closed set of comparison operators. Each case carries its own typed operand.
type Operator interface {
	Name() string
	apply(v Value) (bool, error)
}

// Equals is exact equality ("eq")
type Equals struct{ Value Scalar }

// NotEquals is exact inequality ("neq")
type NotEquals struct{ Value Scalar }

// Comparison selects a numeric ordering
type Comparison string

const (
	GreaterThan        Comparison = "gt"
	GreaterThanOrEqual Comparison = "gte"
	LessThan           Comparison = "lt"
	LessThanOrEqual    Comparison = "lte"
)

// Compare is a numeric comparison against a fixed threshold
type Compare struct {
	Op        Comparison
	Threshold float64
}

// Membership tests the field against a set ("in" / "not_in")
type Membership struct {
	Values []Scalar
	Negate bool
}

// Contains matches list fields. For record lists the needle is a case-insensitive
// substring of SubField; for plain lists it must equal an element.
type Contains struct {
	Needle   string
	SubField string
}

// NotEmpty is met by a non-empty list or a non-null, non-blank scalar
type NotEmpty struct{}

// Unknown preserves an unsupported operator name so it can be reported instead of rejected
type Unknown struct{ Op string }

func (Equals) Name() string    { return "eq" }
func (NotEquals) Name() string { return "neq" }
func (c Compare) Name() string { return string(c.Op) }
func (Contains) Name() string  { return "contains" }
func (NotEmpty) Name() string  { return "not_empty" }
func (u Unknown) Name() string { return u.Op }

func (m Membership) Name() string {
	if m.Negate {
		return "not_in"
	}
	return "in"
}

func (o Equals) apply(v Value) (bool, error) {
	if !isScalar(v.Kind) {
		return false, mismatch(o, v)
	}
	return o.Value.matches(v), nil
}

func (o NotEquals) apply(v Value) (bool, error) {
	if !isScalar(v.Kind) {
		return false, mismatch(o, v)
	}
	return !o.Value.matches(v), nil
}

func (o Compare) apply(v Value) (bool, error) {
	if v.Kind != KindNumber {
		return false, mismatch(o, v)
	}
	switch o.Op {
	case GreaterThan:
		return v.Num > o.Threshold, nil
	case GreaterThanOrEqual:
		return v.Num >= o.Threshold, nil
	case LessThan:
		return v.Num < o.Threshold, nil
	case LessThanOrEqual:
		return v.Num <= o.Threshold, nil
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownOperator, o.Op)
}

func (o Membership) apply(v Value) (bool, error) {
	var found bool
	switch {
	case isScalar(v.Kind):
		for _, s := range o.Values {
			if s.matches(v) {
				found = true
				break
			}
		}
	case v.Kind == KindList:
		// any element in the set
		for _, item := range v.List {
			for _, s := range o.Values {
				if s.matchesString(item) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	default:
		return false, mismatch(o, v)
	}
	if o.Negate {
		return !found, nil
	}
	return found, nil
}

func (o Contains) apply(v Value) (bool, error) {
	switch v.Kind {
	case KindRecords:
		sub := o.SubField
		if sub == "" {
			sub = "name"
		}
		for _, rec := range v.Records {
			if field, ok := rec[sub]; ok && containsFold(field, o.Needle) {
				return true, nil
			}
		}
		return false, nil
	case KindList:
		for _, item := range v.List {
			if item == o.Needle {
				return true, nil
			}
		}
		return false, nil
	case KindString:
		return containsFold(v.Str, o.Needle), nil
	}
	return false, mismatch(o, v)
}

func (o NotEmpty) apply(v Value) (bool, error) {
	switch v.Kind {
	case KindList:
		return len(v.List) > 0, nil
	case KindRecords:
		return len(v.Records) > 0, nil
	case KindString:
		return isNonBlank(v.Str), nil
	case KindNumber, KindBool:
		return true, nil
	}
	return false, nil
}

func (o Unknown) apply(Value) (bool, error) {
	return false, fmt.Errorf("%w: %q", ErrUnknownOperator, o.Op)
}

func mismatch(op Operator, v Value) error {
	return fmt.Errorf("%w: %s on %s", ErrTypeMismatch, op.Name(), v.Kind)
}
