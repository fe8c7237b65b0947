package rules

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOperand is returned when an operand does not fit its operator
var ErrInvalidOperand = errors.New("invalid operand")

// ErrInvalidWeight is returned for weights outside 1-5
var ErrInvalidWeight = errors.New("weight must be between 1 and 5")

const (
	MinWeight = 1
	MaxWeight = 5
)

// ConditionSpec is the declarative, externally editable form of a condition
type ConditionSpec struct {
	Field       string `yaml:"field" json:"field"`
	Op          string `yaml:"op" json:"op"`
	Value       any    `yaml:"value,omitempty" json:"value,omitempty"`
	SubField    string `yaml:"sub_field,omitempty" json:"sub_field,omitempty"`
	Weight      int    `yaml:"weight" json:"weight"`
	Description string `yaml:"description" json:"description"`
}

// ParseCondition builds a typed Condition from its declarative form.
// Operands that cannot work with their operator are rejected here rather than at
// evaluation time. Unknown operators and fields are kept so evaluation can report them.
func ParseCondition(spec ConditionSpec) (Condition, error) {
	cond := Condition{
		Field:       FieldID(strings.TrimSpace(spec.Field)),
		Weight:      spec.Weight,
		Description: strings.TrimSpace(spec.Description),
	}
	if cond.Weight < MinWeight || cond.Weight > MaxWeight {
		return cond, fmt.Errorf("%w: %d (%s)", ErrInvalidWeight, spec.Weight, spec.Field)
	}
	if cond.Description == "" {
		cond.Description = fmt.Sprintf("%s %s %v", spec.Field, spec.Op, spec.Value)
	}

	op, err := parseOperator(spec)
	if err != nil {
		return cond, fmt.Errorf("%s %s: %w", spec.Field, spec.Op, err)
	}
	cond.Op = op
	return cond, nil
}

func parseOperator(spec ConditionSpec) (Operator, error) {
	name := strings.ToLower(strings.TrimSpace(spec.Op))
	switch name {
	case "eq", "neq":
		s, err := toScalar(spec.Value)
		if err != nil {
			return nil, err
		}
		if name == "eq" {
			return Equals{Value: s}, nil
		}
		return NotEquals{Value: s}, nil

	case "gt", "gte", "lt", "lte":
		n, ok := toNumber(spec.Value)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs a number, got %T", ErrInvalidOperand, name, spec.Value)
		}
		return Compare{Op: Comparison(name), Threshold: n}, nil

	case "in", "not_in":
		items, ok := spec.Value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs a list, got %T", ErrInvalidOperand, name, spec.Value)
		}
		values := make([]Scalar, 0, len(items))
		for _, item := range items {
			s, err := toScalar(item)
			if err != nil {
				return nil, err
			}
			values = append(values, s)
		}
		return Membership{Values: values, Negate: name == "not_in"}, nil

	case "contains":
		switch v := spec.Value.(type) {
		case string:
			if v == "" {
				return nil, fmt.Errorf("%w: contains needs a non-empty string", ErrInvalidOperand)
			}
			return Contains{Needle: v, SubField: strings.TrimSpace(spec.SubField)}, nil
		default:
			return nil, fmt.Errorf("%w: contains needs a string, got %T", ErrInvalidOperand, spec.Value)
		}

	case "not_empty":
		return NotEmpty{}, nil
	}

	return Unknown{Op: spec.Op}, nil
}

func toScalar(v any) (Scalar, error) {
	switch t := v.(type) {
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	}
	if n, ok := toNumber(v); ok {
		return Number(n), nil
	}
	return Scalar{}, fmt.Errorf("%w: expected string, number or bool, got %T", ErrInvalidOperand, v)
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

// Spec converts a condition back to its declarative form
func (c Condition) Spec() ConditionSpec {
	spec := ConditionSpec{
		Field:       string(c.Field),
		Weight:      c.Weight,
		Description: c.Description,
	}
	if c.Op == nil {
		return spec
	}
	spec.Op = c.Op.Name()
	switch op := c.Op.(type) {
	case Equals:
		spec.Value = op.Value.native()
	case NotEquals:
		spec.Value = op.Value.native()
	case Compare:
		spec.Value = op.Threshold
	case Membership:
		items := make([]any, 0, len(op.Values))
		for _, v := range op.Values {
			items = append(items, v.native())
		}
		spec.Value = items
	case Contains:
		spec.Value = op.Needle
		spec.SubField = op.SubField
	}
	return spec
}

func (s Scalar) native() any {
	switch s.Kind {
	case KindNumber:
		return s.Num
	case KindBool:
		return s.Bool
	default:
		return s.Str
	}
}
