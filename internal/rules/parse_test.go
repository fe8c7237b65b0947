package rules

import (
	"errors"
	"testing"
)

func TestParseCondition_Valid(t *testing.T) {
	tests := []struct {
		name   string
		spec   ConditionSpec
		wantOp string
	}{
		{"eq string", ConditionSpec{Field: "profile.gender", Op: "eq", Value: "male", Weight: 2}, "eq"},
		{"gt int operand", ConditionSpec{Field: "profile.age", Op: "gt", Value: 50, Weight: 3}, "gt"},
		{"lte float operand", ConditionSpec{Field: "daily.sleep_hours", Op: "LTE", Value: 6.5, Weight: 4}, "lte"},
		{"in list", ConditionSpec{Field: "lifestyle.diet_type", Op: "in", Value: []any{"vegan", "vegetarian"}, Weight: 5}, "in"},
		{"not_in list", ConditionSpec{Field: "lifestyle.diet_type", Op: "not_in", Value: []any{"keto"}, Weight: 1}, "not_in"},
		{"contains", ConditionSpec{Field: "health.intolerances", Op: "contains", Value: "fish", Weight: 3}, "contains"},
		{"not_empty ignores value", ConditionSpec{Field: "health.medications", Op: "not_empty", Weight: 2}, "not_empty"},
		{"unknown kept", ConditionSpec{Field: "profile.age", Op: "between", Value: 1, Weight: 2}, "between"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := ParseCondition(tt.spec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cond.Op.Name() != tt.wantOp {
				t.Errorf("expected op %q, got %q", tt.wantOp, cond.Op.Name())
			}
			if cond.Description == "" {
				t.Error("expected a description fallback")
			}
		})
	}
}

func TestParseCondition_RejectsIllTypedOperands(t *testing.T) {
	tests := []struct {
		name string
		spec ConditionSpec
		want error
	}{
		{"gt with string", ConditionSpec{Field: "profile.age", Op: "gt", Value: "old", Weight: 2}, ErrInvalidOperand},
		{"in with scalar", ConditionSpec{Field: "lifestyle.diet_type", Op: "in", Value: "vegan", Weight: 2}, ErrInvalidOperand},
		{"in with nested list", ConditionSpec{Field: "lifestyle.diet_type", Op: "in", Value: []any{[]any{"a"}}, Weight: 2}, ErrInvalidOperand},
		{"contains with number", ConditionSpec{Field: "health.intolerances", Op: "contains", Value: 3, Weight: 2}, ErrInvalidOperand},
		{"eq with nil", ConditionSpec{Field: "profile.gender", Op: "eq", Weight: 2}, ErrInvalidOperand},
		{"weight zero", ConditionSpec{Field: "profile.gender", Op: "not_empty", Weight: 0}, ErrInvalidWeight},
		{"weight six", ConditionSpec{Field: "profile.gender", Op: "not_empty", Weight: 6}, ErrInvalidWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCondition(tt.spec)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCondition_SpecRoundTrip(t *testing.T) {
	spec := ConditionSpec{
		Field:       "lifestyle.diet_type",
		Op:          "in",
		Value:       []any{"vegan", "vegetarian"},
		Weight:      5,
		Description: "Plant-based diet",
	}
	cond, err := ParseCondition(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	again, err := ParseCondition(cond.Spec())
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}

	m, ok := again.Op.(Membership)
	if !ok {
		t.Fatalf("expected Membership, got %T", again.Op)
	}
	if len(m.Values) != 2 || m.Values[1].Str != "vegetarian" {
		t.Errorf("unexpected values: %+v", m.Values)
	}
}
