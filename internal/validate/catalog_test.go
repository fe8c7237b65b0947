package validate

import (
	"strings"
	"testing"

	"github.com/ppiankov/supplematch/internal/catalog"
	"github.com/ppiankov/supplematch/internal/rules"
)

func TestCatalog_DefaultIsClean(t *testing.T) {
	file, err := catalog.ReadFile("")
	if err != nil {
		t.Fatalf("read embedded catalog: %v", err)
	}

	report := Catalog(file)
	if len(report.Issues) != 0 {
		for _, i := range report.Issues {
			t.Errorf("unexpected issue: %s", i)
		}
	}
	if report.Candidates == 0 || report.Conditions == 0 {
		t.Errorf("expected counts, got %+v", report)
	}
}

func TestCatalog_Issues(t *testing.T) {
	cond := func(field, op string, value any, weight int) rules.ConditionSpec {
		return rules.ConditionSpec{Field: field, Op: op, Value: value, Weight: weight, Description: "d"}
	}

	tests := []struct {
		name     string
		spec     catalog.CandidateSpec
		severity Severity
		contains string
	}{
		{"missing id", catalog.CandidateSpec{Categories: []string{"x"}, Positive: []rules.ConditionSpec{cond("profile.age", "gt", 1, 1)}}, SeverityError, "id is required"},
		{"no categories", catalog.CandidateSpec{ID: "a", Positive: []rules.ConditionSpec{cond("profile.age", "gt", 1, 1)}}, SeverityError, "category"},
		{"no positives", catalog.CandidateSpec{ID: "a", Categories: []string{"x"}}, SeverityWarning, "no positive conditions"},
		{"unknown field", catalog.CandidateSpec{ID: "a", Categories: []string{"x"}, Positive: []rules.ConditionSpec{cond("profile.shoe_size", "gt", 1, 1)}}, SeverityError, "unknown field"},
		{"unknown operator", catalog.CandidateSpec{ID: "a", Categories: []string{"x"}, Positive: []rules.ConditionSpec{cond("profile.age", "between", 1, 1)}}, SeverityError, "unknown operator"},
		{"bad weight", catalog.CandidateSpec{ID: "a", Categories: []string{"x"}, Positive: []rules.ConditionSpec{cond("profile.age", "gt", 1, 7)}}, SeverityError, "weight"},
		{"numeric op on string field", catalog.CandidateSpec{ID: "a", Categories: []string{"x"}, Positive: []rules.ConditionSpec{cond("profile.gender", "gt", 1, 1)}}, SeverityError, "cannot apply"},
		{"eq on list field", catalog.CandidateSpec{ID: "a", Categories: []string{"x"}, Positive: []rules.ConditionSpec{cond("fitness.training_types", "eq", "hiit", 1)}}, SeverityError, "cannot apply"},
		{"empty contraindication", catalog.CandidateSpec{ID: "a", Categories: []string{"x"}, Positive: []rules.ConditionSpec{cond("profile.age", "gt", 1, 1)}, Contraindications: []string{" "}}, SeverityError, "contraindication"},
		{"missing description", catalog.CandidateSpec{ID: "a", Categories: []string{"x"}, Positive: []rules.ConditionSpec{{Field: "profile.age", Op: "gt", Value: 1, Weight: 1}}}, SeverityWarning, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Catalog(catalog.File{Candidates: []catalog.CandidateSpec{tt.spec}})
			if len(report.Issues) != 1 {
				t.Fatalf("expected 1 issue, got %v", report.Issues)
			}
			issue := report.Issues[0]
			if issue.Severity != tt.severity {
				t.Errorf("expected %s, got %s", tt.severity, issue.Severity)
			}
			if !strings.Contains(issue.Message, tt.contains) {
				t.Errorf("expected message containing %q, got %q", tt.contains, issue.Message)
			}
			if report.HasErrors() != (tt.severity == SeverityError) {
				t.Errorf("HasErrors mismatch for %s", tt.severity)
			}
		})
	}
}

func TestCatalog_DuplicateIDs(t *testing.T) {
	spec := catalog.CandidateSpec{
		ID:         "dup",
		Categories: []string{"x"},
		Positive:   []rules.ConditionSpec{{Field: "profile.age", Op: "gt", Value: 1, Weight: 1, Description: "d"}},
	}
	report := Catalog(catalog.File{Candidates: []catalog.CandidateSpec{spec, spec}})
	if report.Count(SeverityError) != 1 || !strings.Contains(report.Issues[0].Message, "duplicate") {
		t.Errorf("expected one duplicate error, got %v", report.Issues)
	}
}

func TestCatalog_Empty(t *testing.T) {
	report := Catalog(catalog.File{})
	if !report.HasErrors() {
		t.Error("expected empty catalog to be an error")
	}
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		op   rules.Operator
		kind rules.Kind
		want bool
	}{
		{rules.Compare{Op: rules.LessThan, Threshold: 1}, rules.KindNumber, true},
		{rules.Compare{Op: rules.LessThan, Threshold: 1}, rules.KindString, false},
		{rules.Membership{Values: []rules.Scalar{rules.String("a")}}, rules.KindList, true},
		{rules.Membership{Values: []rules.Scalar{rules.String("a")}}, rules.KindRecords, false},
		{rules.Contains{Needle: "a"}, rules.KindRecords, true},
		{rules.Contains{Needle: "a"}, rules.KindNumber, false},
		{rules.NotEmpty{}, rules.KindRecords, true},
		{rules.Equals{Value: rules.Bool(true)}, rules.KindBool, true},
		{rules.Unknown{Op: "x"}, rules.KindNumber, false},
	}

	for _, tt := range tests {
		if got := Compatible(tt.op, tt.kind); got != tt.want {
			t.Errorf("Compatible(%s, %s) = %v, want %v", tt.op.Name(), tt.kind, got, tt.want)
		}
	}
}
