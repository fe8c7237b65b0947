package validate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/supplematch/internal/catalog"
	"github.com/ppiankov/supplematch/internal/rules"
)

// Severity of a catalog issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found in a catalog document
type Issue struct {
	Severity    Severity `json:"severity"`
	CandidateID string   `json:"candidate_id,omitempty"`
	Location    string   `json:"location,omitempty"` // e.g. positive[2]
	Message     string   `json:"message"`
}

func (i Issue) String() string {
	loc := i.CandidateID
	if i.Location != "" {
		loc += " " + i.Location
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, loc, i.Message)
}

// Report is the outcome of validating a catalog
type Report struct {
	Candidates int     `json:"candidates"`
	Conditions int     `json:"conditions"`
	Issues     []Issue `json:"issues"`
}

// HasErrors reports whether any issue is an error
func (r Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of issues with the given severity
func (r Report) Count(s Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}

// Catalog statically checks a catalog document. Unlike catalog.Build it does not
// stop at the first problem, and it also flags conditions that would only fail
// at evaluation time: unknown fields, unknown operators and operators that
// cannot apply to the field's type.
func Catalog(file catalog.File) Report {
	r := Report{Candidates: len(file.Candidates), Issues: []Issue{}}
	if len(file.Candidates) == 0 {
		r.add(SeverityError, "", "", "catalog has no candidates")
		return r
	}

	seen := make(map[string]int)
	for idx, spec := range file.Candidates {
		id := strings.TrimSpace(spec.ID)
		if id == "" {
			id = fmt.Sprintf("#%d", idx)
			r.add(SeverityError, id, "", "id is required")
		} else if prev, dup := seen[id]; dup {
			r.add(SeverityError, id, "", fmt.Sprintf("duplicate id (first defined at #%d)", prev))
		} else {
			seen[id] = idx
		}

		if len(spec.Categories) == 0 {
			r.add(SeverityError, id, "", "at least one category is required")
		}
		if len(spec.Positive) == 0 {
			r.add(SeverityWarning, id, "", "no positive conditions; score is always 0")
		}
		for i, tag := range spec.Contraindications {
			if strings.TrimSpace(tag) == "" {
				r.add(SeverityError, id, fmt.Sprintf("contraindications[%d]", i), "empty contraindication tag")
			}
		}

		for i, cs := range spec.Positive {
			r.checkCondition(id, fmt.Sprintf("positive[%d]", i), cs)
		}
		for i, cs := range spec.Negative {
			r.checkCondition(id, fmt.Sprintf("negative[%d]", i), cs)
		}
	}
	return r
}

func (r *Report) checkCondition(id, loc string, cs rules.ConditionSpec) {
	r.Conditions++

	if strings.TrimSpace(cs.Description) == "" {
		r.add(SeverityWarning, id, loc, "missing description")
	}

	cond, err := rules.ParseCondition(cs)
	if err != nil {
		r.add(SeverityError, id, loc, err.Error())
		return
	}

	field, known := rules.LookupField(cond.Field)
	if !known {
		r.add(SeverityError, id, loc, fmt.Sprintf("unknown field %q", cs.Field))
	}
	if u, ok := cond.Op.(rules.Unknown); ok {
		r.add(SeverityError, id, loc, fmt.Sprintf("unknown operator %q", u.Op))
		return
	}
	if known && !Compatible(cond.Op, field.Kind) {
		r.add(SeverityError, id, loc, fmt.Sprintf("operator %s cannot apply to %s field %s", cond.Op.Name(), field.Kind, field.ID))
	}
	if c, ok := cond.Op.(rules.Contains); ok && c.SubField != "" && field.Kind != rules.KindRecords {
		r.add(SeverityWarning, id, loc, "sub_field is ignored for non-record fields")
	}
}

// Compatible reports whether op can be applied to a field of the given kind
func Compatible(op rules.Operator, kind rules.Kind) bool {
	scalar := kind == rules.KindNumber || kind == rules.KindString || kind == rules.KindBool
	switch op.(type) {
	case rules.Equals, rules.NotEquals:
		return scalar
	case rules.Compare:
		return kind == rules.KindNumber
	case rules.Membership:
		return scalar || kind == rules.KindList
	case rules.Contains:
		return kind == rules.KindList || kind == rules.KindRecords || kind == rules.KindString
	case rules.NotEmpty:
		return true
	}
	return false
}

func (r *Report) add(s Severity, id, loc, msg string) {
	r.Issues = append(r.Issues, Issue{Severity: s, CandidateID: id, Location: loc, Message: msg})
}
