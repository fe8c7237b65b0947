package rules

import (
	"errors"
	"fmt"

	"github.com/ppiankov/supplematch/internal/model"
)

// ErrUnknownField is reported when a condition references a field outside the registry
var ErrUnknownField = errors.New("unknown field")

// Condition is one declarative, weighted check against the snapshot
type Condition struct {
	Field       FieldID
	Op          Operator
	Weight      int // 1-5
	Description string
}

// Outcome is the result of evaluating a single condition
type Outcome struct {
	Available bool
	Met       bool
	Source    string
	Defect    *Defect // set for malformed conditions; never fatal
}

// Defect describes a misconfigured condition found during evaluation
type Defect struct {
	Field       FieldID
	Operator    string
	Description string
	Err         error
}

func (d *Defect) Error() string {
	return fmt.Sprintf("condition %q (%s %s): %v", d.Description, d.Field, d.Operator, d.Err)
}

func (d *Defect) Unwrap() error {
	return d.Err
}

// Evaluate resolves the condition's field and applies its operator.
// A missing field yields Available=false, with a Defect when the operator itself
// is unsupported; a malformed condition on present data yields Available=true,
// Met=false and a Defect. It never panics.
func Evaluate(c Condition, snapshot *model.AggregatedUserData) Outcome {
	field, known := LookupField(c.Field)
	if !known {
		return Outcome{
			Defect: c.defect(fmt.Errorf("%w: %s", ErrUnknownField, c.Field)),
		}
	}

	value := Resolve(snapshot, c.Field)
	if !value.Present() {
		// operator defects are reported even without data to apply them to
		return Outcome{Source: field.Source, Defect: c.operatorDefect()}
	}

	if d := c.operatorDefect(); d != nil {
		return Outcome{Available: true, Source: field.Source, Defect: d}
	}

	met, err := c.Op.apply(value)
	if err != nil {
		return Outcome{Available: true, Source: field.Source, Defect: c.defect(err)}
	}
	return Outcome{Available: true, Met: met, Source: field.Source}
}

func (c Condition) operatorDefect() *Defect {
	switch op := c.Op.(type) {
	case nil:
		return c.defect(fmt.Errorf("%w: <nil>", ErrUnknownOperator))
	case Unknown:
		return c.defect(fmt.Errorf("%w: %q", ErrUnknownOperator, op.Op))
	}
	return nil
}

func (c Condition) defect(err error) *Defect {
	op := "<nil>"
	if c.Op != nil {
		op = c.Op.Name()
	}
	return &Defect{Field: c.Field, Operator: op, Description: c.Description, Err: err}
}
