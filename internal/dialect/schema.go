package dialect

import (
	"fmt"

	"github.com/riokid4/science-os/internal/ir"
)

// TypePattern is the entity kind an operand position must match,
// e.g. "protein". PatternAny matches every entity kind.
type TypePattern string

// PatternAny matches any entity type.
const PatternAny TypePattern = "any"

// Matches reports whether an entity type satisfies the pattern.
func (p TypePattern) Matches(t ir.EntityType) bool {
	return p == PatternAny || string(p) == t.Kind()
}

// SiteRule states whether an operation kind carries a site attribute.
type SiteRule int

const (
	// SiteForbidden rejects a supplied site with UnexpectedAttributeError.
	SiteForbidden SiteRule = iota
	// SiteOptional accepts a site but does not require one.
	SiteOptional
	// SiteRequired rejects operations without a site.
	SiteRequired
)

// String returns the rule name as used in CUE schema documents.
func (s SiteRule) String() string {
	switch s {
	case SiteForbidden:
		return "forbidden"
	case SiteOptional:
		return "optional"
	case SiteRequired:
		return "required"
	default:
		return "unknown"
	}
}

// ResultRule computes an operation's expected result type from its operands.
// Exactly one of the two forms applies: the result copies the type of one
// operand (Operand >= 0), or it is a fixed type (Fixed non-nil).
type ResultRule struct {
	Operand int
	Fixed   ir.EntityType
}

// SameAsOperand makes the result type equal to operand i's type.
func SameAsOperand(i int) ResultRule {
	return ResultRule{Operand: i}
}

// FixedResult makes the result type a constant, independent of operands.
func FixedResult(t ir.EntityType) ResultRule {
	return ResultRule{Operand: -1, Fixed: t}
}

// Apply computes the expected result type for the given operands.
func (r ResultRule) Apply(operands []*ir.Value) (ir.EntityType, error) {
	if r.Fixed != nil {
		return r.Fixed, nil
	}
	if r.Operand < 0 || r.Operand >= len(operands) {
		return nil, fmt.Errorf("result rule references operand %d of %d", r.Operand, len(operands))
	}
	return operands[r.Operand].Type, nil
}

func (r ResultRule) equal(o ResultRule) bool {
	if (r.Fixed == nil) != (o.Fixed == nil) {
		return false
	}
	if r.Fixed != nil {
		return r.Fixed.Equal(o.Fixed)
	}
	return r.Operand == o.Operand
}

// OpSchema describes one mechanistic operation kind: its name, the ordered
// operand type patterns, the result-type rule, and the site rule.
type OpSchema struct {
	// Name is the kind without the dialect prefix, e.g. "phosphorylate"
	// for operations printed as "science.phosphorylate".
	Name     string
	Operands []TypePattern
	Result   ResultRule
	Site     SiteRule
}

// Equal reports whether two schemas are interchangeable. Registration uses
// this for the idempotency check: re-registering an equal schema is a no-op.
func (s OpSchema) Equal(o OpSchema) bool {
	if s.Name != o.Name || s.Site != o.Site || len(s.Operands) != len(o.Operands) {
		return false
	}
	for i, p := range s.Operands {
		if p != o.Operands[i] {
			return false
		}
	}
	return s.Result.equal(o.Result)
}

// validate checks a schema is well-formed before registration.
func (s OpSchema) validate() error {
	if s.Name == "" {
		return fmt.Errorf("op schema has empty name")
	}
	if len(s.Operands) == 0 {
		return fmt.Errorf("op schema %q has no operands", s.Name)
	}
	if s.Result.Fixed == nil && (s.Result.Operand < 0 || s.Result.Operand >= len(s.Operands)) {
		return fmt.Errorf("op schema %q: result rule references operand %d of %d",
			s.Name, s.Result.Operand, len(s.Operands))
	}
	return nil
}

// TypeDescriptor describes one entity type name: how to construct the
// concrete ir.EntityType from the parameter text between angle brackets.
type TypeDescriptor struct {
	// Name is the type kind, e.g. "protein" for "!science.protein<...>".
	Name string

	// Parse constructs the entity type from the raw parameter string,
	// e.g. `Q13315` for protein or `"inhibited"` for cellstate.
	Parse func(param string) (ir.EntityType, error)
}
