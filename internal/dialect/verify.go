package dialect

import (
	"github.com/riokid4/science-os/internal/ir"
)

// VerifyModule walks a module in definition order and checks every
// operation against its registered schema, accumulating all diagnostics
// rather than stopping at the first. An empty slice means the module
// verifies. Runs in O(N) over the module.
func VerifyModule(r *Registry, m *ir.Module) []ir.Diagnostic {
	var diags []ir.Diagnostic
	for _, op := range m.Operations() {
		for _, err := range VerifyOperation(r, op) {
			d := ir.NewDiagnostic(op.Result.Name, err)
			d.Line = op.Line
			diags = append(diags, d)
		}
	}
	return diags
}

// VerifyOperation checks a single operation against the schema registered
// for its kind:
//
//	(a) each operand's type variant matches the declared pattern at that
//	    position,
//	(b) the site and evidence attributes satisfy the schema and the
//	    attribute codec's validity rules,
//	(c) the declared result type equals the schema's computed result type.
//
// Mismatches are reported, never coerced. All findings are returned, not
// just the first.
func VerifyOperation(r *Registry, op *ir.Operation) []error {
	schema, err := r.OpSchema(op.Kind)
	if err != nil {
		return []error{err}
	}

	var errs []error

	// (a) operand patterns, reporting missing and extra positions too
	for i, pattern := range schema.Operands {
		if i >= len(op.Operands) {
			errs = append(errs, &ir.TypeMismatchError{
				Op:           op.Kind,
				OperandIndex: i,
				Expected:     string(pattern),
				Actual:       "none",
			})
			continue
		}
		if !pattern.Matches(op.Operands[i].Type) {
			errs = append(errs, &ir.TypeMismatchError{
				Op:           op.Kind,
				OperandIndex: i,
				Expected:     string(pattern),
				Actual:       op.Operands[i].Type.String(),
			})
		}
	}
	for i := len(schema.Operands); i < len(op.Operands); i++ {
		errs = append(errs, &ir.TypeMismatchError{
			Op:           op.Kind,
			OperandIndex: i,
			Expected:     "none",
			Actual:       op.Operands[i].Type.String(),
		})
	}

	// (b) attributes
	switch schema.Site {
	case SiteForbidden:
		if op.Site != "" {
			errs = append(errs, &ir.UnexpectedAttributeError{Op: op.Kind, Attr: "site"})
		}
	case SiteRequired:
		if op.Site == "" {
			errs = append(errs, &ir.MalformedAttributeError{
				Attr:    "site",
				Message: op.Kind + " requires a site",
			})
		}
	}
	// Re-run the codec's validity rules so programmatically built
	// operations get the same checks as parsed ones.
	ev := op.Evidence
	if _, err := ir.NewEvidenceAttribute(ev.SourceID, ev.Extractor, ev.Confidence, ev.Method); err != nil {
		errs = append(errs, err)
	}

	// (c) result type, only when the operand shape allows computing it
	if len(op.Operands) == len(schema.Operands) {
		expected, err := schema.Result.Apply(op.Operands)
		if err != nil {
			errs = append(errs, err)
		} else if op.Result != nil && !expected.Equal(op.Result.Type) {
			errs = append(errs, &ir.TypeMismatchError{
				Op:           op.Kind,
				OperandIndex: -1,
				Expected:     expected.String(),
				Actual:       op.Result.Type.String(),
			})
		}
	}

	return errs
}
