// Package lint runs advisory consistency checks over verified modules.
//
// Lint findings are deliberately separate from verification diagnostics:
// verification rejects structurally invalid IR, while lint flags content
// that is structurally fine but suspicious - low-confidence evidence, an
// entity pair that is both activated and inhibited, assertions with no
// experimental context. Findings never fail a module on their own.
package lint

import (
	"fmt"
	"strings"

	"github.com/riokid4/science-os/internal/dialect"
	"github.com/riokid4/science-os/internal/ir"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is one lint result.
type Finding struct {
	Severity Severity `json:"severity"`
	Symbol   string   `json:"symbol,omitempty"` // result symbol of the operation, if any
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	if f.Symbol != "" {
		return fmt.Sprintf("[%s] %%%s: %s", f.Severity, f.Symbol, f.Message)
	}
	return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
}

// Run checks every operation in the module against the policy. The module
// should already verify; lint assumes structural validity.
func Run(m *ir.Module, p Policy) []Finding {
	var findings []Finding

	type pair struct{ subject, object string }
	kindsByPair := make(map[pair]map[string]bool)

	for _, op := range m.Operations() {
		sym := op.Result.Name

		if op.Evidence.Confidence < p.MinConfidence {
			findings = append(findings, Finding{
				Severity: SeverityInfo,
				Symbol:   sym,
				Message: fmt.Sprintf("low confidence %s (policy minimum %s)",
					trimFloat(op.Evidence.Confidence), trimFloat(p.MinConfidence)),
			})
		}

		if p.RequireContext && op.Context.IsZero() {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Symbol:   sym,
				Message:  "no experimental context recorded",
			})
		}

		if len(op.Operands) == 2 {
			key := pair{op.Operands[0].Name, op.Operands[1].Name}
			if kindsByPair[key] == nil {
				kindsByPair[key] = make(map[string]bool)
			}
			kindsByPair[key][op.Kind] = true
		}
	}

	if p.FlagContradictions {
		for _, op := range m.Operations() {
			if op.Kind != dialect.OpInhibit || len(op.Operands) != 2 {
				continue
			}
			key := pair{op.Operands[0].Name, op.Operands[1].Name}
			if kindsByPair[key][dialect.OpActivate] {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Symbol:   op.Result.Name,
					Message: fmt.Sprintf("%%%s both activates and inhibits %%%s",
						key.subject, key.object),
				})
			}
		}
	}

	return findings
}

// Render formats findings as a plain-text report.
func Render(m *ir.Module, findings []Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "operations checked: %d\n", len(m.Operations()))
	fmt.Fprintf(&b, "findings: %d\n", len(findings))
	for _, f := range findings {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	if len(findings) == 0 {
		b.WriteString("no findings\n")
	}
	return b.String()
}

func trimFloat(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", f), "0"), ".")
}
