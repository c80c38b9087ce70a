package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/riokid4/science-os/internal/ir"
)

// Print renders a module in canonical textual form. The output is
// byte-stable: attribute keys appear in declaration order, strings are NFC
// normalized, and floats use shortest-round-trip formatting, so printing
// the same module twice yields identical bytes and reparsing the output
// yields a structurally equal module.
func Print(m *ir.Module) string {
	var b strings.Builder
	b.WriteString("module {\n")
	for _, v := range m.Defs() {
		if v.IsConstant() {
			fmt.Fprintf(&b, "  %%%s = constant %s\n", v.Name, typeText(v.Type))
			continue
		}
		printOperation(&b, v.Op)
	}
	b.WriteString("}\n")
	return b.String()
}

func printOperation(b *strings.Builder, op *ir.Operation) {
	fmt.Fprintf(b, "  %%%s = science.%s ", op.Result.Name, op.Kind)

	for i, operand := range op.Operands {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('%')
		b.WriteString(operand.Name)
	}

	if op.Site != "" {
		fmt.Fprintf(b, " at %s", quote(op.Site))
	}

	fmt.Fprintf(b, " {context = %s} {evidence = %s} : (", contextText(op.Context), evidenceText(op.Evidence))
	for i, operand := range op.Operands {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(typeText(operand.Type))
	}
	fmt.Fprintf(b, ") -> %s\n", typeText(op.Result.Type))
}

// contextText encodes a context attribute with keys in declaration order.
// Unset keys are omitted entirely; an empty context prints as <>.
func contextText(c ir.ContextAttribute) string {
	var pairs []string
	for _, key := range ir.ContextKeys {
		if value, ok := c.Get(key); ok {
			pairs = append(pairs, key+"="+quote(value))
		}
	}
	return "#science.context<" + strings.Join(pairs, ", ") + ">"
}

// evidenceText encodes an evidence attribute positionally.
func evidenceText(e ir.EvidenceAttribute) string {
	return fmt.Sprintf("#science.evidence<%s, %s, %s, %s>",
		quote(e.SourceID), quote(e.Extractor), formatConfidence(e.Confidence), quote(e.Method))
}

// formatConfidence renders a confidence with the shortest representation
// that round-trips, e.g. "0.95", "0", "1".
func formatConfidence(c float64) string {
	return strconv.FormatFloat(c, 'g', -1, 64)
}

// typeText renders an entity type with NFC-normalized parameters.
func typeText(t ir.EntityType) string {
	return norm.NFC.String(t.String())
}

// quote renders a double-quoted string literal, NFC normalizing at the
// serialization boundary so equal strings print as equal bytes.
func quote(s string) string {
	return strconv.Quote(norm.NFC.String(s))
}
