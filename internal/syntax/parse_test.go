package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riokid4/science-os/internal/dialect"
	"github.com/riokid4/science-os/internal/ir"
)

const exampleModule = `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %r = science.phosphorylate %a, %b at "S15" {context = #science.context<organism="human">} {evidence = #science.evidence<"9724731", "unknown", 0.95, "reach">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
}
`

func TestParse_Example(t *testing.T) {
	m, diags := ParseAndVerify(exampleModule, dialect.NewScienceRegistry())
	require.Empty(t, diags)
	require.Equal(t, 3, m.Len())

	ops := m.Operations()
	require.Len(t, ops, 1)
	op := ops[0]

	assert.Equal(t, dialect.OpPhosphorylate, op.Kind)
	assert.Equal(t, "S15", op.Site)
	assert.Equal(t, "human", op.Context.Organism)
	assert.Equal(t, "", op.Context.CellType)
	assert.Equal(t, "9724731", op.Evidence.SourceID)
	assert.Equal(t, 0.95, op.Evidence.Confidence)
	assert.Equal(t, "reach", op.Evidence.Method)

	require.Len(t, op.Operands, 2)
	assert.Equal(t, "a", op.Operands[0].Name)
	assert.True(t, op.Result.Type.Equal(ir.ProteinType{Accession: "P04637"}))
	assert.Equal(t, 4, op.Line)
}

func TestRoundTrip(t *testing.T) {
	reg := dialect.NewScienceRegistry()

	m, diags := ParseAndVerify(exampleModule, reg)
	require.Empty(t, diags)

	text := Print(m)
	assert.Equal(t, exampleModule, text)

	m2, diags := ParseAndVerify(text, reg)
	require.Empty(t, diags)
	assert.True(t, m.Equal(m2))
}

func TestRoundTrip_NonNFCInput(t *testing.T) {
	reg := dialect.NewScienceRegistry()

	// Decomposed e + combining acute in the cell_type value and in a
	// cellstate type parameter. Parsing normalizes both to NFC, so the
	// parsed module is already canonical and survives a round trip.
	decomposed := "he\u0301la"
	composed := "h\u00e9la"
	text := "module {\n" +
		"  %a = constant !science.protein<Q13315>\n" +
		"  %b = constant !science.protein<P04637>\n" +
		"  %s = constant !science.cellstate<\"" + decomposed + "\">\n" +
		"  %r = science.phosphorylate %a, %b at \"S15\" {context = #science.context<cell_type=\"" + decomposed + "\">} {evidence = #science.evidence<\"9724731\", \"unknown\", 0.95, \"reach\">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>\n" +
		"}\n"

	m, diags := ParseAndVerify(text, reg)
	require.Empty(t, diags)

	ops := m.Operations()
	require.Len(t, ops, 1)
	assert.Equal(t, composed, ops[0].Context.CellType)

	v, err := m.Use("s")
	require.NoError(t, err)
	assert.True(t, v.Type.Equal(ir.CellStateType{Label: composed}))

	m2, diags := ParseAndVerify(Print(m), reg)
	require.Empty(t, diags)
	assert.True(t, m.Equal(m2))
}

func TestParse_ContextKeyOrderIrrelevant(t *testing.T) {
	reg := dialect.NewScienceRegistry()

	forward := `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %r = science.activate %a, %b {context = #science.context<organism="human", cell_type="HeLa">} {evidence = #science.evidence<"1", "reach", 0.9, "reading">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
}
`
	reversed := `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %r = science.activate %a, %b {context = #science.context<cell_type="HeLa", organism="human">} {evidence = #science.evidence<"1", "reach", 0.9, "reading">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
}
`
	m1, diags := ParseAndVerify(forward, reg)
	require.Empty(t, diags)
	m2, diags := ParseAndVerify(reversed, reg)
	require.Empty(t, diags)

	assert.True(t, m1.Equal(m2))
	// Both print keys in declaration order.
	assert.Equal(t, Print(m1), Print(m2))
}

func TestParse_OutOfRangeConfidence(t *testing.T) {
	text := `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %r = science.phosphorylate %a, %b at "S15" {context = #science.context<>} {evidence = #science.evidence<"1", "reach", 1.2, "reading">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
}
`
	m, diags := ParseAndVerify(text, dialect.NewScienceRegistry())

	require.Len(t, diags, 1)
	assert.Equal(t, ir.CodeMalformedAttribute, diags[0].Code)
	assert.Equal(t, 4, diags[0].Line)

	// The malformed line is skipped; the constants survive.
	assert.Equal(t, 2, m.Len())
}

func TestParse_SymbolResolution(t *testing.T) {
	reg := dialect.NewScienceRegistry()

	t.Run("undefined operand", func(t *testing.T) {
		text := `module {
  %a = constant !science.protein<Q13315>
  %r = science.bind %a, %z {context = #science.context<>} {evidence = #science.evidence<"1", "reach", 0.9, "reading">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<complex>
}
`
		_, diags := Parse(text, reg)
		require.Len(t, diags, 1)
		assert.Equal(t, ir.CodeUndefinedSymbol, diags[0].Code)
	})

	t.Run("definition after use does not count", func(t *testing.T) {
		text := `module {
  %a = constant !science.protein<Q13315>
  %r = science.bind %a, %b {context = #science.context<>} {evidence = #science.evidence<"1", "reach", 0.9, "reading">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<complex>
  %b = constant !science.protein<P04637>
}
`
		_, diags := Parse(text, reg)
		require.Len(t, diags, 1)
		assert.Equal(t, ir.CodeUndefinedSymbol, diags[0].Code)
	})

	t.Run("duplicate symbol", func(t *testing.T) {
		text := `module {
  %a = constant !science.protein<Q13315>
  %a = constant !science.protein<P04637>
}
`
		m, diags := Parse(text, reg)
		require.Len(t, diags, 1)
		assert.Equal(t, ir.CodeDuplicateSymbol, diags[0].Code)
		// First definition wins; the duplicate line is skipped.
		assert.Equal(t, 1, m.Len())
	})
}

func TestParse_UnknownNames(t *testing.T) {
	reg := dialect.NewScienceRegistry()

	t.Run("unknown type", func(t *testing.T) {
		text := `module {
  %a = constant !science.rna<X1>
}
`
		_, diags := Parse(text, reg)
		require.Len(t, diags, 1)
		assert.Equal(t, ir.CodeUnknownType, diags[0].Code)
	})

	t.Run("unknown operation kind", func(t *testing.T) {
		// Unknown kinds parse fine; verification rejects them.
		text := `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %r = science.methylate %a, %b {context = #science.context<>} {evidence = #science.evidence<"1", "reach", 0.9, "reading">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
}
`
		_, parseDiags := Parse(text, reg)
		assert.Empty(t, parseDiags)

		_, diags := ParseAndVerify(text, reg)
		require.Len(t, diags, 1)
		assert.Equal(t, ir.CodeUnknownOperation, diags[0].Code)
	})
}

func TestParse_SyntaxErrors(t *testing.T) {
	reg := dialect.NewScienceRegistry()

	tests := []struct {
		name string
		text string
	}{
		{"missing module header", "%a = constant !science.protein<Q13315>\n"},
		{"unclosed module", "module {\n  %a = constant !science.protein<Q13315>\n"},
		{"text after closing brace", "module {\n}\nextra\n"},
		{"missing equals", "module {\n  %a constant !science.protein<Q13315>\n}\n"},
		{"trailing garbage", "module {\n  %a = constant !science.protein<Q13315> junk\n}\n"},
		{"unterminated angle block", "module {\n  %a = constant !science.protein<Q13315\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := Parse(tt.text, reg)
			require.NotEmpty(t, diags)
			assert.Equal(t, ir.CodeSyntax, diags[0].Code)
			assert.NotZero(t, diags[0].Line)
		})
	}
}

func TestParse_SignatureDisagreesWithDefinition(t *testing.T) {
	// The signature re-states operand types; declaring %b as Q13315 when it
	// was defined as P04637 is a load-time type mismatch.
	text := `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %r = science.bind %a, %b {context = #science.context<>} {evidence = #science.evidence<"1", "reach", 0.9, "reading">} : (!science.protein<Q13315>, !science.protein<Q13315>) -> !science.protein<complex>
}
`
	_, diags := Parse(text, dialect.NewScienceRegistry())
	require.Len(t, diags, 1)
	assert.Equal(t, ir.CodeTypeMismatch, diags[0].Code)
}

func TestParse_AttributeValidation(t *testing.T) {
	reg := dialect.NewScienceRegistry()

	t.Run("duplicate context key", func(t *testing.T) {
		text := `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %r = science.activate %a, %b {context = #science.context<organism="human", organism="mouse">} {evidence = #science.evidence<"1", "reach", 0.9, "reading">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
}
`
		_, diags := Parse(text, reg)
		require.Len(t, diags, 1)
		assert.Equal(t, ir.CodeMalformedAttribute, diags[0].Code)
	})

	t.Run("empty site", func(t *testing.T) {
		text := `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %r = science.phosphorylate %a, %b at "" {context = #science.context<>} {evidence = #science.evidence<"1", "reach", 0.9, "reading">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
}
`
		_, diags := Parse(text, reg)
		require.Len(t, diags, 1)
		assert.Equal(t, ir.CodeMalformedAttribute, diags[0].Code)
	})

	t.Run("empty context value", func(t *testing.T) {
		text := `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %r = science.activate %a, %b {context = #science.context<organism="">} {evidence = #science.evidence<"1", "reach", 0.9, "reading">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
}
`
		_, diags := Parse(text, reg)
		require.Len(t, diags, 1)
		assert.Equal(t, ir.CodeMalformedAttribute, diags[0].Code)
	})
}

func TestParse_CommentsAndBlankLines(t *testing.T) {
	text := `// assertions extracted from PMID 9724731

module {
  // kinase
  %a = constant !science.protein<Q13315>

  %b = constant !science.protein<P04637>
}
`
	m, diags := Parse(text, dialect.NewScienceRegistry())
	assert.Empty(t, diags)
	assert.Equal(t, 2, m.Len())
}

func TestParse_NumericSymbolNames(t *testing.T) {
	// Symbols may start with a digit even though identifiers may not.
	text := `module {
  %9724731 = constant !science.protein<Q13315>
}
`
	m, diags := Parse(text, dialect.NewScienceRegistry())
	require.Empty(t, diags)

	v, err := m.Use("9724731")
	require.NoError(t, err)
	assert.True(t, v.IsConstant())
}
