package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/riokid4/science-os/internal/dialect"
	"github.com/riokid4/science-os/internal/ir"
)

// SyntaxError reports text that does not match the module grammar.
type SyntaxError struct {
	Line    int
	Col     int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Message)
}

// Parse decodes module text into an ir.Module, resolving entity types
// through the registry. Malformed lines are collected as diagnostics and
// skipped; the returned module contains every definition that parsed.
//
// Parse does not run schema verification - use dialect.VerifyModule on the
// result, or ParseAndVerify for both in one call.
func Parse(text string, reg *dialect.Registry) (*ir.Module, []ir.Diagnostic) {
	p := &parser{reg: reg, module: ir.NewModule()}
	p.parseModule(text)
	return p.module, p.diags
}

// ParseAndVerify parses module text and verifies every operation against
// the registry, returning all parse and verification diagnostics together.
func ParseAndVerify(text string, reg *dialect.Registry) (*ir.Module, []ir.Diagnostic) {
	m, diags := Parse(text, reg)
	diags = append(diags, dialect.VerifyModule(reg, m)...)
	return m, diags
}

type parser struct {
	reg    *dialect.Registry
	module *ir.Module
	diags  []ir.Diagnostic
}

func (p *parser) report(line int, err error) {
	var d ir.Diagnostic
	var synErr *SyntaxError
	switch {
	case asSyntaxError(err, &synErr):
		d = ir.Diagnostic{Code: ir.CodeSyntax, Line: synErr.Line, Message: synErr.Message}
	default:
		d = ir.NewDiagnostic("", err)
		d.Line = line
	}
	p.diags = append(p.diags, d)
}

func asSyntaxError(err error, target **SyntaxError) bool {
	se, ok := err.(*SyntaxError)
	if ok {
		*target = se
	}
	return ok
}

func (p *parser) parseModule(text string) {
	lines := strings.Split(text, "\n")

	const (
		beforeModule = iota
		inModule
		afterModule
	)
	state := beforeModule

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		switch state {
		case beforeModule:
			if line == "module {" {
				state = inModule
				continue
			}
			p.report(lineNo, &SyntaxError{Line: lineNo, Message: `expected "module {"`})
		case inModule:
			if line == "}" {
				state = afterModule
				continue
			}
			if err := p.parseDef(line, lineNo); err != nil {
				p.report(lineNo, err)
			}
		case afterModule:
			p.report(lineNo, &SyntaxError{Line: lineNo, Message: "text after closing brace"})
		}
	}

	if state != afterModule {
		p.report(len(lines), &SyntaxError{Line: len(lines), Message: "module block is not closed"})
	}
}

// parseDef parses one definition line: a constant or an operation.
func (p *parser) parseDef(line string, lineNo int) error {
	c := newCursor(line, lineNo)

	sym, err := c.symbol()
	if err != nil {
		return err
	}
	if err := c.expect("="); err != nil {
		return err
	}

	if c.consume("constant") {
		t, err := p.parseType(c)
		if err != nil {
			return err
		}
		if err := c.end(); err != nil {
			return err
		}
		_, err = p.module.DefineConstant(sym, t)
		return err
	}

	return p.parseOperation(c, sym, lineNo)
}

func (p *parser) parseOperation(c *cursor, sym string, lineNo int) error {
	if err := c.expect("science."); err != nil {
		return err
	}
	kind, err := c.ident()
	if err != nil {
		return err
	}

	op := &ir.Operation{Kind: kind, Line: lineNo}

	// operand references, resolved immediately (definition-before-use)
	for {
		name, err := c.symbol()
		if err != nil {
			return err
		}
		operand, err := p.module.Use(name)
		if err != nil {
			return err
		}
		op.Operands = append(op.Operands, operand)
		if !c.consume(",") {
			break
		}
	}

	if c.consume("at") {
		site, err := c.quoted()
		if err != nil {
			return err
		}
		if site == "" {
			return &ir.MalformedAttributeError{Attr: "site", Message: "site must be non-empty"}
		}
		op.Site = site
	}

	op.Context, err = p.parseContextBlock(c)
	if err != nil {
		return err
	}
	op.Evidence, err = p.parseEvidenceBlock(c)
	if err != nil {
		return err
	}

	// trailing signature: (operand types) -> result type
	if err := c.expect(":"); err != nil {
		return err
	}
	if err := c.expect("("); err != nil {
		return err
	}
	var declared []ir.EntityType
	if !c.consume(")") {
		for {
			t, err := p.parseType(c)
			if err != nil {
				return err
			}
			declared = append(declared, t)
			if !c.consume(",") {
				break
			}
		}
		if err := c.expect(")"); err != nil {
			return err
		}
	}
	if err := c.expect("->"); err != nil {
		return err
	}
	result, err := p.parseType(c)
	if err != nil {
		return err
	}
	if err := c.end(); err != nil {
		return err
	}

	// The signature re-states operand types; a signature that disagrees
	// with the referenced definitions is a load-time error.
	if len(declared) != len(op.Operands) {
		return &SyntaxError{Line: lineNo, Message: fmt.Sprintf(
			"signature declares %d operand types for %d operands", len(declared), len(op.Operands))}
	}
	for i, t := range declared {
		if !t.Equal(op.Operands[i].Type) {
			return &ir.TypeMismatchError{
				Op:           kind,
				OperandIndex: i,
				Expected:     op.Operands[i].Type.String(),
				Actual:       t.String(),
			}
		}
	}

	_, err = p.module.DefineOperation(sym, op, result)
	return err
}

// parseType parses "!science.<name><param>" through the registry. The
// parameter text is NFC normalized before construction, matching the
// printer, so a parsed module is already in canonical form.
func (p *parser) parseType(c *cursor) (ir.EntityType, error) {
	if err := c.expect("!science."); err != nil {
		return nil, err
	}
	name, err := c.ident()
	if err != nil {
		return nil, err
	}
	param, err := c.angleBlock()
	if err != nil {
		return nil, err
	}
	return p.reg.ParseType(name, norm.NFC.String(param))
}

// parseContextBlock parses {context = #science.context<key="value", ...>}.
// Keys decode order-independently; duplicates are malformed.
func (p *parser) parseContextBlock(c *cursor) (ir.ContextAttribute, error) {
	if err := c.expect("{"); err != nil {
		return ir.ContextAttribute{}, err
	}
	if err := c.expect("context"); err != nil {
		return ir.ContextAttribute{}, err
	}
	if err := c.expect("="); err != nil {
		return ir.ContextAttribute{}, err
	}
	if err := c.expect("#science.context"); err != nil {
		return ir.ContextAttribute{}, err
	}
	inner, err := c.angleBlock()
	if err != nil {
		return ir.ContextAttribute{}, err
	}
	if err := c.expect("}"); err != nil {
		return ir.ContextAttribute{}, err
	}

	fields := make(map[string]string)
	ic := newCursor(inner, c.line)
	for !ic.atEnd() {
		key, err := ic.ident()
		if err != nil {
			return ir.ContextAttribute{}, err
		}
		if err := ic.expect("="); err != nil {
			return ir.ContextAttribute{}, err
		}
		value, err := ic.quoted()
		if err != nil {
			return ir.ContextAttribute{}, err
		}
		if _, dup := fields[key]; dup {
			return ir.ContextAttribute{}, &ir.MalformedAttributeError{
				Attr:    "context",
				Field:   key,
				Message: "duplicate key",
			}
		}
		fields[key] = value
		if !ic.consume(",") {
			break
		}
	}
	if err := ic.end(); err != nil {
		return ir.ContextAttribute{}, err
	}
	return ir.NewContextAttribute(fields)
}

// parseEvidenceBlock parses
// {evidence = #science.evidence<"source", "extractor", conf, "method">}.
func (p *parser) parseEvidenceBlock(c *cursor) (ir.EvidenceAttribute, error) {
	if err := c.expect("{"); err != nil {
		return ir.EvidenceAttribute{}, err
	}
	if err := c.expect("evidence"); err != nil {
		return ir.EvidenceAttribute{}, err
	}
	if err := c.expect("="); err != nil {
		return ir.EvidenceAttribute{}, err
	}
	if err := c.expect("#science.evidence"); err != nil {
		return ir.EvidenceAttribute{}, err
	}
	inner, err := c.angleBlock()
	if err != nil {
		return ir.EvidenceAttribute{}, err
	}
	if err := c.expect("}"); err != nil {
		return ir.EvidenceAttribute{}, err
	}

	ic := newCursor(inner, c.line)
	sourceID, err := ic.quoted()
	if err != nil {
		return ir.EvidenceAttribute{}, err
	}
	if err := ic.expect(","); err != nil {
		return ir.EvidenceAttribute{}, err
	}
	extractor, err := ic.quoted()
	if err != nil {
		return ir.EvidenceAttribute{}, err
	}
	if err := ic.expect(","); err != nil {
		return ir.EvidenceAttribute{}, err
	}
	confidence, err := ic.float()
	if err != nil {
		return ir.EvidenceAttribute{}, err
	}
	if err := ic.expect(","); err != nil {
		return ir.EvidenceAttribute{}, err
	}
	method, err := ic.quoted()
	if err != nil {
		return ir.EvidenceAttribute{}, err
	}
	if err := ic.end(); err != nil {
		return ir.EvidenceAttribute{}, err
	}
	return ir.NewEvidenceAttribute(sourceID, extractor, confidence, method)
}

// cursor is a whitespace-insensitive scanner over one line of input.
type cursor struct {
	s    string
	pos  int
	line int
}

func newCursor(s string, line int) *cursor {
	return &cursor{s: s, line: line}
}

func (c *cursor) errf(format string, args ...any) error {
	return &SyntaxError{Line: c.line, Col: c.pos + 1, Message: fmt.Sprintf(format, args...)}
}

func (c *cursor) skipSpace() {
	for c.pos < len(c.s) && (c.s[c.pos] == ' ' || c.s[c.pos] == '\t') {
		c.pos++
	}
}

func (c *cursor) atEnd() bool {
	c.skipSpace()
	return c.pos >= len(c.s)
}

// end fails if unconsumed input remains.
func (c *cursor) end() error {
	if !c.atEnd() {
		return c.errf("unexpected trailing input %q", c.s[c.pos:])
	}
	return nil
}

// consume advances over lit if it is next, reporting whether it did.
func (c *cursor) consume(lit string) bool {
	c.skipSpace()
	if strings.HasPrefix(c.s[c.pos:], lit) {
		c.pos += len(lit)
		return true
	}
	return false
}

func (c *cursor) expect(lit string) error {
	if !c.consume(lit) {
		return c.errf("expected %q", lit)
	}
	return nil
}

func isIdentByte(b byte, first bool) bool {
	if b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b == '_' {
		return true
	}
	return !first && b >= '0' && b <= '9'
}

// ident scans an identifier: [A-Za-z_][A-Za-z0-9_]*.
func (c *cursor) ident() (string, error) {
	c.skipSpace()
	start := c.pos
	for c.pos < len(c.s) && isIdentByte(c.s[c.pos], c.pos == start) {
		c.pos++
	}
	if c.pos == start {
		return "", c.errf("expected identifier")
	}
	return c.s[start:c.pos], nil
}

// symbol scans "%name". Symbol names may start with a digit (%9724731 is a
// valid symbol even though it is not a valid identifier).
func (c *cursor) symbol() (string, error) {
	if err := c.expect("%"); err != nil {
		return "", err
	}
	start := c.pos
	for c.pos < len(c.s) && (isIdentByte(c.s[c.pos], false) || c.s[c.pos] >= '0' && c.s[c.pos] <= '9') {
		c.pos++
	}
	if c.pos == start {
		return "", c.errf("expected symbol name after %%")
	}
	return c.s[start:c.pos], nil
}

// quoted scans a double-quoted string and unescapes it. The result is NFC
// normalized: the printer normalizes on encode, so decoding must too or
// non-NFC input would not round-trip to a structurally equal module.
func (c *cursor) quoted() (string, error) {
	c.skipSpace()
	if c.pos >= len(c.s) || c.s[c.pos] != '"' {
		return "", c.errf("expected quoted string")
	}
	start := c.pos
	c.pos++
	for c.pos < len(c.s) {
		switch c.s[c.pos] {
		case '\\':
			c.pos += 2
			continue
		case '"':
			c.pos++
			out, err := strconv.Unquote(c.s[start:c.pos])
			if err != nil {
				return "", c.errf("bad string literal %s", c.s[start:c.pos])
			}
			return norm.NFC.String(out), nil
		}
		c.pos++
	}
	return "", c.errf("unterminated string literal")
}

// float scans a floating point literal.
func (c *cursor) float() (float64, error) {
	c.skipSpace()
	start := c.pos
	for c.pos < len(c.s) && strings.IndexByte("0123456789.eE+-", c.s[c.pos]) >= 0 {
		c.pos++
	}
	if c.pos == start {
		return 0, c.errf("expected number")
	}
	f, err := strconv.ParseFloat(c.s[start:c.pos], 64)
	if err != nil {
		return 0, c.errf("bad number %q", c.s[start:c.pos])
	}
	return f, nil
}

// angleBlock scans "<...>" and returns the inner text. Quoted strings
// inside the block may contain '>' without closing it.
func (c *cursor) angleBlock() (string, error) {
	if err := c.expect("<"); err != nil {
		return "", err
	}
	start := c.pos
	inString := false
	for c.pos < len(c.s) {
		switch c.s[c.pos] {
		case '\\':
			if inString {
				c.pos++
			}
		case '"':
			inString = !inString
		case '>':
			if !inString {
				inner := c.s[start:c.pos]
				c.pos++
				return inner, nil
			}
		}
		c.pos++
	}
	return "", c.errf("unterminated angle bracket block")
}
