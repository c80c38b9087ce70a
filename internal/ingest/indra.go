// Package ingest converts INDRA statement JSON into science IR modules.
//
// INDRA (indra.readthedocs.io) emits mechanistic statements assembled from
// text-mining systems. This package grounds each statement's agents to
// typed entities (UniProt accession for proteins, HGNC/Entrez for genes,
// PubChem/ChEBI for chemicals), deduplicates them into module constants,
// and emits one operation per convertible statement. Statements that cannot
// be grounded are skipped and reported, never silently dropped.
package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/riokid4/science-os/internal/dialect"
	"github.com/riokid4/science-os/internal/ir"
)

// Statement is one INDRA statement. Which agent fields are populated
// depends on Type: Phosphorylation uses Enz/Sub, Activation and Inhibition
// use Subj/Obj, Complex uses Members.
type Statement struct {
	Type     string     `json:"type"`
	Enz      *Agent     `json:"enz,omitempty"`
	Sub      *Agent     `json:"sub,omitempty"`
	Subj     *Agent     `json:"subj,omitempty"`
	Obj      *Agent     `json:"obj,omitempty"`
	Members  []Agent    `json:"members,omitempty"`
	Residue  string     `json:"residue,omitempty"`
	Position string     `json:"position,omitempty"`
	Evidence []Evidence `json:"evidence,omitempty"`
}

// Agent is a grounded biological entity with database references.
type Agent struct {
	Name   string            `json:"name"`
	DBRefs map[string]string `json:"db_refs"`
}

// Evidence is one INDRA evidence record.
type Evidence struct {
	PMID        string      `json:"pmid,omitempty"`
	SourceAPI   string      `json:"source_api,omitempty"`
	Epistemics  Epistemics  `json:"epistemics,omitempty"`
	Annotations Annotations `json:"annotations,omitempty"`
}

// Epistemics carries INDRA's direct-evidence score, used as confidence.
type Epistemics struct {
	Direct *float64 `json:"direct,omitempty"`
}

// Annotations carries the experimental context of an evidence record.
type Annotations struct {
	CellLine *NamedRef `json:"cell_line,omitempty"`
	Species  *NamedRef `json:"species,omitempty"`
}

// NamedRef is a named database reference.
type NamedRef struct {
	Name string `json:"name"`
}

// Skip records one statement that could not be converted.
type Skip struct {
	Index  int    `json:"index"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// Report summarizes one conversion run.
type Report struct {
	Statements int    `json:"statements"`
	Converted  int    `json:"converted"`
	Skipped    []Skip `json:"skipped,omitempty"`
}

// Converter builds a module from INDRA statements, deduplicating entities
// by their grounding identifier. A Converter is single-use: one Convert
// call per instance.
type Converter struct {
	module   *ir.Module
	symbols  SymbolGenerator
	entities map[string]*ir.Value // entity symbol -> constant
}

// NewConverter creates a converter. gen supplies result-symbol suffixes;
// use UUIDGenerator in production and NewFixedGenerator in tests.
func NewConverter(gen SymbolGenerator) *Converter {
	return &Converter{
		module:   ir.NewModule(),
		symbols:  gen,
		entities: make(map[string]*ir.Value),
	}
}

// ConvertJSON decodes INDRA JSON (either a bare statement array or an
// object with a "statements" field) and converts it.
func ConvertJSON(data []byte, gen SymbolGenerator) (*ir.Module, Report, error) {
	var statements []Statement
	if err := json.Unmarshal(data, &statements); err != nil {
		var wrapper struct {
			Statements []Statement `json:"statements"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, Report{}, fmt.Errorf("decoding INDRA JSON: %w", err)
		}
		statements = wrapper.Statements
	}
	m, report := NewConverter(gen).Convert(statements)
	return m, report, nil
}

// Convert converts the statements in order. Unsupported or ungrounded
// statements are recorded in the report and skipped.
func (c *Converter) Convert(statements []Statement) (*ir.Module, Report) {
	report := Report{Statements: len(statements)}
	for i, stmt := range statements {
		if err := c.convertStatement(stmt); err != nil {
			report.Skipped = append(report.Skipped, Skip{Index: i, Type: stmt.Type, Reason: err.Error()})
			continue
		}
		report.Converted++
	}
	return c.module, report
}

func (c *Converter) convertStatement(stmt Statement) error {
	switch stmt.Type {
	case "Phosphorylation":
		return c.convertPhosphorylation(stmt)
	case "Activation":
		return c.convertRegulation(stmt, dialect.OpActivate)
	case "Inhibition":
		return c.convertRegulation(stmt, dialect.OpInhibit)
	case "Complex":
		return c.convertComplex(stmt)
	default:
		return fmt.Errorf("unsupported statement type %q", stmt.Type)
	}
}

func (c *Converter) convertPhosphorylation(stmt Statement) error {
	enz, err := c.defineAgent(stmt.Enz)
	if err != nil {
		return fmt.Errorf("enz: %w", err)
	}
	sub, err := c.defineAgent(stmt.Sub)
	if err != nil {
		return fmt.Errorf("sub: %w", err)
	}

	site := "unknown"
	if stmt.Residue != "" && stmt.Position != "" {
		site = stmt.Residue + stmt.Position
	}

	op := &ir.Operation{
		Kind:     dialect.OpPhosphorylate,
		Operands: []*ir.Value{enz, sub},
		Site:     site,
		Context:  contextFrom(stmt.Evidence),
		Evidence: evidenceFrom(stmt.Evidence),
	}
	sym := fmt.Sprintf("phospho_%s_%s", sanitize(stmt.Sub.Name), c.symbols.Next())
	_, err = c.module.DefineOperation(sym, op, sub.Type)
	return err
}

func (c *Converter) convertRegulation(stmt Statement, kind string) error {
	subj, err := c.defineAgent(stmt.Subj)
	if err != nil {
		return fmt.Errorf("subj: %w", err)
	}
	obj, err := c.defineAgent(stmt.Obj)
	if err != nil {
		return fmt.Errorf("obj: %w", err)
	}

	op := &ir.Operation{
		Kind:     kind,
		Operands: []*ir.Value{subj, obj},
		Context:  contextFrom(stmt.Evidence),
		Evidence: evidenceFrom(stmt.Evidence),
	}

	var sym string
	var result ir.EntityType
	if kind == dialect.OpInhibit {
		sym = "inhibited_state_" + c.symbols.Next()
		result = ir.CellStateType{Label: "inhibited"}
	} else {
		sym = fmt.Sprintf("activated_%s_%s", sanitize(stmt.Obj.Name), c.symbols.Next())
		result = obj.Type
	}
	_, err = c.module.DefineOperation(sym, op, result)
	return err
}

func (c *Converter) convertComplex(stmt Statement) error {
	if len(stmt.Members) < 2 {
		return fmt.Errorf("complex needs at least two members, got %d", len(stmt.Members))
	}
	first, err := c.defineAgent(&stmt.Members[0])
	if err != nil {
		return fmt.Errorf("member 0: %w", err)
	}
	second, err := c.defineAgent(&stmt.Members[1])
	if err != nil {
		return fmt.Errorf("member 1: %w", err)
	}

	op := &ir.Operation{
		Kind:     dialect.OpBind,
		Operands: []*ir.Value{first, second},
		Context:  contextFrom(stmt.Evidence),
		Evidence: evidenceFrom(stmt.Evidence),
	}
	sym := "complex_" + c.symbols.Next()
	_, err = c.module.DefineOperation(sym, op, ir.ProteinType{Accession: "complex"})
	return err
}

// defineAgent grounds an agent to an entity type and returns the module
// constant for it, defining one on first sight. Entities deduplicate by
// symbol, which derives from the grounding identifier, so two agents with
// the same accession share one constant.
func (c *Converter) defineAgent(a *Agent) (*ir.Value, error) {
	if a == nil {
		return nil, fmt.Errorf("missing agent")
	}
	t, sym, err := groundAgent(a)
	if err != nil {
		return nil, err
	}
	if v, ok := c.entities[sym]; ok {
		return v, nil
	}
	v, err := c.module.DefineConstant(sym, t)
	if err != nil {
		return nil, err
	}
	c.entities[sym] = v
	return v, nil
}

// groundAgent maps db_refs to an entity type, preferring protein (UP), then
// gene (HGNC/EGID), then chemical (PUBCHEM/CHEBI). Agents with none of
// these references are ungrounded and rejected.
func groundAgent(a *Agent) (ir.EntityType, string, error) {
	if up, ok := a.DBRefs["UP"]; ok {
		t, err := ir.NewProteinType(up)
		if err != nil {
			return nil, "", err
		}
		return t, sanitize(up), nil
	}
	if id, ok := firstRef(a.DBRefs, "HGNC", "EGID"); ok {
		t, err := ir.NewGeneType(a.Name, id)
		if err != nil {
			return nil, "", err
		}
		return t, sanitize(a.Name), nil
	}
	if id, ok := firstRef(a.DBRefs, "PUBCHEM", "CHEBI"); ok {
		t, err := ir.NewChemicalType(a.Name, id)
		if err != nil {
			return nil, "", err
		}
		return t, sanitize(a.Name), nil
	}
	return nil, "", fmt.Errorf("agent %q has no grounding reference", a.Name)
}

func firstRef(refs map[string]string, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := refs[k]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// contextFrom takes the first species and cell line seen across the
// evidence list. INDRA repeats annotations per evidence record; the module
// context holds one value per key, so first wins.
func contextFrom(evidence []Evidence) ir.ContextAttribute {
	var c ir.ContextAttribute
	for _, ev := range evidence {
		if c.Organism == "" && ev.Annotations.Species != nil && ev.Annotations.Species.Name != "" {
			c.Organism = ev.Annotations.Species.Name
		}
		if c.CellType == "" && ev.Annotations.CellLine != nil && ev.Annotations.CellLine.Name != "" {
			c.CellType = ev.Annotations.CellLine.Name
		}
	}
	return c
}

// evidenceFrom builds the evidence attribute from the best (first)
// evidence record, falling back to a low-confidence unknown record when a
// statement carries no evidence at all.
func evidenceFrom(evidence []Evidence) ir.EvidenceAttribute {
	if len(evidence) == 0 {
		return ir.EvidenceAttribute{SourceID: "unknown", Extractor: "unknown", Confidence: 0.5, Method: "literature"}
	}
	best := evidence[0]

	sourceID := best.PMID
	if sourceID == "" {
		sourceID = "unknown"
	}
	confidence := 0.8
	if best.Epistemics.Direct != nil {
		confidence = *best.Epistemics.Direct
	}
	method := best.SourceAPI
	if method == "" {
		method = "literature"
	}
	return ir.EvidenceAttribute{SourceID: sourceID, Extractor: "unknown", Confidence: confidence, Method: method}
}

// sanitize turns an entity name into a symbol-safe token.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '-', r == ' ':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "entity"
	}
	return b.String()
}
