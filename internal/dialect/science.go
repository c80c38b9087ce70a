package dialect

import (
	"strconv"
	"strings"

	"github.com/riokid4/science-os/internal/ir"
)

// Builtin mechanistic operation kinds.
const (
	OpPhosphorylate = "phosphorylate"
	OpActivate      = "activate"
	OpInhibit       = "inhibit"
	OpBind          = "bind"
)

// NewScienceRegistry builds a registry pre-populated with the science
// dialect: the entity types and the builtin mechanistic vocabulary. This is
// the whole registration surface; everything else is table-driven.
func NewScienceRegistry() *Registry {
	r := NewRegistry()
	mustRegisterScience(r)
	return r
}

// mustRegisterScience registers the builtin types and operations.
// Registration of builtins cannot fail; a failure here is a programming
// error, hence the panic.
func mustRegisterScience(r *Registry) {
	types := []TypeDescriptor{
		{Name: ir.KindProtein, Parse: parseProteinParam},
		{Name: ir.KindCellState, Parse: parseCellStateParam},
		{Name: ir.KindGene, Parse: parseGeneParam},
		{Name: ir.KindChemical, Parse: parseChemicalParam},
	}
	for _, d := range types {
		if err := r.RegisterType(d); err != nil {
			panic("science dialect: " + err.Error())
		}
	}

	ops := []OpSchema{
		{
			Name:     OpPhosphorylate,
			Operands: []TypePattern{ir.KindProtein, ir.KindProtein},
			Result:   SameAsOperand(1), // substrate keeps its protein type
			Site:     SiteRequired,
		},
		{
			Name:     OpActivate,
			Operands: []TypePattern{ir.KindProtein, ir.KindProtein},
			Result:   SameAsOperand(1),
			Site:     SiteForbidden,
		},
		{
			Name:     OpInhibit,
			Operands: []TypePattern{ir.KindProtein, ir.KindProtein},
			Result:   FixedResult(ir.CellStateType{Label: "inhibited"}),
			Site:     SiteForbidden,
		},
		{
			Name:     OpBind,
			Operands: []TypePattern{ir.KindProtein, ir.KindProtein},
			Result:   FixedResult(ir.ProteinType{Accession: "complex"}),
			Site:     SiteForbidden,
		},
	}
	for _, s := range ops {
		if err := r.RegisterOp(s); err != nil {
			panic("science dialect: " + err.Error())
		}
	}
}

// parseProteinParam parses the accession between the angle brackets of
// !science.protein<...>. Accessions are bare tokens, never quoted, with no
// interior whitespace.
func parseProteinParam(param string) (ir.EntityType, error) {
	accession := strings.TrimSpace(param)
	if accession == "" || strings.ContainsAny(accession, ",\"<> \t") {
		return nil, &ir.MalformedAttributeError{
			Attr:    "type",
			Field:   ir.KindProtein,
			Message: "accession must be a single bare token",
		}
	}
	return ir.NewProteinType(accession)
}

// parseCellStateParam parses the quoted label of !science.cellstate<"...">.
func parseCellStateParam(param string) (ir.EntityType, error) {
	label, err := strconv.Unquote(strings.TrimSpace(param))
	if err != nil {
		return nil, &ir.MalformedAttributeError{
			Attr:    "type",
			Field:   ir.KindCellState,
			Message: "label must be a quoted string",
		}
	}
	return ir.NewCellStateType(label)
}

// parseGeneParam parses the "symbol, id" pair of !science.gene<...>.
func parseGeneParam(param string) (ir.EntityType, error) {
	symbol, id, err := splitPair(param, ir.KindGene)
	if err != nil {
		return nil, err
	}
	return ir.NewGeneType(symbol, id)
}

// parseChemicalParam parses the "name, id" pair of !science.chemical<...>.
func parseChemicalParam(param string) (ir.EntityType, error) {
	name, id, err := splitPair(param, ir.KindChemical)
	if err != nil {
		return nil, err
	}
	return ir.NewChemicalType(name, id)
}

func splitPair(param, kind string) (string, string, error) {
	parts := strings.SplitN(param, ",", 2)
	if len(parts) != 2 {
		return "", "", &ir.MalformedAttributeError{
			Attr:    "type",
			Field:   kind,
			Message: "expected two comma-separated parameters",
		}
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
