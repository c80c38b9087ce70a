package ir

import "fmt"

// Entity type kind names as they appear in the textual form
// (e.g. "!science.protein<Q13315>").
const (
	KindProtein   = "protein"
	KindCellState = "cellstate"
	KindGene      = "gene"
	KindChemical  = "chemical"
)

// EntityType is a sealed interface over the biological entity types.
// Only ProteinType, CellStateType, GeneType, and ChemicalType implement it.
//
// Entity types are value types: two ProteinType values are equal iff their
// accessions are equal (case-sensitive). There is no subtyping and no
// implicit conversion between kinds.
type EntityType interface {
	entityType() // Sealed - only these types implement it

	// Kind returns the type kind name ("protein", "cellstate", ...).
	Kind() string

	// String returns the canonical textual form, e.g. "!science.protein<Q13315>".
	String() string

	// Equal reports whether two entity types are identical.
	Equal(EntityType) bool
}

// ProteinType identifies a protein by its accession (e.g. a UniProt ID).
// The accession is the sole distinguishing parameter.
type ProteinType struct {
	Accession string
}

func (ProteinType) entityType() {}

// Kind returns "protein".
func (ProteinType) Kind() string { return KindProtein }

func (t ProteinType) String() string {
	return fmt.Sprintf("!science.%s<%s>", KindProtein, t.Accession)
}

// Equal reports accession equality, case-sensitive.
func (t ProteinType) Equal(o EntityType) bool {
	p, ok := o.(ProteinType)
	return ok && p.Accession == t.Accession
}

// NewProteinType constructs a protein type descriptor.
// The accession must be non-empty.
func NewProteinType(accession string) (ProteinType, error) {
	if accession == "" {
		return ProteinType{}, &MalformedAttributeError{
			Attr:    "type",
			Field:   "accession",
			Message: "protein accession must be non-empty",
		}
	}
	return ProteinType{Accession: accession}, nil
}

// CellStateType identifies a cell state by label (e.g. "inhibited").
// Labels are quoted in the textual form: !science.cellstate<"inhibited">.
type CellStateType struct {
	Label string
}

func (CellStateType) entityType() {}

// Kind returns "cellstate".
func (CellStateType) Kind() string { return KindCellState }

func (t CellStateType) String() string {
	return fmt.Sprintf("!science.%s<%q>", KindCellState, t.Label)
}

func (t CellStateType) Equal(o EntityType) bool {
	c, ok := o.(CellStateType)
	return ok && c.Label == t.Label
}

// NewCellStateType constructs a cell state type descriptor.
// The label must be non-empty.
func NewCellStateType(label string) (CellStateType, error) {
	if label == "" {
		return CellStateType{}, &MalformedAttributeError{
			Attr:    "type",
			Field:   "label",
			Message: "cell state label must be non-empty",
		}
	}
	return CellStateType{Label: label}, nil
}

// GeneType identifies a gene by symbol plus a database identifier
// (HGNC or Entrez): !science.gene<TP53, 11998>.
type GeneType struct {
	Symbol string
	ID     string
}

func (GeneType) entityType() {}

// Kind returns "gene".
func (GeneType) Kind() string { return KindGene }

func (t GeneType) String() string {
	return fmt.Sprintf("!science.%s<%s, %s>", KindGene, t.Symbol, t.ID)
}

func (t GeneType) Equal(o EntityType) bool {
	g, ok := o.(GeneType)
	return ok && g.Symbol == t.Symbol && g.ID == t.ID
}

// NewGeneType constructs a gene type descriptor.
// Both symbol and database ID must be non-empty.
func NewGeneType(symbol, id string) (GeneType, error) {
	if symbol == "" || id == "" {
		return GeneType{}, &MalformedAttributeError{
			Attr:    "type",
			Field:   "gene",
			Message: "gene symbol and id must be non-empty",
		}
	}
	return GeneType{Symbol: symbol, ID: id}, nil
}

// ChemicalType identifies a chemical by name plus a database identifier
// (PubChem or ChEBI): !science.chemical<aspirin, 2244>.
type ChemicalType struct {
	Name string
	ID   string
}

func (ChemicalType) entityType() {}

// Kind returns "chemical".
func (ChemicalType) Kind() string { return KindChemical }

func (t ChemicalType) String() string {
	return fmt.Sprintf("!science.%s<%s, %s>", KindChemical, t.Name, t.ID)
}

func (t ChemicalType) Equal(o EntityType) bool {
	c, ok := o.(ChemicalType)
	return ok && c.Name == t.Name && c.ID == t.ID
}

// NewChemicalType constructs a chemical type descriptor.
// Both name and database ID must be non-empty.
func NewChemicalType(name, id string) (ChemicalType, error) {
	if name == "" || id == "" {
		return ChemicalType{}, &MalformedAttributeError{
			Attr:    "type",
			Field:   "chemical",
			Message: "chemical name and id must be non-empty",
		}
	}
	return ChemicalType{Name: name, ID: id}, nil
}
