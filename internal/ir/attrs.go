package ir

import "math"

// ContextKeys is the declaration-order key table for context attributes.
// Encoding emits keys in this order; decoding accepts any order. Extending
// the context vocabulary means adding a key here and a field on
// ContextAttribute - nothing else changes.
var ContextKeys = []string{"organism", "cell_type"}

// ContextAttribute records the experimental conditions under which an
// assertion holds. An unset field means "unspecified"; an explicit empty
// string in the textual form is malformed, never a stand-in for unset.
//
// ContextAttribute is immutable once constructed and attached to exactly
// one operation.
type ContextAttribute struct {
	Organism string
	CellType string
}

// NewContextAttribute validates and constructs a context attribute from
// decoded key/value pairs. Unknown keys and explicitly empty values fail
// with MalformedAttributeError.
func NewContextAttribute(fields map[string]string) (ContextAttribute, error) {
	var c ContextAttribute
	for key, value := range fields {
		if value == "" {
			return ContextAttribute{}, &MalformedAttributeError{
				Attr:    "context",
				Field:   key,
				Message: "empty value: omit the key to mean unspecified",
			}
		}
		switch key {
		case "organism":
			c.Organism = value
		case "cell_type":
			c.CellType = value
		default:
			return ContextAttribute{}, &MalformedAttributeError{
				Attr:    "context",
				Field:   key,
				Message: "unknown context key",
			}
		}
	}
	return c, nil
}

// Get returns the value for a context key and whether it is set.
func (c ContextAttribute) Get(key string) (string, bool) {
	switch key {
	case "organism":
		return c.Organism, c.Organism != ""
	case "cell_type":
		return c.CellType, c.CellType != ""
	}
	return "", false
}

// IsZero reports whether no context key is set.
func (c ContextAttribute) IsZero() bool {
	return c == ContextAttribute{}
}

// Equal reports field-wise equality. Textual key order never affects
// equality because decoding normalizes into fields.
func (c ContextAttribute) Equal(o ContextAttribute) bool {
	return c == o
}

// EvidenceAttribute records the provenance of an assertion: the source
// document, the extracting system, its confidence, and the extraction
// method. Printed positionally:
//
//	#science.evidence<"9724731", "unknown", 0.95, "reach">
//
// EvidenceAttribute is immutable once constructed and attached to exactly
// one operation.
type EvidenceAttribute struct {
	SourceID   string  // document identifier (e.g. PubMed ID)
	Extractor  string  // name of the extracting system
	Confidence float64 // in [0,1], validated at construction
	Method     string  // extraction method (e.g. "reach")
}

// NewEvidenceAttribute validates and constructs an evidence attribute.
// SourceID must be non-empty and confidence must lie in [0,1]. Out-of-range
// confidence fails with MalformedAttributeError - it is never clamped.
func NewEvidenceAttribute(sourceID, extractor string, confidence float64, method string) (EvidenceAttribute, error) {
	if sourceID == "" {
		return EvidenceAttribute{}, &MalformedAttributeError{
			Attr:    "evidence",
			Field:   "source_id",
			Message: "source_id must be non-empty",
		}
	}
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return EvidenceAttribute{}, &MalformedAttributeError{
			Attr:    "evidence",
			Field:   "confidence",
			Message: "confidence must be within [0, 1]",
		}
	}
	return EvidenceAttribute{
		SourceID:   sourceID,
		Extractor:  extractor,
		Confidence: confidence,
		Method:     method,
	}, nil
}

// Equal reports field-wise equality.
func (e EvidenceAttribute) Equal(o EvidenceAttribute) bool {
	return e == o
}
