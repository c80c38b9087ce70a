package ir

import (
	"errors"
	"fmt"
)

// Diagnostic codes (E001-E099). Every structural error carries one of these
// so batch tooling can match on codes rather than message text.
const (
	CodeUnknownType           = "E001" // type name not registered
	CodeUnknownOperation      = "E002" // operation kind not registered
	CodeMalformedAttribute    = "E003" // bad context/evidence attribute
	CodeTypeMismatch          = "E004" // operand or result type mismatch
	CodeUnexpectedAttribute   = "E005" // attribute not permitted by schema
	CodeDuplicateSymbol       = "E006" // symbol defined twice
	CodeUndefinedSymbol       = "E007" // use before definition
	CodeDuplicateRegistration = "E008" // conflicting registry entry
	CodeSyntax                = "E009" // textual form does not parse
)

// UnknownTypeError indicates a lookup for an unregistered entity type name.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown entity type %q", e.Name)
}

// UnknownOperationError indicates a lookup for an unregistered operation kind.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation kind %q", e.Name)
}

// MalformedAttributeError indicates an attribute that fails validation:
// an unknown key, a missing required field, or a confidence outside [0,1].
// Out-of-range confidence is always rejected, never clamped.
type MalformedAttributeError struct {
	Attr    string // "context", "evidence", "site", or "type"
	Field   string // offending key or field, if known
	Message string
}

func (e *MalformedAttributeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed %s attribute: %s: %s", e.Attr, e.Field, e.Message)
	}
	return fmt.Sprintf("malformed %s attribute: %s", e.Attr, e.Message)
}

// TypeMismatchError indicates an operand or result whose type does not match
// the schema registered for the operation kind. Operand indexes are
// zero-based; OperandIndex is -1 for result type mismatches.
type TypeMismatchError struct {
	Op           string
	OperandIndex int
	Expected     string // declared pattern or computed result type
	Actual       string
}

func (e *TypeMismatchError) Error() string {
	if e.OperandIndex < 0 {
		return fmt.Sprintf("%s: result type mismatch: expected %s, got %s",
			e.Op, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: operand %d: expected %s, got %s",
		e.Op, e.OperandIndex, e.Expected, e.Actual)
}

// UnexpectedAttributeError indicates an attribute supplied to an operation
// whose schema forbids it (e.g. a site on science.inhibit).
type UnexpectedAttributeError struct {
	Op   string
	Attr string
}

func (e *UnexpectedAttributeError) Error() string {
	return fmt.Sprintf("%s does not accept a %s attribute", e.Op, e.Attr)
}

// DuplicateSymbolError indicates a second definition under an existing name.
type DuplicateSymbolError struct {
	Symbol string
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("symbol %%%s is already defined", e.Symbol)
}

// UndefinedSymbolError indicates a use of a symbol with no earlier
// definition. Definitions later in the module do not count: references are
// strictly backward (definition-before-use).
type UndefinedSymbolError struct {
	Symbol string
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("symbol %%%s is not defined at this point", e.Symbol)
}

// DuplicateRegistrationError indicates a registry entry registered twice
// under the same name with a different schema. Re-registering an identical
// schema is a no-op and does not produce this error.
type DuplicateRegistrationError struct {
	Name string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("%q is already registered with a different schema", e.Name)
}

// CodeOf returns the diagnostic code carried by err, or "" if err is not one
// of the IR error types. Uses errors.As to handle wrapped errors.
func CodeOf(err error) string {
	var (
		unknownType *UnknownTypeError
		unknownOp   *UnknownOperationError
		malformed   *MalformedAttributeError
		mismatch    *TypeMismatchError
		unexpected  *UnexpectedAttributeError
		dupSym      *DuplicateSymbolError
		undefSym    *UndefinedSymbolError
		dupReg      *DuplicateRegistrationError
	)
	switch {
	case errors.As(err, &unknownType):
		return CodeUnknownType
	case errors.As(err, &unknownOp):
		return CodeUnknownOperation
	case errors.As(err, &malformed):
		return CodeMalformedAttribute
	case errors.As(err, &mismatch):
		return CodeTypeMismatch
	case errors.As(err, &unexpected):
		return CodeUnexpectedAttribute
	case errors.As(err, &dupSym):
		return CodeDuplicateSymbol
	case errors.As(err, &undefSym):
		return CodeUndefinedSymbol
	case errors.As(err, &dupReg):
		return CodeDuplicateRegistration
	}
	return ""
}

// Diagnostic is one entry in a verification or parse report.
type Diagnostic struct {
	Code    string `json:"code"`
	Symbol  string `json:"symbol,omitempty"` // result symbol of the operation, if any
	Line    int    `json:"line,omitempty"`   // 1-based source line, when parsed from text
	Message string `json:"message"`
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	if d.Symbol != "" {
		return fmt.Sprintf("[%s] %%%s: %s", d.Code, d.Symbol, d.Message)
	}
	return fmt.Sprintf("[%s] %s", d.Code, d.Message)
}

// NewDiagnostic builds a Diagnostic from an IR error, extracting its code.
// Errors outside the IR taxonomy get code E000.
func NewDiagnostic(symbol string, err error) Diagnostic {
	code := CodeOf(err)
	if code == "" {
		code = "E000"
	}
	return Diagnostic{Code: code, Symbol: symbol, Message: err.Error()}
}
