package dialect

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/riokid4/science-os/internal/ir"
)

// LoadExtensions compiles every CUE document in dir into operation schemas
// and registers them. This is the schema-as-data extension path: a new
// mechanistic relation kind ships as a CUE file, not as Go code.
//
// Must run before the registry's first lookup, like any registration.
func LoadExtensions(dir string, r *Registry) error {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return fmt.Errorf("no CUE instances in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return fmt.Errorf("loading CUE files from %s: %w", dir, inst.Err)
	}

	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return fmt.Errorf("building CUE instance from %s: %w", dir, err)
	}

	schemas, err := CompileOpSchemas(v)
	if err != nil {
		return err
	}
	for _, s := range schemas {
		if err := r.RegisterOp(s); err != nil {
			return fmt.Errorf("registering %q: %w", s.Name, err)
		}
	}
	return nil
}

// CompileOpSchemas parses operation schemas from a CUE value of the form:
//
//	op: ubiquitinate: {
//		operands: ["protein", "protein"]
//		result: operand: 1
//		site:   "forbidden"
//	}
//
// The result field is one of "operand: <index>", "cellstate: <label>", or
// "protein: <accession>". The site field defaults to "forbidden" when
// absent, matching the builtin vocabulary's default.
func CompileOpSchemas(v cue.Value) ([]OpSchema, error) {
	opsVal := v.LookupPath(cue.ParsePath("op"))
	if !opsVal.Exists() {
		return nil, nil
	}

	iter, err := opsVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating op schemas: %w", err)
	}

	var schemas []OpSchema
	for iter.Next() {
		s, err := compileOpSchema(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

func compileOpSchema(name string, v cue.Value) (OpSchema, error) {
	s := OpSchema{Name: name}

	operandsVal := v.LookupPath(cue.ParsePath("operands"))
	if !operandsVal.Exists() {
		return OpSchema{}, fmt.Errorf("op %q: operands is required", name)
	}
	list, err := operandsVal.List()
	if err != nil {
		return OpSchema{}, fmt.Errorf("op %q: operands must be a list: %w", name, err)
	}
	for list.Next() {
		pattern, err := list.Value().String()
		if err != nil {
			return OpSchema{}, fmt.Errorf("op %q: operand pattern must be a string: %w", name, err)
		}
		s.Operands = append(s.Operands, TypePattern(pattern))
	}

	s.Result, err = compileResultRule(name, v.LookupPath(cue.ParsePath("result")))
	if err != nil {
		return OpSchema{}, err
	}

	s.Site, err = compileSiteRule(name, v.LookupPath(cue.ParsePath("site")))
	if err != nil {
		return OpSchema{}, err
	}

	if err := s.validate(); err != nil {
		return OpSchema{}, err
	}
	return s, nil
}

func compileResultRule(name string, v cue.Value) (ResultRule, error) {
	if !v.Exists() {
		return ResultRule{}, fmt.Errorf("op %q: result is required", name)
	}

	if operandVal := v.LookupPath(cue.ParsePath("operand")); operandVal.Exists() {
		idx, err := operandVal.Int64()
		if err != nil {
			return ResultRule{}, fmt.Errorf("op %q: result.operand must be an int: %w", name, err)
		}
		return SameAsOperand(int(idx)), nil
	}
	if labelVal := v.LookupPath(cue.ParsePath("cellstate")); labelVal.Exists() {
		label, err := labelVal.String()
		if err != nil {
			return ResultRule{}, fmt.Errorf("op %q: result.cellstate must be a string: %w", name, err)
		}
		t, err := ir.NewCellStateType(label)
		if err != nil {
			return ResultRule{}, fmt.Errorf("op %q: %w", name, err)
		}
		return FixedResult(t), nil
	}
	if accVal := v.LookupPath(cue.ParsePath("protein")); accVal.Exists() {
		accession, err := accVal.String()
		if err != nil {
			return ResultRule{}, fmt.Errorf("op %q: result.protein must be a string: %w", name, err)
		}
		t, err := ir.NewProteinType(accession)
		if err != nil {
			return ResultRule{}, fmt.Errorf("op %q: %w", name, err)
		}
		return FixedResult(t), nil
	}
	return ResultRule{}, fmt.Errorf("op %q: result must be one of operand, cellstate, protein", name)
}

func compileSiteRule(name string, v cue.Value) (SiteRule, error) {
	if !v.Exists() {
		return SiteForbidden, nil
	}
	site, err := v.String()
	if err != nil {
		return SiteForbidden, fmt.Errorf("op %q: site must be a string: %w", name, err)
	}
	switch site {
	case "forbidden":
		return SiteForbidden, nil
	case "optional":
		return SiteOptional, nil
	case "required":
		return SiteRequired, nil
	default:
		return SiteForbidden, fmt.Errorf("op %q: invalid site rule %q, must be \"forbidden\", \"optional\", or \"required\"", name, site)
	}
}
