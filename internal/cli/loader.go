package cli

import (
	"fmt"
	"os"

	"github.com/riokid4/science-os/internal/dialect"
	"github.com/riokid4/science-os/internal/ir"
	"github.com/riokid4/science-os/internal/syntax"
)

// loadRegistry returns the registry for one command invocation. Without
// extensions the shared default registry serves lookups. With --ext a fresh
// registry is built per invocation: the default seals on first lookup, and
// extensions must not leak into later commands in the same process.
func loadRegistry(extDir string, f *OutputFormatter) (*dialect.Registry, error) {
	if extDir == "" {
		return dialect.Default(), nil
	}
	f.VerboseLog("Loading dialect extensions from %s", extDir)
	reg := dialect.NewScienceRegistry()
	if err := dialect.LoadExtensions(extDir, reg); err != nil {
		return nil, WrapExitError(ExitCommandError, "loading dialect extensions", err)
	}
	return reg, nil
}

// loadModule reads and parses a module file, verifying it against the
// registry. All parse and verification diagnostics are returned together.
func loadModule(path string, reg *dialect.Registry, f *OutputFormatter) (*ir.Module, []ir.Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("reading %s", path), err)
	}
	f.VerboseLog("Parsing %s (%d bytes)", path, len(data))
	m, diags := syntax.ParseAndVerify(string(data), reg)
	return m, diags, nil
}

// reportDiagnostics emits all diagnostics and returns the failure exit
// error commands surface when a module does not verify.
func reportDiagnostics(f *OutputFormatter, diags []ir.Diagnostic) error {
	if f.Format == "json" {
		if err := f.Error(diags[0].Code, fmt.Sprintf("%d diagnostics", len(diags)), diags); err != nil {
			return err
		}
	} else {
		for _, d := range diags {
			fmt.Fprintln(f.Writer, d.Error())
		}
		fmt.Fprintf(f.Writer, "%d diagnostics\n", len(diags))
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d diagnostics", len(diags)))
}
