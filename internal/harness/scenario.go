// Package harness runs conformance scenarios against the science IR
// pipeline. A scenario is a YAML document naming a module file and the
// diagnostics it must produce; the rendered report is compared against a
// golden file so regressions in parsing, verification, or lint output are
// caught byte-for-byte.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/riokid4/science-os/internal/dialect"
	"github.com/riokid4/science-os/internal/lint"
	"github.com/riokid4/science-os/internal/syntax"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Module is the path to the module text, relative to the scenario file.
	Module string `yaml:"module"`

	// Extensions optionally names a CUE dialect-extension directory,
	// relative to the scenario file.
	Extensions string `yaml:"extensions,omitempty"`

	// ExpectCodes lists the diagnostic codes the module must produce, in
	// definition order. Empty means the module must verify cleanly.
	ExpectCodes []string `yaml:"expect_codes,omitempty"`

	// Lint enables the advisory checks with the default policy.
	Lint bool `yaml:"lint,omitempty"`

	// dir is the scenario file's directory, for resolving relative paths.
	dir string
}

// LoadScenario reads a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if s.Name == "" || s.Module == "" {
		return nil, fmt.Errorf("scenario %s: name and module are required", path)
	}
	s.dir = filepath.Dir(path)
	return &s, nil
}

// Result captures a scenario run for reporting and assertions.
type Result struct {
	Scenario    *Scenario
	Codes       []string // diagnostic codes in definition order
	Diagnostics []string // rendered diagnostics
	Findings    []string // rendered lint findings, when enabled
}

// Run executes the scenario: load extensions, parse, verify, optionally
// lint. A fresh registry per run keeps scenarios independent of each other
// and of the process-wide default.
func (s *Scenario) Run() (*Result, error) {
	reg := dialect.NewScienceRegistry()
	if s.Extensions != "" {
		if err := dialect.LoadExtensions(filepath.Join(s.dir, s.Extensions), reg); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}

	text, err := os.ReadFile(filepath.Join(s.dir, s.Module))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	m, diags := syntax.ParseAndVerify(string(text), reg)

	result := &Result{Scenario: s}
	for _, d := range diags {
		result.Codes = append(result.Codes, d.Code)
		result.Diagnostics = append(result.Diagnostics, d.Error())
	}
	if s.Lint {
		for _, f := range lint.Run(m, lint.DefaultPolicy()) {
			result.Findings = append(result.Findings, f.String())
		}
	}
	return result, nil
}

// CodesMatch reports whether the run produced exactly the expected codes.
func (r *Result) CodesMatch() bool {
	if len(r.Codes) != len(r.Scenario.ExpectCodes) {
		return false
	}
	for i, code := range r.Codes {
		if code != r.Scenario.ExpectCodes[i] {
			return false
		}
	}
	return true
}

// Report renders the run for golden-file comparison.
func (r *Result) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", r.Scenario.Name)
	fmt.Fprintf(&b, "diagnostics: %d\n", len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		b.WriteString(d)
		b.WriteByte('\n')
	}
	if r.Scenario.Lint {
		fmt.Fprintf(&b, "findings: %d\n", len(r.Findings))
		for _, f := range r.Findings {
			b.WriteString(f)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
