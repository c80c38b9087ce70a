package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riokid4/science-os/internal/store"
)

const validModule = `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %r = science.phosphorylate %a, %b at "S15" {context = #science.context<organism="human">} {evidence = #science.evidence<"9724731", "unknown", 0.95, "reach">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
}
`

const invalidModule = `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %r = science.phosphorylate %a, %b at "S15" {context = #science.context<organism="human">} {evidence = #science.evidence<"9724731", "unknown", 1.2, "reach">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
}
`

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVerifyCommand_Valid(t *testing.T) {
	path := writeFile(t, "m.sir", validModule)

	stdout, _, err := runCommand(t, "verify", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "ok: 1 operations verified")
}

func TestVerifyCommand_Invalid(t *testing.T) {
	path := writeFile(t, "m.sir", invalidModule)

	stdout, _, err := runCommand(t, "verify", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "[E003]")
	assert.Contains(t, stdout, "1 diagnostics")
}

func TestVerifyCommand_MissingFile(t *testing.T) {
	_, _, err := runCommand(t, "verify", filepath.Join(t.TempDir(), "nope.sir"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerifyCommand_JSON(t *testing.T) {
	path := writeFile(t, "m.sir", validModule)

	stdout, _, err := runCommand(t, "--format", "json", "verify", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestVerifyCommand_JSONInvalid(t *testing.T) {
	path := writeFile(t, "m.sir", invalidModule)

	stdout, _, err := runCommand(t, "--format", "json", "verify", path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E003", resp.Error.Code)
}

func TestVerifyCommand_ExtensionsPerInvocation(t *testing.T) {
	extDir := t.TempDir()
	cue := `package ext

op: ubiquitinate: {
	operands: ["protein", "protein"]
	result: operand: 1
	site:   "optional"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(extDir, "ubiquitinate.cue"), []byte(cue), 0644))

	extended := `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %u = science.ubiquitinate %a, %b {context = #science.context<>} {evidence = #science.evidence<"1", "reach", 0.9, "reading">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
}
`
	path := writeFile(t, "m.sir", extended)

	// Seal the shared default registry first; --ext runs must still work.
	_, _, err := runCommand(t, "verify", writeFile(t, "plain.sir", validModule))
	require.NoError(t, err)

	// Each --ext invocation loads into its own registry, so repeating it
	// in-process succeeds.
	for i := 0; i < 2; i++ {
		stdout, _, err := runCommand(t, "verify", path, "--ext", extDir)
		require.NoError(t, err)
		assert.Contains(t, stdout, "ok: 1 operations verified")
	}

	// And the extension does not leak into invocations without --ext.
	stdout, _, err := runCommand(t, "verify", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "[E002]")
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	path := writeFile(t, "m.sir", validModule)

	_, _, err := runCommand(t, "--format", "yaml", "verify", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestFmtCommand_Canonicalizes(t *testing.T) {
	// Reversed context keys normalize to declaration order.
	input := `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %r = science.activate %a, %b {context = #science.context<cell_type="HeLa", organism="human">} {evidence = #science.evidence<"1", "reach", 0.9, "reading">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
}
`
	path := writeFile(t, "m.sir", input)

	stdout, _, err := runCommand(t, "fmt", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, `#science.context<organism="human", cell_type="HeLa">`)
}

func TestIngestCommand(t *testing.T) {
	statements := `[
		{"type": "Complex", "members": [
			{"name": "BRCA1", "db_refs": {"UP": "P38398"}},
			{"name": "BARD1", "db_refs": {"UP": "Q99728"}}
		]}
	]`
	jsonPath := writeFile(t, "statements.json", statements)
	outPath := filepath.Join(t.TempDir(), "out.sir")

	stdout, _, err := runCommand(t, "ingest", jsonPath, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 statements converted, 0 skipped")

	// The emitted module verifies.
	verifyOut, _, err := runCommand(t, "verify", outPath)
	require.NoError(t, err)
	assert.Contains(t, verifyOut, "ok: 1 operations verified")
}

func TestIngestCommand_Stdout(t *testing.T) {
	statements := `[
		{"type": "Inhibition",
		 "subj": {"name": "TP53", "db_refs": {"UP": "P04637"}},
		 "obj": {"name": "CDK2", "db_refs": {"UP": "P24941"}}}
	]`
	jsonPath := writeFile(t, "statements.json", statements)

	stdout, _, err := runCommand(t, "ingest", jsonPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "science.inhibit")
	assert.Contains(t, stdout, `!science.cellstate<"inhibited">`)
}

func TestLintCommand_FindingsAreAdvisory(t *testing.T) {
	lowConfidence := `module {
  %a = constant !science.protein<Q13315>
  %b = constant !science.protein<P04637>
  %r = science.activate %a, %b {context = #science.context<>} {evidence = #science.evidence<"1", "reach", 0.2, "reading">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
}
`
	path := writeFile(t, "m.sir", lowConfidence)

	stdout, _, err := runCommand(t, "lint", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "findings: 1")
	assert.Contains(t, stdout, "low confidence 0.2")
}

func TestLintCommand_UnverifiableModuleFails(t *testing.T) {
	path := writeFile(t, "m.sir", invalidModule)

	_, _, err := runCommand(t, "lint", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestLintCommand_WithPolicy(t *testing.T) {
	path := writeFile(t, "m.sir", validModule)
	policy := writeFile(t, "policy.yaml", "min_confidence: 0.99\n")

	stdout, _, err := runCommand(t, "lint", path, "--policy", policy)
	require.NoError(t, err)
	assert.Contains(t, stdout, "low confidence 0.95")
}

func TestImportCommand(t *testing.T) {
	path := writeFile(t, "p53.sir", validModule)
	dbPath := filepath.Join(t.TempDir(), "science.db")

	stdout, _, err := runCommand(t, "import", path, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, `imported "p53": 1 operations`)

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	modules, err := s.ListModules(context.Background())
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "p53", modules[0].Name)
	assert.Equal(t, 1, modules[0].OpCount)
}

func TestImportCommand_InvalidModuleRejected(t *testing.T) {
	path := writeFile(t, "bad.sir", invalidModule)
	dbPath := filepath.Join(t.TempDir(), "science.db")

	_, _, err := runCommand(t, "import", path, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(WrapExitError(ExitFailure, "wrapped", assert.AnError)))
}
