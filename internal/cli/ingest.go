package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/riokid4/science-os/internal/dialect"
	"github.com/riokid4/science-os/internal/ingest"
	"github.com/riokid4/science-os/internal/syntax"
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "ingest <statements.json>",
		Short: "Convert INDRA statements to a science IR module",
		Long: `Convert INDRA statement JSON into a verified science IR module and
print it in canonical form. Statements that cannot be grounded or carry an
unsupported type are skipped and reported, never silently dropped. The
converted module is verified before printing; conversion that produces an
unverifiable module fails.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(rootOpts, args[0], outPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write module text to a file instead of stdout")
	return cmd
}

func runIngest(opts *RootOptions, path, outPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("reading %s", path), err)
	}

	m, report, err := ingest.ConvertJSON(data, ingest.UUIDGenerator{})
	if err != nil {
		return WrapExitError(ExitCommandError, "converting INDRA statements", err)
	}
	formatter.VerboseLog("Converted %d/%d statements", report.Converted, report.Statements)
	for _, skip := range report.Skipped {
		formatter.VerboseLog("Skipped statement %d (%s): %s", skip.Index, skip.Type, skip.Reason)
	}

	if diags := dialect.VerifyModule(dialect.Default(), m); len(diags) > 0 {
		return reportDiagnostics(formatter, diags)
	}

	text := syntax.Print(m)
	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("writing %s", outPath), err)
		}
		return formatter.Success(fmt.Sprintf("wrote %s: %d statements converted, %d skipped",
			outPath, report.Converted, len(report.Skipped)))
	}
	if opts.Format == "json" {
		return formatter.Success(map[string]any{"text": text, "report": report})
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}
