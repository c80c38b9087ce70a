package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riokid4/science-os/internal/ir"
)

// VerifyResult holds verification results for JSON output.
type VerifyResult struct {
	Valid       bool            `json:"valid"`
	Operations  int             `json:"operations"`
	Diagnostics []ir.Diagnostic `json:"diagnostics,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var extDir string

	cmd := &cobra.Command{
		Use:   "verify <module.sir>",
		Short: "Verify a module against the dialect schemas",
		Long: `Parse a science IR module and verify every operation against its
registered schema: operand patterns, site and evidence attributes, and
result types. All diagnostics are reported in one pass, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, args[0], extDir, cmd)
		},
	}

	cmd.Flags().StringVar(&extDir, "ext", "", "directory of CUE dialect extension schemas")
	return cmd
}

func runVerify(opts *RootOptions, path, extDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	reg, err := loadRegistry(extDir, formatter)
	if err != nil {
		return err
	}
	m, diags, err := loadModule(path, reg, formatter)
	if err != nil {
		return err
	}

	if len(diags) > 0 {
		return reportDiagnostics(formatter, diags)
	}

	if opts.Format == "json" {
		return formatter.Success(VerifyResult{Valid: true, Operations: len(m.Operations())})
	}
	return formatter.Success(fmt.Sprintf("ok: %d operations verified", len(m.Operations())))
}
