package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riokid4/science-os/internal/lint"
)

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		extDir     string
		policyPath string
	)

	cmd := &cobra.Command{
		Use:   "lint <module.sir>",
		Short: "Run advisory consistency checks over a module",
		Long: `Verify a module, then run the advisory lint checks: low-confidence
evidence, contradictory activate/inhibit pairs, missing experimental
context. Findings are advisory - they do not fail the command - but a
module that does not verify does.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(rootOpts, args[0], extDir, policyPath, cmd)
		},
	}

	cmd.Flags().StringVar(&extDir, "ext", "", "directory of CUE dialect extension schemas")
	cmd.Flags().StringVar(&policyPath, "policy", "", "YAML lint policy file")
	return cmd
}

func runLint(opts *RootOptions, path, extDir, policyPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	policy := lint.DefaultPolicy()
	if policyPath != "" {
		var err error
		policy, err = lint.LoadPolicy(policyPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "loading lint policy", err)
		}
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

	findings := lint.Run(m, policy)
	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"operations": len(m.Operations()),
			"findings":   findings,
		})
	}
	fmt.Fprint(cmd.OutOrStdout(), lint.Render(m, findings))
	return nil
}
