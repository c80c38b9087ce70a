package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riokid4/science-os/internal/syntax"
)

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	var extDir string

	cmd := &cobra.Command{
		Use:   "fmt <module.sir>",
		Short: "Print a module in canonical form",
		Long: `Parse and verify a module, then print its canonical textual form:
declaration-order attribute keys, NFC-normalized strings, stable float
formatting. Reparsing the output yields a structurally equal module.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(rootOpts, args[0], extDir, cmd)
		},
	}

	cmd.Flags().StringVar(&extDir, "ext", "", "directory of CUE dialect extension schemas")
	return cmd
}

func runFmt(opts *RootOptions, path, extDir string, cmd *cobra.Command) error {
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

	text := syntax.Print(m)
	if opts.Format == "json" {
		return formatter.Success(map[string]string{"text": text})
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}
