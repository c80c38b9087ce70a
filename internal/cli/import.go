package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riokid4/science-os/internal/store"
	"github.com/riokid4/science-os/internal/syntax"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		extDir string
		dbPath string
		name   string
	)

	cmd := &cobra.Command{
		Use:   "import <module.sir>",
		Short: "Import a verified module into the assertion store",
		Long: `Verify a module and persist it into the SQLite assertion store: the
canonical module text plus one queryable row per operation. Imports are
idempotent - re-importing an existing module name is a no-op.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], extDir, dbPath, name, cmd)
		},
	}

	cmd.Flags().StringVar(&extDir, "ext", "", "directory of CUE dialect extension schemas")
	cmd.Flags().StringVar(&dbPath, "db", "science.db", "path to the assertion store database")
	cmd.Flags().StringVar(&name, "name", "", "module name in the store (defaults to the file stem)")
	return cmd
}

func runImport(opts *RootOptions, path, extDir, dbPath, name string, cmd *cobra.Command) error {
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

	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer s.Close()

	if err := s.ImportModule(cmd.Context(), name, syntax.Print(m), m); err != nil {
		return WrapExitError(ExitCommandError, "importing module", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{"name": name, "operations": len(m.Operations())})
	}
	return formatter.Success(fmt.Sprintf("imported %q: %d operations", name, len(m.Operations())))
}
