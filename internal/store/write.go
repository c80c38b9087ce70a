package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/riokid4/science-os/internal/ir"
)

// ImportModule persists a verified module under a unique name: one row in
// modules holding the canonical printed text, plus one assertion row per
// operation for batch queries.
//
// Imports are idempotent - re-importing an existing module name is a
// silent no-op (ON CONFLICT DO NOTHING), matching re-runs of batch
// pipelines. The caller supplies the canonical text so the store stays
// independent of the printer.
func (s *Store) ImportModule(ctx context.Context, name, text string, m *ir.Module) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import module: %w", err)
	}
	defer tx.Rollback()

	ops := m.Operations()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO modules (name, text, op_count)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, text, len(ops)); err != nil {
		return fmt.Errorf("import module %q: %w", name, err)
	}

	for _, op := range ops {
		operands := make([]string, len(op.Operands))
		for i, operand := range op.Operands {
			operands[i] = operand.Name
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO assertions
			(module_name, symbol, kind, operands, site, organism, cell_type,
			 source_id, extractor, confidence, method, result_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(module_name, symbol) DO NOTHING
		`,
			name,
			op.Result.Name,
			op.Kind,
			strings.Join(operands, " "),
			op.Site,
			op.Context.Organism,
			op.Context.CellType,
			op.Evidence.SourceID,
			op.Evidence.Extractor,
			op.Evidence.Confidence,
			op.Evidence.Method,
			op.Result.Type.String(),
		); err != nil {
			return fmt.Errorf("import assertion %%%s: %w", op.Result.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import module %q: %w", name, err)
	}
	return nil
}
