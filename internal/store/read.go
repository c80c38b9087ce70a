package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ModuleInfo summarizes one stored module.
type ModuleInfo struct {
	Name    string `json:"name"`
	OpCount int    `json:"op_count"`
}

// Assertion is one stored operation row.
type Assertion struct {
	ModuleName string   `json:"module_name"`
	Symbol     string   `json:"symbol"`
	Kind       string   `json:"kind"`
	Operands   []string `json:"operands"`
	Site       string   `json:"site,omitempty"`
	Organism   string   `json:"organism,omitempty"`
	CellType   string   `json:"cell_type,omitempty"`
	SourceID   string   `json:"source_id"`
	Extractor  string   `json:"extractor"`
	Confidence float64  `json:"confidence"`
	Method     string   `json:"method"`
	ResultType string   `json:"result_type"`
}

// ListModules returns stored modules ordered by name.
func (s *Store) ListModules(ctx context.Context) ([]ModuleInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, op_count FROM modules ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var out []ModuleInfo
	for rows.Next() {
		var info ModuleInfo
		if err := rows.Scan(&info.Name, &info.OpCount); err != nil {
			return nil, fmt.Errorf("list modules: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// LoadModuleText returns the canonical text of a stored module.
// Fails with ErrNotFound when the name is not in the store.
func (s *Store) LoadModuleText(ctx context.Context, name string) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT text FROM modules WHERE name = ?`, name).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("load module %q: %w", name, err)
	}
	return text, nil
}

// AssertionFilter narrows an assertion query. Zero values mean "no bound";
// MaxConfidence of 0 is treated as unbounded since a stored confidence of
// exactly 0 is already matched by MinConfidence 0.
type AssertionFilter struct {
	Kind          string
	MinConfidence float64
	MaxConfidence float64
}

// Assertions returns stored assertions matching the filter, ordered by
// module then symbol. This is the batch-tooling entry point: e.g. all
// phosphorylation assertions below confidence 0.6 across every module.
func (s *Store) Assertions(ctx context.Context, f AssertionFilter) ([]Assertion, error) {
	query := `SELECT module_name, symbol, kind, operands, site, organism, cell_type,
	                 source_id, extractor, confidence, method, result_type
	          FROM assertions`
	var conds []string
	var args []any
	if f.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.MinConfidence > 0 {
		conds = append(conds, "confidence >= ?")
		args = append(args, f.MinConfidence)
	}
	if f.MaxConfidence > 0 {
		conds = append(conds, "confidence <= ?")
		args = append(args, f.MaxConfidence)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY module_name, symbol"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assertions: %w", err)
	}
	defer rows.Close()

	var out []Assertion
	for rows.Next() {
		var a Assertion
		var operands string
		if err := rows.Scan(&a.ModuleName, &a.Symbol, &a.Kind, &operands, &a.Site,
			&a.Organism, &a.CellType, &a.SourceID, &a.Extractor,
			&a.Confidence, &a.Method, &a.ResultType); err != nil {
			return nil, fmt.Errorf("query assertions: %w", err)
		}
		a.Operands = strings.Fields(operands)
		out = append(out, a)
	}
	return out, rows.Err()
}
