package ingest

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riokid4/science-os/internal/dialect"
	"github.com/riokid4/science-os/internal/ir"
)

func TestConvertJSON_Fixture(t *testing.T) {
	data, err := os.ReadFile("testdata/statements.json")
	require.NoError(t, err)

	gen := NewFixedGenerator("0001", "0002", "0003", "0004")
	m, report, err := ConvertJSON(data, gen)
	require.NoError(t, err)

	assert.Equal(t, 6, report.Statements)
	assert.Equal(t, 4, report.Converted)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, "Methylation", report.Skipped[0].Type)
	assert.Contains(t, report.Skipped[0].Reason, "unsupported statement type")
	assert.Contains(t, report.Skipped[1].Reason, "no grounding reference")

	// 7 deduplicated constants plus 4 operations.
	assert.Equal(t, 11, m.Len())
	assert.Len(t, m.Constants(), 7)
	assert.Len(t, m.Operations(), 4)

	// The converted module verifies against the builtin vocabulary.
	assert.Empty(t, dialect.VerifyModule(dialect.NewScienceRegistry(), m))
}

func TestConvert_Phosphorylation(t *testing.T) {
	data, err := os.ReadFile("testdata/statements.json")
	require.NoError(t, err)

	m, _, err := ConvertJSON(data, NewFixedGenerator("0001", "0002", "0003", "0004"))
	require.NoError(t, err)

	r, err := m.Use("phospho_tp53_0001")
	require.NoError(t, err)
	op := r.Op
	require.NotNil(t, op)

	assert.Equal(t, dialect.OpPhosphorylate, op.Kind)
	assert.Equal(t, "S15", op.Site)
	assert.Equal(t, "o96017", op.Operands[0].Name)
	assert.Equal(t, "p04637", op.Operands[1].Name)
	assert.True(t, r.Type.Equal(ir.ProteinType{Accession: "P04637"}))

	assert.Equal(t, "human", op.Context.Organism)
	assert.Equal(t, "HeLa", op.Context.CellType)
	assert.Equal(t, "9724731", op.Evidence.SourceID)
	assert.Equal(t, 0.95, op.Evidence.Confidence)
	assert.Equal(t, "reach", op.Evidence.Method)
}

func TestConvert_RegulationResults(t *testing.T) {
	data, err := os.ReadFile("testdata/statements.json")
	require.NoError(t, err)

	m, _, err := ConvertJSON(data, NewFixedGenerator("0001", "0002", "0003", "0004"))
	require.NoError(t, err)

	// Activation keeps the object's protein type.
	act, err := m.Use("activated_mapk1_0002")
	require.NoError(t, err)
	assert.True(t, act.Type.Equal(ir.ProteinType{Accession: "P28482"}))

	// Inhibition produces the fixed inhibited cell state.
	inh, err := m.Use("inhibited_state_0003")
	require.NoError(t, err)
	assert.True(t, inh.Type.Equal(ir.CellStateType{Label: "inhibited"}))

	// Complex produces the complex protein type.
	cpx, err := m.Use("complex_0004")
	require.NoError(t, err)
	assert.True(t, cpx.Type.Equal(ir.ProteinType{Accession: "complex"}))
	assert.Equal(t, dialect.OpBind, cpx.Op.Kind)
}

func TestConvert_DeduplicatesEntities(t *testing.T) {
	data, err := os.ReadFile("testdata/statements.json")
	require.NoError(t, err)

	m, _, err := ConvertJSON(data, NewFixedGenerator("0001", "0002", "0003", "0004"))
	require.NoError(t, err)

	// TP53 appears in two statements but is defined once; both operations
	// reference the same constant.
	phos, err := m.Use("phospho_tp53_0001")
	require.NoError(t, err)
	inh, err := m.Use("inhibited_state_0003")
	require.NoError(t, err)
	assert.Same(t, phos.Op.Operands[1], inh.Op.Operands[0])
}

func TestConvertJSON_WrapperObject(t *testing.T) {
	data := []byte(`{"statements": [
		{"type": "Complex", "members": [
			{"name": "BRCA1", "db_refs": {"UP": "P38398"}},
			{"name": "BARD1", "db_refs": {"UP": "Q99728"}}
		]}
	]}`)

	m, report, err := ConvertJSON(data, NewFixedGenerator("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Converted)
	assert.Equal(t, 3, m.Len())
}

func TestConvertJSON_BadInput(t *testing.T) {
	_, _, err := ConvertJSON([]byte("not json"), NewFixedGenerator())
	require.Error(t, err)
}

func TestGroundAgent(t *testing.T) {
	tests := []struct {
		name  string
		agent Agent
		want  ir.EntityType
		sym   string
	}{
		{
			"protein wins over gene refs",
			Agent{Name: "TP53", DBRefs: map[string]string{"UP": "P04637", "HGNC": "11998"}},
			ir.ProteinType{Accession: "P04637"},
			"p04637",
		},
		{
			"gene by HGNC",
			Agent{Name: "TP53", DBRefs: map[string]string{"HGNC": "11998"}},
			ir.GeneType{Symbol: "TP53", ID: "11998"},
			"tp53",
		},
		{
			"gene by Entrez",
			Agent{Name: "TP53", DBRefs: map[string]string{"EGID": "7157"}},
			ir.GeneType{Symbol: "TP53", ID: "7157"},
			"tp53",
		},
		{
			"chemical by PubChem",
			Agent{Name: "aspirin", DBRefs: map[string]string{"PUBCHEM": "2244"}},
			ir.ChemicalType{Name: "aspirin", ID: "2244"},
			"aspirin",
		},
		{
			"chemical by ChEBI",
			Agent{Name: "staurosporine", DBRefs: map[string]string{"CHEBI": "CHEBI:15738"}},
			ir.ChemicalType{Name: "staurosporine", ID: "CHEBI:15738"},
			"staurosporine",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, sym, err := groundAgent(&tt.agent)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
			assert.Equal(t, tt.sym, sym)
		})
	}
}

func TestGroundAgent_Ungrounded(t *testing.T) {
	_, _, err := groundAgent(&Agent{Name: "X", DBRefs: map[string]string{"TEXT": "X"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no grounding reference")
}

func TestEvidenceFrom_Defaults(t *testing.T) {
	// No evidence at all: the low-confidence unknown record.
	e := evidenceFrom(nil)
	assert.Equal(t, "unknown", e.SourceID)
	assert.Equal(t, 0.5, e.Confidence)
	assert.Equal(t, "literature", e.Method)

	// Evidence without pmid or direct score.
	e = evidenceFrom([]Evidence{{SourceAPI: "reach"}})
	assert.Equal(t, "unknown", e.SourceID)
	assert.Equal(t, 0.8, e.Confidence)
	assert.Equal(t, "reach", e.Method)
}

func TestContextFrom_FirstWins(t *testing.T) {
	c := contextFrom([]Evidence{
		{Annotations: Annotations{Species: &NamedRef{Name: "human"}}},
		{Annotations: Annotations{Species: &NamedRef{Name: "mouse"}, CellLine: &NamedRef{Name: "HeLa"}}},
	})
	assert.Equal(t, "human", c.Organism)
	assert.Equal(t, "HeLa", c.CellType)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"TP53", "tp53"},
		{"MAP2K1", "map2k1"},
		{"mystery factor", "mystery_factor"},
		{"BRCA-1", "brca_1"},
		{"??!", "entity"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitize(tt.in))
	}
}
