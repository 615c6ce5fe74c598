package knowledge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pv-case-assessor/internal/domain"
)

func TestDefault(t *testing.T) {
	kb, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Препарат А", kb.DefaultDrug)
	assert.Equal(t, []string{"Препарат А", "Препарат Б", "Drug A"}, kb.Registry.DrugNames())
	assert.True(t, kb.IMEList.Contains("Anaphylactic shock"))

	id, ok := kb.Terms.Lookup("анафилактический шок")
	require.True(t, ok)
	assert.Equal(t, "Anaphylactic shock", id)

	label, ok := kb.Registry.Label("Препарат А")
	require.True(t, ok)
	require.Len(t, label.ExpectedEffects, 3)
	assert.Equal(t, "головная боль", label.ExpectedEffects[0].Name)

	allergy := label.ExpectedEffects[2]
	assert.Equal(t, domain.SYMPTOM_COMPLEX, allergy.Type)
	assert.Equal(t, []string{"сыпь", "зуд", "крапивница", "отек"}, allergy.Includes)
}

func TestDefault_TermOrder(t *testing.T) {
	kb, err := Default()
	require.NoError(t, err)

	entries := kb.Terms.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "анафилактический шок", entries[0].SurfaceTerm)
	assert.Equal(t, "анафилактическая реакция", entries[1].SurfaceTerm)
}

func TestParse_JSON(t *testing.T) {
	doc := `{
  "drugs": {
    "Zeta": {"expected_effects": {"rash": {"type": "single", "frequency": "rare"}}},
    "Alpha": {"expected_effects": {}}
  },
  "important_medical_events": ["Sepsis"],
  "term_dictionary": {"sepsis": "Sepsis"}
}`
	kb, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"Zeta", "Alpha"}, kb.Registry.DrugNames(), "document order is kept")
	assert.Equal(t, FallbackDrug, kb.DefaultDrug)
	assert.True(t, kb.IMEList.Contains("Sepsis"))
}

func TestParse_Empty(t *testing.T) {
	kb, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, 0, kb.Registry.Len())
	assert.Equal(t, 0, kb.Terms.Len())
	assert.False(t, kb.IMEList.Contains("Anaphylactic shock"))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", "drugs: ["},
		{"drugs not a mapping", "drugs: [a, b]"},
		{"invalid effect type", "drugs:\n  X:\n    expected_effects:\n      rash: {type: cluster}"},
		{"includes on single", "drugs:\n  X:\n    expected_effects:\n      rash: {type: single, includes: [itch]}"},
		{"term not a string", "term_dictionary:\n  sepsis: [Sepsis]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrKnowledgeBase))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_drug: Zeta\ndrugs:\n  Zeta:\n    expected_effects: {}\n"), 0644))

	kb, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Zeta", kb.DefaultDrug)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
