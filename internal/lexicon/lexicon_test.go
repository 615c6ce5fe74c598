package lexicon

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
	lex, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, lex.Version)
	assert.Equal(t, "головная боль", lex.Events.Vocabulary[0])
	assert.Contains(t, lex.Events.Vocabulary, "анафилактический шок")
	assert.Len(t, lex.Completeness.Checks, 14)
	assert.Equal(t, []string{"drug_name", "outcome", "event_start_date", "dechallenge_result"}, lex.Completeness.Critical)

	for i, table := range lex.Seriousness {
		assert.Equal(t, domain.SeriousnessCategories[i], table.Category)
	}
}

func TestDefault_CheckOrder(t *testing.T) {
	lex := MustDefault()

	expected := []string{
		"patient_age", "patient_gender", "drug_name", "drug_dose",
		"event_start_date", "event_end_date", "time_to_onset", "outcome",
		"dechallenge_result", "rechallenge_info", "lab_data",
		"concomitant_drugs", "medical_history", "event_severity",
	}
	for i, c := range lex.Completeness.Checks {
		assert.Equal(t, expected[i], c.Field)
	}
}

func TestMatcher(t *testing.T) {
	m, err := NewMatcher([]string{"Отмен"}, []string{`через\s+(\d+)\s*(час|день|недел)`})
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"term is lower-cased", "препарат отменен", true},
		{"pattern on cyrillic", "через 2 часа после приема", true},
		{"no match", "развилась тошнота", false},
		{"empty text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.text))
		})
	}

	var nilMatcher *Matcher
	assert.False(t, nilMatcher.Match("anything"))
	assert.True(t, nilMatcher.Empty())
}

func TestMatcher_InvalidPattern(t *testing.T) {
	_, err := NewMatcher(nil, []string{`(unclosed`})
	assert.Error(t, err)
}

func TestNewMatcher_KeepsArguments(t *testing.T) {
	terms := []string{"Отмен"}
	patterns := []string{`Через\s+\d`}

	m, err := NewMatcher(terms, patterns)
	require.NoError(t, err)

	assert.Equal(t, []string{"Отмен"}, terms)
	assert.Equal(t, []string{`Через\s+\d`}, patterns)
	assert.Equal(t, []string{"отмен"}, m.Terms)
}

func TestMatcher_UpperCaseLiteralInPattern(t *testing.T) {
	m, err := NewMatcher(nil, []string{`ALT\s*\p{Nd}+`})
	require.NoError(t, err)

	assert.True(t, m.Match(Lower("ALT 120 Ед/л")))
}

func TestLower(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"no-break space", "Через\u00a02 часа", "через 2 часа"},
		{"narrow no-break space", "500\u202fмг", "500 мг"},
		{"ideographic space", "a\u3000b", "a b"},
		{"ascii whitespace kept", "строка\nвторая\tстрока", "строка\nвторая\tстрока"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lower(tt.text))
		})
	}
}

func TestDefault_NonBreakingSpaces(t *testing.T) {
	lex := MustDefault()

	assert.True(t, lex.Facts.TimeRelationship.Match(Lower("Через\u00a02\u00a0часа после приема")))

	for _, c := range lex.Completeness.Checks {
		if c.Field == "drug_dose" {
			assert.True(t, c.Match.Match(Lower("Препарат А 500\u00a0мг")))
		}
	}
}

func TestDefault_UnicodeWordClass(t *testing.T) {
	lex := MustDefault()

	var age *FieldCheck
	for i := range lex.Completeness.Checks {
		if lex.Completeness.Checks[i].Field == "patient_age" {
			age = &lex.Completeness.Checks[i]
		}
	}
	require.NotNil(t, age)

	assert.True(t, age.Match.Match("пациентке 30"), "word class must cover cyrillic letters")
	assert.True(t, age.Match.Match("patient 45 years old"))
	assert.False(t, age.Match.Match("развилась тошнота"))
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing version",
			doc:  "events: {vocabulary: [сыпь]}",
		},
		{
			name: "empty vocabulary",
			doc:  "version: x\nevents: {vocabulary: []}",
		},
		{
			name: "wrong category order",
			doc: `version: x
events: {vocabulary: [сыпь]}
seriousness:
  - {category: life_threatening, triggers: [реанимация]}
  - {category: death, triggers: [смерть]}
  - {category: hospitalization, triggers: [госпитализ]}
  - {category: disability, triggers: [инвалид]}
  - {category: congenital_anomaly, triggers: [врожденн]}
  - {category: overdose_intoxication, triggers: [передозировка]}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidLexicon))

			var vErr *domain.ValidationError
			assert.True(t, errors.As(err, &vErr))
		})
	}
}

func TestParse_BadPattern(t *testing.T) {
	doc := `version: x
facts:
  time_relationship:
    patterns: ['(broken']
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidLexicon))
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses embedded lexicon", func(t *testing.T) {
		lex, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, MustDefault().Version, lex.Version)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lexicon.yaml")
		require.NoError(t, os.WriteFile(path, defaultDocument, 0644))

		lex, err := Load(path)
		require.NoError(t, err)
		assert.True(t, lex.IsCritical("outcome"))
		assert.False(t, lex.IsCritical("lab_data"))
		assert.Contains(t, lex.SeriousnessTriggers(domain.DEATH), "скончался")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
