package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pv-case-assessor/internal/domain"
)

func TestSeriousnessClassifier_Classify(t *testing.T) {
	classifier := NewSeriousnessClassifier(defaultLexicon(t))

	tests := []struct {
		name     string
		text     string
		expected []domain.SeriousnessCategory
	}{
		{"empty text", "", []domain.SeriousnessCategory{}},
		{"non serious", "Развилась тошнота", []domain.SeriousnessCategory{}},
		{"death", "Пациент умер", []domain.SeriousnessCategory{domain.DEATH}},
		{
			name:     "declaration order",
			text:     "Отмечена передозировка. Пациент госпитализирован, позже скончался.",
			expected: []domain.SeriousnessCategory{domain.DEATH, domain.HOSPITALIZATION, domain.OVERDOSE_INTOXICATION},
		},
		{"english", "The patient was admitted to hospital", []domain.SeriousnessCategory{domain.HOSPITALIZATION}},
		// Substring matching is part of the contract, false positives included.
		{"substring false positive", "Врач говорит, что все хорошо", []domain.SeriousnessCategory{domain.LIFE_THREATENING}},
		{"shock alone is not a trigger", "Пациент съел шоколад, появилась сыпь", []domain.SeriousnessCategory{}},
		{"anaphylactic shock without outcome", "Развился анафилактический шок", []domain.SeriousnessCategory{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.Classify(tt.text)
			assert.Equal(t, tt.expected, result.Categories)
			assert.Equal(t, len(tt.expected) > 0, result.IsSerious)
		})
	}
}

func TestSeriousnessClassifier_Monotonic(t *testing.T) {
	classifier := NewSeriousnessClassifier(defaultLexicon(t))

	base := classifier.Classify("Пациент умер.")
	assert.Equal(t, []domain.SeriousnessCategory{domain.DEATH}, base.Categories)

	sameCategory := classifier.Classify("Пациент умер. Ранее скончался его брат.")
	assert.Equal(t, base.Categories, sameCategory.Categories, "another trigger of a flagged category changes nothing")

	grown := classifier.Classify("Пациент умер. Ранее был госпитализирован.")
	assert.Equal(t, []domain.SeriousnessCategory{domain.DEATH, domain.HOSPITALIZATION}, grown.Categories)
	assert.True(t, grown.HasCategory(domain.HOSPITALIZATION))
}

func TestSeriousnessClassifier_Idempotent(t *testing.T) {
	classifier := NewSeriousnessClassifier(defaultLexicon(t))
	text := "Анафилактический шок, пациент госпитализирован"

	assert.Equal(t, classifier.Classify(text), classifier.Classify(text))
}
