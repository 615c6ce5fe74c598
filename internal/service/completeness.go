package service

import (
	"math"

	"github.com/pv-case-assessor/internal/domain"
	"github.com/pv-case-assessor/internal/lexicon"
)

// CompletenessScorer measures how many reportable fields a narrative covers.
type CompletenessScorer struct {
	table *lexicon.CompletenessTable
	lex   *lexicon.Lexicon
}

// NewCompletenessScorer creates a scorer over the lexicon's checklist.
func NewCompletenessScorer(lex *lexicon.Lexicon) *CompletenessScorer {
	return &CompletenessScorer{table: &lex.Completeness, lex: lex}
}

// Score runs every check against text. primaryEvent only selects the more
// urgent outcome question for serious events.
func (s *CompletenessScorer) Score(text, primaryEvent string) domain.CompletenessResult {
	lowered := lexicon.Lower(text)
	seriousEvent := s.table.SeriousEvents.Match(lexicon.Lower(primaryEvent))

	result := domain.CompletenessResult{
		MissingFields:   make([]string, 0),
		Questions:       make([]string, 0),
		CriticalMissing: make([]string, 0),
		Checks:          make([]domain.CompletenessCheck, 0, len(s.table.Checks)),
	}

	present := 0
	for i := range s.table.Checks {
		check := &s.table.Checks[i]

		hit := check.Match.Match(lowered)
		if hit && check.Also != nil {
			hit = check.Also.Match(lowered)
		}

		if hit {
			present++
			result.Checks = append(result.Checks, domain.CompletenessCheck{Field: check.Field, Present: true})
			continue
		}

		question := check.Question
		if seriousEvent && check.UrgentQuestion != "" {
			question = check.UrgentQuestion
		}

		result.Checks = append(result.Checks, domain.CompletenessCheck{Field: check.Field, Question: question})
		result.MissingFields = append(result.MissingFields, check.Field)
		result.Questions = append(result.Questions, question)
		if s.lex.IsCritical(check.Field) {
			result.CriticalMissing = append(result.CriticalMissing, check.Field)
		}
	}

	if total := len(s.table.Checks); total > 0 {
		result.Score = math.Round(1000*float64(present)/float64(total)) / 10
	}

	return result
}
