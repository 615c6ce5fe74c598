package service

import (
	"strings"

	"github.com/pv-case-assessor/internal/domain"
	"github.com/pv-case-assessor/internal/lexicon"
)

// SeriousnessClassifier flags regulatory seriousness criteria in a whole
// case narrative.
type SeriousnessClassifier struct {
	tables []lexicon.SeriousnessTable
}

// NewSeriousnessClassifier creates a classifier over the lexicon's trigger tables.
func NewSeriousnessClassifier(lex *lexicon.Lexicon) *SeriousnessClassifier {
	return &SeriousnessClassifier{tables: lex.Seriousness}
}

// Classify flags each category at most once, at its first matching trigger.
// Categories are reported in declaration order.
func (c *SeriousnessClassifier) Classify(text string) domain.SeriousnessResult {
	lowered := lexicon.Lower(text)

	categories := make([]domain.SeriousnessCategory, 0, len(c.tables))
	for _, table := range c.tables {
		for _, trigger := range table.Triggers {
			if strings.Contains(lowered, trigger) {
				categories = append(categories, table.Category)
				break
			}
		}
	}

	return domain.SeriousnessResult{
		IsSerious:  len(categories) > 0,
		Categories: categories,
	}
}
