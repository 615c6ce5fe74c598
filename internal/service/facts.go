package service

import (
	"github.com/pv-case-assessor/internal/domain"
	"github.com/pv-case-assessor/internal/lexicon"
)

// FactExtractor derives the categorical causality facts from a narrative.
type FactExtractor struct {
	tables *lexicon.FactTables
}

// NewFactExtractor creates an extractor over the lexicon's fact triggers.
func NewFactExtractor(lex *lexicon.Lexicon) *FactExtractor {
	return &FactExtractor{tables: &lex.Facts}
}

// Extract builds a fresh fact bundle for one (text, event) pair.
// known_effect is judged on the event phrase, every other fact on the text.
func (f *FactExtractor) Extract(text, event string) domain.Facts {
	lowered := lexicon.Lower(text)
	loweredEvent := lexicon.Lower(event)

	return domain.Facts{
		TimeRelationship:  presence(f.tables.TimeRelationship.Match(lowered)),
		Dechallenge:       f.dechallenge(lowered),
		Rechallenge:       presence(f.tables.Rechallenge.Match(lowered)),
		AlternativeCauses: presence(f.tables.AlternativeCauses.Match(lowered)),
		KnownEffect:       f.knownEffect(loweredEvent),
		DrugMentioned:     presence(f.tables.DrugMention.Match(lowered)),
	}
}

// dechallenge: withdrawal with improvement is positive, withdrawal alone is
// negative, anything else carries no data.
func (f *FactExtractor) dechallenge(lowered string) domain.FactValue {
	if !f.tables.Withdrawal.Match(lowered) {
		return domain.ABSENT
	}
	if f.tables.Improvement.Match(lowered) {
		return domain.POSITIVE
	}
	return domain.NEGATIVE
}

func (f *FactExtractor) knownEffect(loweredEvent string) domain.FactValue {
	if f.tables.KnownEffects.Match(loweredEvent) {
		return domain.KNOWN
	}
	return domain.UNKNOWN
}

func presence(hit bool) domain.FactValue {
	if hit {
		return domain.PRESENT
	}
	return domain.ABSENT
}
