package service

import (
	"strings"

	"github.com/pv-case-assessor/internal/domain"
	"github.com/pv-case-assessor/internal/lexicon"
)

// EventExtractor finds adverse-event phrases in a narrative.
type EventExtractor struct {
	vocabulary []string
}

// NewEventExtractor creates an extractor over the lexicon's event vocabulary.
func NewEventExtractor(lex *lexicon.Lexicon) *EventExtractor {
	return &EventExtractor{vocabulary: lex.Events.Vocabulary}
}

// Extract returns every vocabulary phrase contained in text, in vocabulary
// order. Overlapping phrases are reported independently. When nothing
// matches the result is the single sentinel domain.UnknownEvent.
func (e *EventExtractor) Extract(text string) []string {
	lowered := lexicon.Lower(text)

	var events []string
	for _, term := range e.vocabulary {
		if strings.Contains(lowered, term) {
			events = append(events, term)
		}
	}

	if len(events) == 0 {
		return []string{domain.UnknownEvent}
	}
	return events
}
