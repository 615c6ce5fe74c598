package service

import (
	"strings"

	"github.com/pv-case-assessor/internal/domain"
	"github.com/pv-case-assessor/internal/lexicon"
)

// IMEClassifier reports Important Medical Events mentioned in text.
type IMEClassifier struct {
	terms     *domain.TermDictionary
	allowList *domain.AllowList
}

// NewIMEClassifier creates a classifier. Nil dictionaries behave as empty ones.
func NewIMEClassifier(terms *domain.TermDictionary, allowList *domain.AllowList) *IMEClassifier {
	return &IMEClassifier{terms: terms, allowList: allowList}
}

// Classify returns the dictionary entries found in text whose canonical label
// is on the IME allow-list, in dictionary order. Entries whose label is not
// allowed are dropped.
func (c *IMEClassifier) Classify(text string) domain.IMEResult {
	lowered := lexicon.Lower(text)

	matches := make([]domain.IMEMatch, 0)
	for _, entry := range c.terms.Entries() {
		if !strings.Contains(lowered, entry.SurfaceTerm) {
			continue
		}
		if !c.allowList.Contains(entry.CanonicalID) {
			continue
		}
		matches = append(matches, domain.IMEMatch{
			SurfaceTerm:    entry.SurfaceTerm,
			CanonicalLabel: entry.CanonicalID,
		})
	}

	return domain.IMEResult{
		IsSignificant: len(matches) > 0,
		Matches:       matches,
	}
}
