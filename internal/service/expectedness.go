package service

import (
	"fmt"
	"strings"

	"github.com/pv-case-assessor/internal/domain"
	"github.com/pv-case-assessor/internal/lexicon"
)

// Expectedness reasons.
const (
	ReasonDrugNotFound   = "drug not found in registry"
	ReasonDirectMatch    = "direct label match"
	ReasonNotDescribed   = "not described in label"
	reasonComplexPattern = "member of symptom complex %s"
)

// ExpectednessClassifier checks whether an event is listed on the label of
// the drug implicated by the narrative.
type ExpectednessClassifier struct {
	registry    *domain.DrugEffectRegistry
	defaultDrug string
}

// NewExpectednessClassifier creates a classifier. When no registry drug is
// named in the text, events are attributed to defaultDrug.
func NewExpectednessClassifier(registry *domain.DrugEffectRegistry, defaultDrug string) *ExpectednessClassifier {
	return &ExpectednessClassifier{registry: registry, defaultDrug: defaultDrug}
}

// IdentifyDrug returns the first registry drug whose name occurs in text,
// or the default drug.
func (c *ExpectednessClassifier) IdentifyDrug(text string) string {
	lowered := lexicon.Lower(text)
	for _, name := range c.registry.DrugNames() {
		if strings.Contains(lowered, lexicon.Lower(name)) {
			return name
		}
	}
	return c.defaultDrug
}

// AvailableDrugs lists the registry drugs in registry order.
func (c *ExpectednessClassifier) AvailableDrugs() []string {
	return c.registry.DrugNames()
}

// Classify resolves the drug, then looks the event up on its label. A direct
// effect-name match always wins over symptom-complex membership.
func (c *ExpectednessClassifier) Classify(text, event string) domain.ExpectednessResult {
	drug := c.IdentifyDrug(text)

	label, ok := c.registry.Label(drug)
	if !ok {
		return domain.ExpectednessResult{IsExpected: false, Drug: drug, Reason: ReasonDrugNotFound}
	}

	for _, effect := range label.ExpectedEffects {
		if strings.EqualFold(effect.Name, event) {
			return domain.ExpectednessResult{
				IsExpected: true,
				Drug:       drug,
				Reason:     ReasonDirectMatch,
				EffectType: effect.Type,
				Frequency:  effect.Frequency,
			}
		}
	}

	for _, effect := range label.ExpectedEffects {
		if effect.Type != domain.SYMPTOM_COMPLEX {
			continue
		}
		for _, symptom := range effect.Includes {
			if strings.EqualFold(symptom, event) {
				return domain.ExpectednessResult{
					IsExpected:    true,
					Drug:          drug,
					Reason:        fmt.Sprintf(reasonComplexPattern, effect.Name),
					EffectType:    effect.Type,
					Frequency:     effect.Frequency,
					ParentComplex: effect.Name,
				}
			}
		}
	}

	return domain.ExpectednessResult{IsExpected: false, Drug: drug, Reason: ReasonNotDescribed}
}
