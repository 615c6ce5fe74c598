package service

import (
	"github.com/sirupsen/logrus"

	"github.com/pv-case-assessor/internal/domain"
)

// CausalityRule is one row of the WHO-UMC decision table.
type CausalityRule struct {
	Grade       domain.Grade
	Description string
	Rationale   string
	Applies     func(facts domain.Facts) bool
}

// CausalityClassifier grades the causal relationship between drug and event.
// Rules are evaluated in order and the first applicable rule wins.
type CausalityClassifier struct {
	logger *logrus.Logger
	facts  *FactExtractor
	rules  []CausalityRule
}

// NewCausalityClassifier creates a classifier with the standard rule table.
func NewCausalityClassifier(logger *logrus.Logger, facts *FactExtractor) *CausalityClassifier {
	c := &CausalityClassifier{
		logger: logger,
		facts:  facts,
		rules:  make([]CausalityRule, 0, 6),
	}

	c.initializeRules()

	c.logger.WithField("rule_count", len(c.rules)).Debug("Initialized causality rule table")

	return c
}

// initializeRules sets up the decision table in priority order
func (c *CausalityClassifier) initializeRules() {
	c.addRule(domain.CERTAIN,
		"Temporal relationship, positive dechallenge and rechallenge, no alternative cause",
		"Clear temporal relationship, positive dechallenge and positive rechallenge. Alternative causes excluded.",
		func(f domain.Facts) bool {
			return f.TimeRelationship == domain.PRESENT &&
				f.Rechallenge == domain.PRESENT &&
				f.Dechallenge == domain.POSITIVE &&
				f.AlternativeCauses == domain.ABSENT
		})

	c.addRule(domain.PROBABLE,
		"Temporal relationship and positive dechallenge, no alternative cause",
		"Temporal relationship present with positive dechallenge. Alternative causes unlikely.",
		func(f domain.Facts) bool {
			return f.TimeRelationship == domain.PRESENT &&
				f.Dechallenge == domain.POSITIVE &&
				f.AlternativeCauses == domain.ABSENT
		})

	c.addRule(domain.POSSIBLE,
		"Temporal relationship, no alternative cause",
		"Temporal relationship present, but dechallenge information is insufficient.",
		func(f domain.Facts) bool {
			return f.TimeRelationship == domain.PRESENT &&
				f.AlternativeCauses == domain.ABSENT
		})

	c.addRule(domain.UNLIKELY,
		"No temporal relationship or an alternative cause is present",
		"No clear temporal relationship, or alternative causes are present.",
		func(f domain.Facts) bool {
			return f.TimeRelationship == domain.ABSENT ||
				f.AlternativeCauses == domain.PRESENT
		})

	// Rules 1-4 cover every fact bundle the extractor can produce, so the two
	// rows below only fire for hand-built facts outside the extractor's range.
	c.addRule(domain.CONDITIONAL,
		"Drug not mentioned",
		"Insufficient data to assess the causal relationship.",
		func(f domain.Facts) bool {
			return f.DrugMentioned == domain.ABSENT
		})

	c.addRule(domain.UNCLASSIFIABLE,
		"Fallback",
		"Information is contradictory or insufficient for classification.",
		func(domain.Facts) bool { return true })
}

// addRule is a helper to append a rule to the table
func (c *CausalityClassifier) addRule(grade domain.Grade, description, rationale string, applies func(domain.Facts) bool) {
	c.rules = append(c.rules, CausalityRule{
		Grade:       grade,
		Description: description,
		Rationale:   rationale,
		Applies:     applies,
	})
}

// Rules returns a copy of the decision table in evaluation order.
func (c *CausalityClassifier) Rules() []CausalityRule {
	out := make([]CausalityRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify extracts facts for (text, event) and grades them.
func (c *CausalityClassifier) Classify(text, event string) domain.CausalityResult {
	return c.GradeFacts(c.facts.Extract(text, event))
}

// GradeFacts applies the decision table to an already extracted fact bundle.
func (c *CausalityClassifier) GradeFacts(facts domain.Facts) domain.CausalityResult {
	for _, rule := range c.rules {
		if rule.Applies(facts) {
			return domain.CausalityResult{
				Grade:     rule.Grade,
				Rationale: rule.Rationale,
				Facts:     facts,
			}
		}
	}

	// Unreachable while the table ends with the fallback row.
	return domain.CausalityResult{
		Grade:     domain.UNCLASSIFIABLE,
		Rationale: c.Rationale(domain.UNCLASSIFIABLE),
		Facts:     facts,
	}
}

// Rationale returns the canned rationale sentence of a grade.
func (c *CausalityClassifier) Rationale(grade domain.Grade) string {
	for _, rule := range c.rules {
		if rule.Grade == grade {
			return rule.Rationale
		}
	}
	return ""
}
