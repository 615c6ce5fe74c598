// Package domain contains the core entities of adverse-event case assessment:
// causality grades, seriousness categories, extracted facts and the
// per-event assessment records produced by the pipeline.
//
// Causality grading follows the WHO-UMC system for standardised case causality
// assessment (Certain, Probable, Possible, Unlikely, Conditional, Unclassifiable).
package domain

import (
	"errors"
)

// Grade represents a WHO-UMC causality category.
type Grade string

const (
	CERTAIN        Grade = "Certain"
	PROBABLE       Grade = "Probable"
	POSSIBLE       Grade = "Possible"
	UNLIKELY       Grade = "Unlikely"
	CONDITIONAL    Grade = "Conditional"
	UNCLASSIFIABLE Grade = "Unclassifiable"
)

// SeriousnessCategory represents a regulatory seriousness criterion.
type SeriousnessCategory string

const (
	DEATH                 SeriousnessCategory = "death"
	LIFE_THREATENING      SeriousnessCategory = "life_threatening"
	HOSPITALIZATION       SeriousnessCategory = "hospitalization"
	DISABILITY            SeriousnessCategory = "disability"
	CONGENITAL_ANOMALY    SeriousnessCategory = "congenital_anomaly"
	OVERDOSE_INTOXICATION SeriousnessCategory = "overdose_intoxication"
)

// SeriousnessCategories lists the categories in declaration order.
// Seriousness flags are always reported in this order.
var SeriousnessCategories = []SeriousnessCategory{
	DEATH,
	LIFE_THREATENING,
	HOSPITALIZATION,
	DISABILITY,
	CONGENITAL_ANOMALY,
	OVERDOSE_INTOXICATION,
}

// FactValue is the categorical value of a single extracted fact.
type FactValue string

const (
	PRESENT  FactValue = "present"
	ABSENT   FactValue = "absent"
	POSITIVE FactValue = "positive"
	NEGATIVE FactValue = "negative"
	KNOWN    FactValue = "known"
	UNKNOWN  FactValue = "unknown"
)

// EffectType distinguishes standalone label entries from symptom complexes.
type EffectType string

const (
	SINGLE          EffectType = "single"
	SYMPTOM_COMPLEX EffectType = "symptom_complex"
)

// UnknownEvent is reported by event extraction when no vocabulary term matches.
const UnknownEvent = "unknown_event"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidGrade   = errors.New("invalid causality grade")
	ErrInvalidEffect  = errors.New("invalid expected effect type")
	ErrKnowledgeBase  = errors.New("invalid knowledge base")
	ErrInvalidLexicon = errors.New("invalid lexicon")
)

// IsValid reports whether g is one of the six WHO-UMC categories.
func (g Grade) IsValid() bool {
	switch g {
	case CERTAIN, PROBABLE, POSSIBLE, UNLIKELY, CONDITIONAL, UNCLASSIFIABLE:
		return true
	default:
		return false
	}
}

// String returns the string representation of the grade.
func (g Grade) String() string {
	return string(g)
}

// Rank orders grades from the strongest attribution (1, Certain) to the
// weakest (6, Unclassifiable). Invalid grades rank 0.
func (g Grade) Rank() int {
	switch g {
	case CERTAIN:
		return 1
	case PROBABLE:
		return 2
	case POSSIBLE:
		return 3
	case UNLIKELY:
		return 4
	case CONDITIONAL:
		return 5
	case UNCLASSIFIABLE:
		return 6
	default:
		return 0
	}
}

// SupportsAttribution reports whether the grade attributes the event to the drug
// with at least "Possible" strength.
func (g Grade) SupportsAttribution() bool {
	switch g {
	case CERTAIN, PROBABLE, POSSIBLE:
		return true
	default:
		return false
	}
}

// LogFields returns structured logging fields for audit trails.
func (g Grade) LogFields() map[string]any {
	return map[string]any{
		"causality_grade":      string(g),
		"grade_rank":           g.Rank(),
		"is_valid":             g.IsValid(),
		"supports_attribution": g.SupportsAttribution(),
	}
}

// ParseGrade converts a case-sensitive grade name into a Grade.
func ParseGrade(s string) (Grade, error) {
	g := Grade(s)
	if !g.IsValid() {
		return "", ErrInvalidGrade
	}
	return g, nil
}

// IsValid validates the seriousness category.
func (c SeriousnessCategory) IsValid() bool {
	for _, known := range SeriousnessCategories {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation of the category.
func (c SeriousnessCategory) String() string {
	return string(c)
}

// IsValid validates the effect type.
func (t EffectType) IsValid() bool {
	switch t {
	case SINGLE, SYMPTOM_COMPLEX:
		return true
	default:
		return false
	}
}

// String returns the string representation of the fact value.
func (v FactValue) String() string {
	return string(v)
}
