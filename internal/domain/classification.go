package domain

// Facts is the bundle of categorical facts extracted from a narrative for a
// single (text, event) pair. It is a value type and is never shared.
type Facts struct {
	TimeRelationship  FactValue `json:"time_relationship"`
	Dechallenge       FactValue `json:"dechallenge"`
	Rechallenge       FactValue `json:"rechallenge"`
	AlternativeCauses FactValue `json:"alternative_causes"`
	KnownEffect       FactValue `json:"known_effect"`
	DrugMentioned     FactValue `json:"drug_mentioned"`
}

// SeriousnessResult is the regulatory seriousness verdict for a whole case.
type SeriousnessResult struct {
	IsSerious  bool                  `json:"is_serious"`
	Categories []SeriousnessCategory `json:"categories"`
}

// HasCategory reports whether c was flagged.
func (r SeriousnessResult) HasCategory(c SeriousnessCategory) bool {
	for _, flagged := range r.Categories {
		if flagged == c {
			return true
		}
	}
	return false
}

// IMEMatch pairs a matched surface term with its canonical IME label.
type IMEMatch struct {
	SurfaceTerm    string `json:"surface_term"`
	CanonicalLabel string `json:"canonical_label"`
}

// IMEResult reports whether the text mentions an Important Medical Event.
type IMEResult struct {
	IsSignificant bool       `json:"is_significant"`
	Matches       []IMEMatch `json:"matches"`
}

// ExpectednessResult reports whether an event is listed for the implicated drug.
type ExpectednessResult struct {
	IsExpected    bool       `json:"is_expected"`
	Drug          string     `json:"drug"`
	Reason        string     `json:"reason"`
	EffectType    EffectType `json:"effect_type,omitempty"`
	Frequency     string     `json:"frequency,omitempty"`
	ParentComplex string     `json:"parent_complex,omitempty"`
}

// CausalityResult is the outcome of the WHO-UMC decision table.
type CausalityResult struct {
	Grade     Grade  `json:"grade"`
	Rationale string `json:"rationale"`
	Facts     Facts  `json:"facts"`
}

// CompletenessCheck is the outcome of one reportable-field presence check.
// Question is empty when the field is present.
type CompletenessCheck struct {
	Field    string `json:"field"`
	Present  bool   `json:"present"`
	Question string `json:"question,omitempty"`
}

// CompletenessResult summarises how complete a narrative is.
type CompletenessResult struct {
	Score           float64             `json:"score"`
	MissingFields   []string            `json:"missing_fields"`
	Questions       []string            `json:"questions"`
	CriticalMissing []string            `json:"critical_missing"`
	Checks          []CompletenessCheck `json:"checks"`
}

// HasCriticalGaps reports whether any critical field is missing.
func (r CompletenessResult) HasCriticalGaps() bool {
	return len(r.CriticalMissing) > 0
}

// EventAssessment is the assessment record for one (case, event) pair.
// Seriousness and Completeness are case-level and identical across the
// events of one case.
type EventAssessment struct {
	Event        string             `json:"event"`
	Seriousness  SeriousnessResult  `json:"seriousness"`
	IME          IMEResult          `json:"ime"`
	Expectedness ExpectednessResult `json:"expectedness"`
	Causality    CausalityResult    `json:"causality"`
	Completeness CompletenessResult `json:"completeness"`
}

// CaseAssessment holds the assessment records of every event extracted from
// one narrative, in extraction order.
type CaseAssessment struct {
	Events      []string          `json:"events"`
	Assessments []EventAssessment `json:"assessments"`
}
