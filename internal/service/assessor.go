package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pv-case-assessor/internal/domain"
	"github.com/pv-case-assessor/internal/lexicon"
)

// CaseAssessor runs the full assessment pipeline over case narratives.
// It holds only read-only knowledge and is safe to share.
type CaseAssessor struct {
	logger       *logrus.Logger
	events       *EventExtractor
	seriousness  *SeriousnessClassifier
	ime          *IMEClassifier
	expectedness *ExpectednessClassifier
	causality    *CausalityClassifier
	completeness *CompletenessScorer
}

// NewCaseAssessor wires the classifiers over a knowledge base and lexicon.
// A nil knowledge base behaves as an empty one.
func NewCaseAssessor(logger *logrus.Logger, kb *domain.KnowledgeBase, lex *lexicon.Lexicon) *CaseAssessor {
	if kb == nil {
		kb = &domain.KnowledgeBase{}
	}

	return &CaseAssessor{
		logger:       logger,
		events:       NewEventExtractor(lex),
		seriousness:  NewSeriousnessClassifier(lex),
		ime:          NewIMEClassifier(kb.Terms, kb.IMEList),
		expectedness: NewExpectednessClassifier(kb.Registry, kb.DefaultDrug),
		causality:    NewCausalityClassifier(logger, NewFactExtractor(lex)),
		completeness: NewCompletenessScorer(lex),
	}
}

// Assess extracts the events of a narrative and assesses each of them.
// Seriousness and completeness are computed once and shared by every record.
func (a *CaseAssessor) Assess(narrative string) *domain.CaseAssessment {
	startTime := time.Now()

	a.logger.WithField("narrative_length", len(narrative)).Debug("Starting case assessment")

	events := a.events.Extract(narrative)
	seriousness := a.seriousness.Classify(narrative)
	completeness := a.completeness.Score(narrative, events[0])

	assessments := make([]domain.EventAssessment, 0, len(events))
	for _, event := range events {
		assessments = append(assessments, a.assessEvent(narrative, event, seriousness, completeness))
	}

	a.logger.WithFields(logrus.Fields{
		"events":             len(events),
		"is_serious":         seriousness.IsSerious,
		"completeness_score": completeness.Score,
		"processing_time":    time.Since(startTime),
	}).Info("Case assessment completed")

	return &domain.CaseAssessment{
		Events:      events,
		Assessments: assessments,
	}
}

// AssessEvent assesses one caller-chosen event phrase against a narrative,
// using that phrase as the primary event for completeness.
func (a *CaseAssessor) AssessEvent(narrative, event string) domain.EventAssessment {
	a.logger.WithField("event", event).Debug("Assessing explicit event")

	return a.assessEvent(narrative, event,
		a.seriousness.Classify(narrative),
		a.completeness.Score(narrative, event))
}

func (a *CaseAssessor) assessEvent(narrative, event string, seriousness domain.SeriousnessResult, completeness domain.CompletenessResult) domain.EventAssessment {
	causality := a.causality.Classify(narrative, event)

	a.logger.WithFields(logrus.Fields(causality.Grade.LogFields())).WithField("event", event).Debug("Graded causality")

	return domain.EventAssessment{
		Event:        event,
		Seriousness:  seriousness,
		IME:          a.ime.Classify(event),
		Expectedness: a.expectedness.Classify(narrative, event),
		Causality:    causality,
		Completeness: completeness,
	}
}

// Events exposes event extraction on its own.
func (a *CaseAssessor) Events(narrative string) []string {
	return a.events.Extract(narrative)
}

// AvailableDrugs lists the drugs known to the expectedness registry.
func (a *CaseAssessor) AvailableDrugs() []string {
	return a.expectedness.AvailableDrugs()
}

// Rules returns the causality decision table.
func (a *CaseAssessor) Rules() []CausalityRule {
	return a.causality.Rules()
}
