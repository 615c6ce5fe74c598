// Package lexicon holds the canonical term tables used by the assessment
// pipeline: the adverse-event vocabulary, the seriousness triggers, the
// causality fact triggers and the completeness checklist.
//
// All tables live in one versioned YAML document. The default document is
// embedded in the binary; an alternative can be loaded from disk.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/pv-case-assessor/internal/domain"
)

//go:embed lexicon.yaml
var defaultDocument []byte

// Matcher matches lower-cased text against substring terms and RE2 patterns.
// A match on any term or any pattern is a hit.
type Matcher struct {
	Terms    []string `yaml:"terms,omitempty" json:"terms,omitempty"`
	Patterns []string `yaml:"patterns,omitempty" json:"patterns,omitempty"`

	compiled []*regexp.Regexp
}

// NewMatcher builds and compiles a matcher. The arguments are not modified.
func NewMatcher(terms, patterns []string) (*Matcher, error) {
	m := &Matcher{
		Terms:    append([]string(nil), terms...),
		Patterns: append([]string(nil), patterns...),
	}
	if err := m.compile(); err != nil {
		return nil, err
	}
	return m, nil
}

// compile normalizes the terms and compiles the patterns case-insensitively,
// so an upper-case literal in a pattern still matches lowered text.
func (m *Matcher) compile() error {
	terms := make([]string, len(m.Terms))
	for i, term := range m.Terms {
		terms[i] = Lower(term)
	}
	m.Terms = terms

	m.compiled = make([]*regexp.Regexp, 0, len(m.Patterns))
	for _, p := range m.Patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return fmt.Errorf("pattern %q: %w", p, err)
		}
		m.compiled = append(m.compiled, re)
	}
	return nil
}

// Lower prepares text for matching: non-ASCII spaces such as U+00A0 become
// ASCII spaces, which \s matches, and letters are lower-cased.
func Lower(text string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII && unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text))
}

// Match reports whether the already lower-cased text hits the matcher.
func (m *Matcher) Match(lowered string) bool {
	if m == nil {
		return false
	}
	for _, term := range m.Terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	for _, re := range m.compiled {
		if re.MatchString(lowered) {
			return true
		}
	}
	return false
}

// Empty reports whether the matcher has no terms and no patterns.
func (m *Matcher) Empty() bool {
	return m == nil || (len(m.Terms) == 0 && len(m.Patterns) == 0)
}

// EventTable is the ordered adverse-event vocabulary.
type EventTable struct {
	Vocabulary []string `yaml:"vocabulary"`
}

// SeriousnessTable holds the ordered triggers of one seriousness category.
type SeriousnessTable struct {
	Category domain.SeriousnessCategory `yaml:"category"`
	Triggers []string                   `yaml:"triggers"`
}

// FactTables holds the triggers of the causality facts.
type FactTables struct {
	TimeRelationship  Matcher `yaml:"time_relationship"`
	Withdrawal        Matcher `yaml:"withdrawal"`
	Improvement       Matcher `yaml:"improvement"`
	Rechallenge       Matcher `yaml:"rechallenge"`
	AlternativeCauses Matcher `yaml:"alternative_causes"`
	KnownEffects      Matcher `yaml:"known_effects"`
	DrugMention       Matcher `yaml:"drug_mention"`
}

// FieldCheck is one reportable-field presence check. When Also is set the
// field is present only if both Match and Also hit.
type FieldCheck struct {
	Field          string   `yaml:"field"`
	Match          Matcher  `yaml:"match"`
	Also           *Matcher `yaml:"also,omitempty"`
	Question       string   `yaml:"question"`
	UrgentQuestion string   `yaml:"urgent_question,omitempty"`
}

// CompletenessTable is the ordered reportable-field checklist.
type CompletenessTable struct {
	Checks   []FieldCheck `yaml:"checks"`
	Critical []string     `yaml:"critical"`
	// SeriousEvents selects UrgentQuestion when matched against the primary event.
	SeriousEvents Matcher `yaml:"serious_events"`
}

// Lexicon is the complete set of term tables.
type Lexicon struct {
	Version      string             `yaml:"version"`
	Events       EventTable         `yaml:"events"`
	Seriousness  []SeriousnessTable `yaml:"seriousness"`
	Facts        FactTables         `yaml:"facts"`
	Completeness CompletenessTable  `yaml:"completeness"`
}

// Default parses the embedded lexicon.
func Default() (*Lexicon, error) {
	return Parse(defaultDocument)
}

// MustDefault parses the embedded lexicon and panics on failure.
func MustDefault() *Lexicon {
	lex, err := Default()
	if err != nil {
		panic(err)
	}
	return lex
}

// Load reads a lexicon document from path. An empty path selects the embedded lexicon.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, compiles and validates a lexicon document.
func Parse(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	if err := lex.compile(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidLexicon, err)
	}
	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return &lex, nil
}

func (l *Lexicon) compile() error {
	for i := range l.Events.Vocabulary {
		l.Events.Vocabulary[i] = Lower(l.Events.Vocabulary[i])
	}
	for i := range l.Seriousness {
		for j := range l.Seriousness[i].Triggers {
			l.Seriousness[i].Triggers[j] = Lower(l.Seriousness[i].Triggers[j])
		}
	}

	facts := map[string]*Matcher{
		"time_relationship":  &l.Facts.TimeRelationship,
		"withdrawal":         &l.Facts.Withdrawal,
		"improvement":        &l.Facts.Improvement,
		"rechallenge":        &l.Facts.Rechallenge,
		"alternative_causes": &l.Facts.AlternativeCauses,
		"known_effects":      &l.Facts.KnownEffects,
		"drug_mention":       &l.Facts.DrugMention,
	}
	for name, m := range facts {
		if err := m.compile(); err != nil {
			return fmt.Errorf("facts.%s: %w", name, err)
		}
	}

	for i := range l.Completeness.Checks {
		c := &l.Completeness.Checks[i]
		if err := c.Match.compile(); err != nil {
			return fmt.Errorf("completeness.%s: %w", c.Field, err)
		}
		if c.Also != nil {
			if err := c.Also.compile(); err != nil {
				return fmt.Errorf("completeness.%s.also: %w", c.Field, err)
			}
		}
	}
	if err := l.Completeness.SeriousEvents.compile(); err != nil {
		return fmt.Errorf("completeness.serious_events: %w", err)
	}
	return nil
}

// Validate checks the structural invariants of the tables.
func (l *Lexicon) Validate() error {
	if l.Version == "" {
		return invalid("version", "lexicon version is required", l.Version)
	}
	if len(l.Events.Vocabulary) == 0 {
		return invalid("events.vocabulary", "event vocabulary must not be empty", nil)
	}

	if len(l.Seriousness) != len(domain.SeriousnessCategories) {
		return invalid("seriousness", fmt.Sprintf("expected %d categories", len(domain.SeriousnessCategories)), len(l.Seriousness))
	}
	for i, table := range l.Seriousness {
		if table.Category != domain.SeriousnessCategories[i] {
			return invalid("seriousness", "categories must be declared once each in canonical order", table.Category)
		}
		if len(table.Triggers) == 0 {
			return invalid("seriousness."+table.Category.String(), "category has no triggers", nil)
		}
	}

	required := map[string]*Matcher{
		"facts.time_relationship":  &l.Facts.TimeRelationship,
		"facts.withdrawal":         &l.Facts.Withdrawal,
		"facts.improvement":        &l.Facts.Improvement,
		"facts.rechallenge":        &l.Facts.Rechallenge,
		"facts.alternative_causes": &l.Facts.AlternativeCauses,
		"facts.known_effects":      &l.Facts.KnownEffects,
		"facts.drug_mention":       &l.Facts.DrugMention,
	}
	for name, m := range required {
		if m.Empty() {
			return invalid(name, "fact table must not be empty", nil)
		}
	}

	if len(l.Completeness.Checks) == 0 {
		return invalid("completeness.checks", "checklist must not be empty", nil)
	}
	seen := make(map[string]bool, len(l.Completeness.Checks))
	for _, c := range l.Completeness.Checks {
		if c.Field == "" {
			return invalid("completeness.checks", "field name is required", nil)
		}
		if seen[c.Field] {
			return invalid("completeness.checks", "duplicate field", c.Field)
		}
		seen[c.Field] = true
		if c.Match.Empty() {
			return invalid("completeness."+c.Field, "check has no terms or patterns", nil)
		}
		if c.Question == "" {
			return invalid("completeness."+c.Field, "question is required", nil)
		}
	}
	for _, f := range l.Completeness.Critical {
		if !seen[f] {
			return invalid("completeness.critical", "critical field is not a declared check", f)
		}
	}
	return nil
}

// SeriousnessTriggers returns the triggers of one category.
func (l *Lexicon) SeriousnessTriggers(c domain.SeriousnessCategory) []string {
	for _, table := range l.Seriousness {
		if table.Category == c {
			return table.Triggers
		}
	}
	return nil
}

// IsCritical reports whether a completeness field is in the critical subset.
func (l *Lexicon) IsCritical(field string) bool {
	for _, f := range l.Completeness.Critical {
		if f == field {
			return true
		}
	}
	return false
}

func invalid(field, message string, value interface{}) error {
	return fmt.Errorf("%w: %w", domain.ErrInvalidLexicon, domain.NewValidationError(field, message, value))
}
