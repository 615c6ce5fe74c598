package domain

import (
	"fmt"
	"strings"
)

// TermEntry maps a localized surface term to a canonical identifier.
type TermEntry struct {
	SurfaceTerm string `json:"surface_term" yaml:"surface_term"`
	CanonicalID string `json:"canonical_id" yaml:"canonical_id"`
}

// TermDictionary is an ordered, read-only surface → canonical mapping.
// Several surface terms may share one canonical id.
type TermDictionary struct {
	entries []TermEntry
}

// NewTermDictionary builds a dictionary; surface terms are stored lower-cased.
func NewTermDictionary(entries []TermEntry) *TermDictionary {
	d := &TermDictionary{entries: make([]TermEntry, 0, len(entries))}
	for _, e := range entries {
		d.entries = append(d.entries, TermEntry{
			SurfaceTerm: strings.ToLower(e.SurfaceTerm),
			CanonicalID: e.CanonicalID,
		})
	}
	return d
}

// Entries returns a copy of the dictionary in insertion order.
func (d *TermDictionary) Entries() []TermEntry {
	if d == nil {
		return nil
	}
	out := make([]TermEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Lookup returns the canonical id of an exact (case-insensitive) surface term.
func (d *TermDictionary) Lookup(surface string) (string, bool) {
	if d == nil {
		return "", false
	}
	surface = strings.ToLower(surface)
	for _, e := range d.entries {
		if e.SurfaceTerm == surface {
			return e.CanonicalID, true
		}
	}
	return "", false
}

// Len returns the number of entries.
func (d *TermDictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// AllowList is a read-only set of canonical ids.
type AllowList struct {
	labels []string
	set    map[string]struct{}
}

// NewAllowList builds an allow-list preserving the given order for display.
func NewAllowList(labels []string) *AllowList {
	a := &AllowList{set: make(map[string]struct{}, len(labels))}
	for _, l := range labels {
		if _, dup := a.set[l]; dup {
			continue
		}
		a.set[l] = struct{}{}
		a.labels = append(a.labels, l)
	}
	return a
}

// Contains reports membership. A nil allow-list contains nothing.
func (a *AllowList) Contains(label string) bool {
	if a == nil {
		return false
	}
	_, ok := a.set[label]
	return ok
}

// Labels returns the labels in load order.
func (a *AllowList) Labels() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.labels))
	copy(out, a.labels)
	return out
}

// EffectInfo describes one expected effect on a drug label.
type EffectInfo struct {
	Name      string     `json:"name" yaml:"name"`
	Type      EffectType `json:"type" yaml:"type"`
	Frequency string     `json:"frequency" yaml:"frequency"`
	Includes  []string   `json:"includes,omitempty" yaml:"includes,omitempty"`
}

// Validate checks the effect entry.
func (e EffectInfo) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("expected effect validation: %w", NewValidationError("name", "effect name is required", e.Name))
	}
	if !e.Type.IsValid() {
		return fmt.Errorf("expected effect %q: %w", e.Name, ErrInvalidEffect)
	}
	if e.Type == SINGLE && len(e.Includes) > 0 {
		return fmt.Errorf("expected effect %q: includes only allowed for %s", e.Name, SYMPTOM_COMPLEX)
	}
	return nil
}

// DrugLabel holds the expected effects of one drug, in label order.
type DrugLabel struct {
	Name            string       `json:"name" yaml:"name"`
	ExpectedEffects []EffectInfo `json:"expected_effects" yaml:"expected_effects"`
}

// DrugEffectRegistry is an ordered, read-only drug → label mapping.
type DrugEffectRegistry struct {
	drugs []DrugLabel
	index map[string]int
}

// NewDrugEffectRegistry validates labels and builds the registry.
func NewDrugEffectRegistry(labels []DrugLabel) (*DrugEffectRegistry, error) {
	r := &DrugEffectRegistry{index: make(map[string]int, len(labels))}
	for _, l := range labels {
		if l.Name == "" {
			return nil, fmt.Errorf("drug registry: %w", NewValidationError("name", "drug name is required", l.Name))
		}
		if _, dup := r.index[l.Name]; dup {
			return nil, fmt.Errorf("drug registry: duplicate drug %q", l.Name)
		}
		for _, e := range l.ExpectedEffects {
			if err := e.Validate(); err != nil {
				return nil, fmt.Errorf("drug %q: %w", l.Name, err)
			}
		}
		r.index[l.Name] = len(r.drugs)
		r.drugs = append(r.drugs, l)
	}
	return r, nil
}

// DrugNames returns drug names in registry order.
func (r *DrugEffectRegistry) DrugNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.drugs))
	for _, d := range r.drugs {
		names = append(names, d.Name)
	}
	return names
}

// Label returns the label of a drug by exact name.
func (r *DrugEffectRegistry) Label(name string) (DrugLabel, bool) {
	if r == nil {
		return DrugLabel{}, false
	}
	i, ok := r.index[name]
	if !ok {
		return DrugLabel{}, false
	}
	return r.drugs[i], true
}

// Len returns the number of drugs.
func (r *DrugEffectRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.drugs)
}

// KnowledgeBase bundles the read-only lookup data the classifiers need.
type KnowledgeBase struct {
	Registry    *DrugEffectRegistry
	IMEList     *AllowList
	Terms       *TermDictionary
	DefaultDrug string
}
