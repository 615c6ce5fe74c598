// Package knowledge loads the read-only knowledge base used by the
// classifiers: the drug label effect registry, the Important Medical Event
// allow-list and the surface-term dictionary.
//
// Documents are YAML. JSON documents are accepted as well since JSON is
// valid YAML; mapping order is preserved in both cases because it defines
// the drug lookup order and the IME reporting order.
package knowledge

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pv-case-assessor/internal/domain"
)

//go:embed default_kb.yaml
var defaultDocument []byte

// FallbackDrug is used when a document does not name a default drug.
const FallbackDrug = "Препарат А"

// document mirrors the on-disk layout. Mappings are kept as nodes so that
// key order survives decoding.
type document struct {
	DefaultDrug string    `yaml:"default_drug"`
	Drugs       yaml.Node `yaml:"drugs"`
	IMEs        []string  `yaml:"important_medical_events"`
	Terms       yaml.Node `yaml:"term_dictionary"`
}

type drugEntry struct {
	ExpectedEffects yaml.Node `yaml:"expected_effects"`
}

type effectEntry struct {
	Type      domain.EffectType `yaml:"type"`
	Frequency string            `yaml:"frequency"`
	Includes  []string          `yaml:"includes"`
}

// Default returns the embedded knowledge base.
func Default() (*domain.KnowledgeBase, error) {
	return Parse(defaultDocument)
}

// Load reads a knowledge base from path. An empty path selects the embedded
// knowledge base.
func Load(path string) (*domain.KnowledgeBase, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}
	return Parse(data)
}

// Parse decodes a knowledge-base document.
func Parse(data []byte) (*domain.KnowledgeBase, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKnowledgeBase, err)
	}

	labels, err := decodeDrugs(&doc.Drugs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrKnowledgeBase, err)
	}
	registry, err := domain.NewDrugEffectRegistry(labels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrKnowledgeBase, err)
	}

	terms, err := decodeTerms(&doc.Terms)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrKnowledgeBase, err)
	}

	defaultDrug := doc.DefaultDrug
	if defaultDrug == "" {
		defaultDrug = FallbackDrug
	}

	return &domain.KnowledgeBase{
		Registry:    registry,
		IMEList:     domain.NewAllowList(doc.IMEs),
		Terms:       domain.NewTermDictionary(terms),
		DefaultDrug: defaultDrug,
	}, nil
}

func decodeDrugs(node *yaml.Node) ([]domain.DrugLabel, error) {
	var labels []domain.DrugLabel
	err := eachPair(node, "drugs", func(name string, value *yaml.Node) error {
		var entry drugEntry
		if err := value.Decode(&entry); err != nil {
			return fmt.Errorf("drug %q: %w", name, err)
		}
		label := domain.DrugLabel{Name: name}
		err := eachPair(&entry.ExpectedEffects, "expected_effects", func(effect string, v *yaml.Node) error {
			var e effectEntry
			if err := v.Decode(&e); err != nil {
				return fmt.Errorf("drug %q effect %q: %w", name, effect, err)
			}
			label.ExpectedEffects = append(label.ExpectedEffects, domain.EffectInfo{
				Name:      effect,
				Type:      e.Type,
				Frequency: e.Frequency,
				Includes:  e.Includes,
			})
			return nil
		})
		if err != nil {
			return err
		}
		labels = append(labels, label)
		return nil
	})
	return labels, err
}

func decodeTerms(node *yaml.Node) ([]domain.TermEntry, error) {
	var entries []domain.TermEntry
	err := eachPair(node, "term_dictionary", func(surface string, value *yaml.Node) error {
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("term %q: canonical id must be a string", surface)
		}
		entries = append(entries, domain.TermEntry{SurfaceTerm: surface, CanonicalID: value.Value})
		return nil
	})
	return entries, err
}

// eachPair walks a mapping node in document order. A missing node is an
// empty mapping.
func eachPair(node *yaml.Node, field string, fn func(key string, value *yaml.Node) error) error {
	if node == nil || node.Kind == 0 {
		return nil
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return domain.NewValidationError(field, "expected a mapping", node.Value)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
