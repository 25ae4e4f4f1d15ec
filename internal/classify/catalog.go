package classify

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// RuleSpec is one labelled rule as written in the catalog.
type RuleSpec struct {
	Label    string        `yaml:"label"`
	Patterns []PatternSpec `yaml:"patterns"`
}

// CatalogSpec is the on-disk rule catalog.
type CatalogSpec struct {
	Tags       []RuleSpec    `yaml:"tags"`
	People     []RuleSpec    `yaml:"people"`
	Highlights []PatternSpec `yaml:"highlights"`
}

// Rule fires when any of its patterns matches.
type Rule struct {
	Label    string
	Patterns []Pattern
}

// Fires reports whether the rule matches text.
func (r Rule) Fires(text string) bool {
	return MatchAny(r.Patterns, text)
}

// Catalog is the compiled rule set. Order is preserved from the source.
type Catalog struct {
	Tags       []Rule
	People     []Rule
	Highlights []Pattern
}

// TagLabels lists the tag labels in catalog order.
func (c Catalog) TagLabels() []string {
	return labels(c.Tags)
}

// PeopleLabels lists the entity labels in catalog order.
func (c Catalog) PeopleLabels() []string {
	return labels(c.People)
}

func labels(rules []Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Label)
	}
	return out
}

// ParseCatalog decodes and compiles a YAML catalog.
func ParseCatalog(raw []byte) (Catalog, error) {
	var spec CatalogSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	return spec.Compile()
}

// LoadCatalog reads a catalog file, replacing the built-in rules.
func LoadCatalog(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(raw)
}

// DefaultCatalog returns the built-in rules.
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Compile compiles every rule, rejecting duplicate labels.
func (s CatalogSpec) Compile() (Catalog, error) {
	tags, err := compileRules(s.Tags)
	if err != nil {
		return Catalog{}, fmt.Errorf("tags: %w", err)
	}
	people, err := compileRules(s.People)
	if err != nil {
		return Catalog{}, fmt.Errorf("people: %w", err)
	}
	highlights, err := CompileAll(s.Highlights)
	if err != nil {
		return Catalog{}, fmt.Errorf("highlights: %w", err)
	}
	return Catalog{Tags: tags, People: people, Highlights: highlights}, nil
}

func compileRules(specs []RuleSpec) ([]Rule, error) {
	seen := map[string]struct{}{}
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		if spec.Label == "" {
			return nil, fmt.Errorf("rule without label")
		}
		if _, dup := seen[spec.Label]; dup {
			return nil, fmt.Errorf("duplicate label %s", spec.Label)
		}
		seen[spec.Label] = struct{}{}
		patterns, err := CompileAll(spec.Patterns)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", spec.Label, err)
		}
		rules = append(rules, Rule{Label: spec.Label, Patterns: patterns})
	}
	return rules, nil
}
