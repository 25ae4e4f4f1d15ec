package relevance

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"BulletinTimeline/internal/classify"
)

//go:embed policy.yaml
var defaultPolicyYAML []byte

// DefaultCutoff separates background curation from main-event filtering.
const DefaultCutoff = "2021-02"

// PolicySpec is the on-disk inclusion/exclusion catalog.
type PolicySpec struct {
	CriticalTags     []string               `yaml:"criticalTags"`
	PreEventKeywords []classify.PatternSpec `yaml:"preEventKeywords"`
	CrisisTags       []string               `yaml:"crisisTags"`
	Irrelevant       []classify.PatternSpec `yaml:"irrelevant"`
	CrisisKeywords   []classify.PatternSpec `yaml:"crisisKeywords"`
	AlwaysKeepTags   []string               `yaml:"alwaysKeepTags"`
}

// Policy is the compiled relevance catalog plus the cutoff month.
type Policy struct {
	Cutoff           string
	CriticalTags     []string
	PreEventKeywords []classify.Pattern
	CrisisTags       []string
	Irrelevant       []classify.Pattern
	CrisisKeywords   []classify.Pattern
	AlwaysKeepTags   []string
}

// ParsePolicy decodes and compiles a YAML policy.
func ParsePolicy(raw []byte, cutoff string) (Policy, error) {
	var spec PolicySpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return Policy{}, fmt.Errorf("parse policy: %w", err)
	}
	return spec.Compile(cutoff)
}

// LoadPolicy reads a policy file, replacing the built-in catalog.
func LoadPolicy(path, cutoff string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy %s: %w", path, err)
	}
	return ParsePolicy(raw, cutoff)
}

// DefaultPolicy returns the built-in catalog with the given cutoff, or
// DefaultCutoff when cutoff is empty.
func DefaultPolicy(cutoff string) Policy {
	p, err := ParsePolicy(defaultPolicyYAML, cutoff)
	if err != nil {
		panic(err)
	}
	return p
}

// Compile compiles every keyword list.
func (s PolicySpec) Compile(cutoff string) (Policy, error) {
	if cutoff == "" {
		cutoff = DefaultCutoff
	}
	preEvent, err := classify.CompileAll(s.PreEventKeywords)
	if err != nil {
		return Policy{}, fmt.Errorf("preEventKeywords: %w", err)
	}
	irrelevant, err := classify.CompileAll(s.Irrelevant)
	if err != nil {
		return Policy{}, fmt.Errorf("irrelevant: %w", err)
	}
	crisis, err := classify.CompileAll(s.CrisisKeywords)
	if err != nil {
		return Policy{}, fmt.Errorf("crisisKeywords: %w", err)
	}
	return Policy{
		Cutoff:           cutoff,
		CriticalTags:     s.CriticalTags,
		PreEventKeywords: preEvent,
		CrisisTags:       s.CrisisTags,
		Irrelevant:       irrelevant,
		CrisisKeywords:   crisis,
		AlwaysKeepTags:   s.AlwaysKeepTags,
	}, nil
}
