package classify

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// PatternSpec is the catalog form of a matcher. A bare YAML string is an
// expression matched case-insensitively.
type PatternSpec struct {
	Expr          string `yaml:"expr"`
	CaseSensitive bool   `yaml:"caseSensitive"`
	// NotFollowedBy rejects a match immediately followed by this text.
	NotFollowedBy string `yaml:"notFollowedBy"`
}

// UnmarshalYAML accepts either a scalar expression or a mapping.
func (p *PatternSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Expr = node.Value
		return nil
	}
	type plain PatternSpec
	return node.Decode((*plain)(p))
}

// Pattern is a compiled matcher.
type Pattern struct {
	source        string
	expr          *regexp.Regexp
	notFollowedBy string
}

// Compile builds a matcher from its catalog form.
func (p PatternSpec) Compile() (Pattern, error) {
	src := p.Expr
	if !p.CaseSensitive {
		src = "(?i)" + src
	}
	expr, err := regexp.Compile(src)
	if err != nil {
		return Pattern{}, fmt.Errorf("compile pattern %q: %w", p.Expr, err)
	}
	return Pattern{source: p.Expr, expr: expr, notFollowedBy: p.NotFollowedBy}, nil
}

// MustPattern compiles a case-insensitive expression or panics.
func MustPattern(expr string) Pattern {
	p, err := PatternSpec{Expr: expr}.Compile()
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether the pattern occurs anywhere in text.
func (p Pattern) Match(text string) bool {
	if p.expr == nil {
		return false
	}
	if p.notFollowedBy == "" {
		return p.expr.MatchString(text)
	}
	for _, loc := range p.expr.FindAllStringIndex(text, -1) {
		if !strings.HasPrefix(text[loc[1]:], p.notFollowedBy) {
			return true
		}
	}
	return false
}

// String returns the catalog expression.
func (p Pattern) String() string {
	return p.source
}

// CompileAll compiles a list of specs in order.
func CompileAll(specs []PatternSpec) ([]Pattern, error) {
	out := make([]Pattern, 0, len(specs))
	for _, spec := range specs {
		p, err := spec.Compile()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// MatchAny reports whether any pattern matches text.
func MatchAny(patterns []Pattern, text string) bool {
	for _, p := range patterns {
		if p.Match(text) {
			return true
		}
	}
	return false
}
