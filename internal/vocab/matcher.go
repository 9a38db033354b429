// Package vocab provides the domain-vocabulary matcher used by the
// conversation memory store to index technical topics. The default
// vocabulary is a data table of regex classes; tables can also be loaded
// from a YAML file and hot-reloaded.
package vocab

import (
	"fmt"
	"regexp"
	"strings"
)

// Match is one vocabulary hit inside a piece of text.
type Match struct {
	Topic  string  // Normalized (lower-cased) matched phrase
	Class  string  // Vocabulary class the pattern belongs to
	Weight float64 // Class weight, reserved for future ranking
}

// Matcher extracts topic matches from text. Implementations must be safe
// for concurrent use.
type Matcher interface {
	Extract(text string) []Match
}

// Class is one row of the vocabulary table: a named pattern family.
type Class struct {
	Name     string   `yaml:"name" json:"name"`
	Patterns []string `yaml:"patterns" json:"patterns"`
	Weight   float64  `yaml:"weight" json:"weight"`
}

// Table is the full vocabulary, pattern -> class/weight.
type Table struct {
	Classes []Class `yaml:"classes" json:"classes"`
}

// RegexMatcher is the default Matcher: a compiled vocabulary table.
type RegexMatcher struct {
	classes []compiledClass
}

type compiledClass struct {
	name     string
	weight   float64
	patterns []*regexp.Regexp
}

// Compile builds a RegexMatcher from a vocabulary table.
func Compile(table Table) (*RegexMatcher, error) {
	m := &RegexMatcher{}
	for _, class := range table.Classes {
		cc := compiledClass{name: class.Name, weight: class.Weight}
		if cc.weight == 0 {
			cc.weight = 1.0
		}
		for _, pattern := range class.Patterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("vocabulary class %q: invalid pattern %q: %w", class.Name, pattern, err)
			}
			cc.patterns = append(cc.patterns, re)
		}
		m.classes = append(m.classes, cc)
	}
	return m, nil
}

// MustCompile is Compile for known-good tables, panicking on error.
func MustCompile(table Table) *RegexMatcher {
	m, err := Compile(table)
	if err != nil {
		panic(err)
	}
	return m
}

// Extract runs the whole pattern battery against text. Each distinct
// normalized phrase is reported once per call.
func (m *RegexMatcher) Extract(text string) []Match {
	if text == "" {
		return nil
	}

	var matches []Match
	seen := make(map[string]bool)
	for _, class := range m.classes {
		for _, re := range class.patterns {
			for _, hit := range re.FindAllString(text, -1) {
				topic := strings.ToLower(strings.TrimSpace(hit))
				if topic == "" || seen[topic] {
					continue
				}
				seen[topic] = true
				matches = append(matches, Match{Topic: topic, Class: class.name, Weight: class.weight})
			}
		}
	}
	return matches
}
