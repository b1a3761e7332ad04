package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// PackageRule names a group of package id patterns. A pattern is an exact
// id, a prefix ending in '*' ("Microsoft.CodeAnalysis.*"), or "*" alone.
type PackageRule struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// PackageRuleSet matches package ids against rules case-insensitively. When
// several rules match, the one declared first wins.
type PackageRuleSet struct {
	Rules    []PackageRule
	exact    map[string]int
	prefixes []prefixPattern
	wildcard int
}

func NewPackageRuleSet(rules ...PackageRule) PackageRuleSet {
	set := PackageRuleSet{Rules: rules, wildcard: -1}
	set.compile()
	return set
}

// NewPackageList is a single-rule set, the common shape of allow and deny
// lists.
func NewPackageList(name string, patterns ...string) PackageRuleSet {
	return NewPackageRuleSet(PackageRule{Name: name, Patterns: patterns})
}

// Matches reports whether any rule covers packageID.
func (s PackageRuleSet) Matches(packageID string) bool {
	_, ok := s.match(packageID)
	return ok
}

// Match returns the first rule covering packageID.
func (s PackageRuleSet) Match(packageID string) (PackageRule, error) {
	idx, ok := s.match(packageID)
	if ok {
		return s.Rules[idx], nil
	}
	return PackageRule{}, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("no package rule matches %s", packageID))
}

func (s PackageRuleSet) Len() int {
	return len(s.exact) + len(s.prefixes)
}

func (s PackageRuleSet) match(packageID string) (int, bool) {
	name := strings.ToLower(strings.TrimSpace(packageID))
	if name == "" {
		return -1, false
	}
	best := -1
	if idx, found := s.exact[name]; found {
		best = minIndex(best, idx)
	}
	for _, entry := range s.prefixes {
		if strings.HasPrefix(name, entry.prefix) {
			best = minIndex(best, entry.ruleIndex)
		}
	}
	if s.wildcard >= 0 {
		best = minIndex(best, s.wildcard)
	}
	return best, best >= 0 && best < len(s.Rules)
}

type prefixPattern struct {
	prefix    string
	ruleIndex int
}

type patternKind int

const (
	patternExact patternKind = iota
	patternPrefix
	patternWildcard
	patternInvalid
)

func (s *PackageRuleSet) compile() {
	s.exact = map[string]int{}
	s.prefixes = nil
	s.wildcard = -1
	for idx, rule := range s.Rules {
		for _, pattern := range rule.Patterns {
			name, kind := parsePattern(pattern)
			switch kind {
			case patternWildcard:
				if s.wildcard < 0 {
					s.wildcard = idx
				}
			case patternExact:
				if _, ok := s.exact[name]; !ok {
					s.exact[name] = idx
				}
			case patternPrefix:
				s.prefixes = append(s.prefixes, prefixPattern{prefix: name, ruleIndex: idx})
			}
		}
	}
}

func parsePattern(value string) (string, patternKind) {
	pattern := strings.ToLower(strings.TrimSpace(value))
	if pattern == "" {
		return "", patternInvalid
	}
	if pattern == "*" {
		return "", patternWildcard
	}
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		if strings.Contains(prefix, "*") {
			return "", patternInvalid
		}
		return prefix, patternPrefix
	}
	if strings.Contains(pattern, "*") {
		return "", patternInvalid
	}
	return pattern, patternExact
}

func minIndex(current int, candidate int) int {
	if candidate < 0 {
		return current
	}
	if current < 0 || candidate < current {
		return candidate
	}
	return current
}
