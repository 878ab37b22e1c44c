package matcher

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownRule is returned when a rule name is not registered.
var ErrUnknownRule = errors.New("unknown rule")

// RuleSet holds named matchers plus a default matcher.
// Rule names are case-insensitive and stored lowercased.
// It is read-only after construction.
type RuleSet struct {
	rules       map[string]*DecimalNumberMatcher
	defaultName string
	fallback    *DecimalNumberMatcher
}

// NewRuleSet builds a rule set from named configurations.
// When defaultRule is empty the default matcher uses DefaultConfig; otherwise
// it must name one of the rules.
func NewRuleSet(rules map[string]Config, defaultRule string) (*RuleSet, error) {
	rs := &RuleSet{
		rules:       make(map[string]*DecimalNumberMatcher, len(rules)),
		defaultName: strings.ToLower(defaultRule),
	}

	for name, cfg := range rules {
		if name == "" {
			return nil, fmt.Errorf("rule name cannot be empty")
		}
		key := strings.ToLower(name)
		if _, exists := rs.rules[key]; exists {
			return nil, fmt.Errorf("duplicate rule name '%s'", name)
		}
		rs.rules[key] = NewDecimalNumberMatcher(cfg)
	}

	if defaultRule == "" {
		rs.fallback = NewDecimalNumberMatcher(DefaultConfig())
		return rs, nil
	}

	m, ok := rs.rules[rs.defaultName]
	if !ok {
		return nil, fmt.Errorf("%w: default rule '%s'", ErrUnknownRule, defaultRule)
	}
	rs.fallback = m

	return rs, nil
}

// Lookup returns the matcher registered under name, ignoring case.
// An empty name returns the default matcher.
func (rs *RuleSet) Lookup(name string) (*DecimalNumberMatcher, error) {
	if name == "" {
		return rs.fallback, nil
	}
	m, ok := rs.rules[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownRule, name)
	}
	return m, nil
}

// Resolve is Lookup that also returns the canonical rule name: the lowercased
// name, or DefaultName when name is empty.
func (rs *RuleSet) Resolve(name string) (string, *DecimalNumberMatcher, error) {
	m, err := rs.Lookup(name)
	if err != nil {
		return "", nil, err
	}
	if name == "" {
		return rs.defaultName, m, nil
	}
	return strings.ToLower(name), m, nil
}

// Default returns the default matcher.
func (rs *RuleSet) Default() *DecimalNumberMatcher {
	return rs.fallback
}

// DefaultName returns the name of the default rule, or "" for the built-in default.
func (rs *RuleSet) DefaultName() string {
	return rs.defaultName
}

// Names returns the registered rule names in sorted order.
func (rs *RuleSet) Names() []string {
	names := make([]string, 0, len(rs.rules))
	for name := range rs.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
