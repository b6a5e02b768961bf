package export

import (
	"fmt"
	"regexp"
)

// Filter is a compiled list of exclude patterns.
type Filter struct {
	patterns []*regexp.Regexp
}

// NewFilter compiles patterns. An empty list excludes nothing.
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// Excluded reports whether any pattern matches anywhere in name.
func (f *Filter) Excluded(name string) bool {
	if f == nil {
		return false
	}
	for _, re := range f.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Excluded reports whether any of patterns matches anywhere in name.
// Patterns are searched, not anchored: "test" excludes "my-test-host".
func Excluded(name string, patterns []string) (bool, error) {
	f, err := NewFilter(patterns)
	if err != nil {
		return false, err
	}
	return f.Excluded(name), nil
}
