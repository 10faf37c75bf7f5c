// Package service implements secret-name pattern matching for the policy
// engine. Patterns are globs: * matches any run of characters, ? exactly one.
package service

import (
	"regexp"
	"strings"

	accessDomain "github.com/keywell/vault/internal/access/domain"
)

// PatternMatcher matches secret names against policy glob patterns.
type PatternMatcher interface {
	// Matches reports whether name matches the glob pattern.
	Matches(pattern, name string) (bool, error)
}

type globMatcher struct{}

// NewPatternMatcher creates a glob pattern matcher.
func NewPatternMatcher() PatternMatcher {
	return &globMatcher{}
}

// Matches reports whether name matches the glob pattern. The whole name must
// match; globs are not substring searches.
func (g *globMatcher) Matches(pattern, name string) (bool, error) {
	re, err := compileGlob(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(name), nil
}

// compileGlob translates a glob into an anchored regular expression. All
// regex metacharacters in the pattern are escaped first so only * and ?
// carry wildcard meaning.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, c := range pattern {
		switch c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, accessDomain.ErrInvalidPattern
	}
	return re, nil
}
