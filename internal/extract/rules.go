// Package extract pulls unit counts and monetary amounts out of free-text sales messages.
//
// Each extractor owns an ordered rule table. Rules are tried top to bottom and the
// first rule that yields a value wins, so the order of a table is part of its contract:
// the same text can satisfy several rules with different intended numbers.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Rule is one named pattern in an extractor's rule table.
// The first capture group holds the number.
type Rule struct {
	Name  string
	Regex string
}

type compiledRule struct {
	re *regexp.Regexp
	Rule
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Regex)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule %s: %w", r.Name, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("rule %s: %w", r.Name, ErrNoCaptureGroup)
		}
		compiled = append(compiled, compiledRule{Rule: r, re: re})
	}
	return compiled, nil
}

// fold lower-cases text before matching.
func fold(text string) string {
	return strings.ToLower(text)
}

// stripSeparators removes thousands separators (commas and whitespace) from a captured number.
func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
