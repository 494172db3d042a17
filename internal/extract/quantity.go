package extract

import (
	"strconv"
)

// Quantity rule names.
const (
	RuleUnitsEquals     = "units_equals"
	RuleUEquals         = "u_equals"
	RuleUSpaceNumber    = "u_space_number"
	RuleUnitsLabel      = "units_label"
	RuleUnitLabel       = "unit_label"
	RuleNumberUnits     = "number_units"
	RuleNumberParenUnit = "number_paren_unit"
)

// DefaultQuantityRules is the ordered rule table used by ExtractUnits.
var DefaultQuantityRules = []Rule{
	{Name: RuleUnitsEquals, Regex: `\bunits?\s*=\s*(\d+)\b`},             // units=7, unit = 7
	{Name: RuleUEquals, Regex: `\bu\s*=\s*(\d+)\b`},                      // u=7
	{Name: RuleUSpaceNumber, Regex: `\bu\s+(\d+)\b`},                     // u 7
	{Name: RuleUnitsLabel, Regex: `\bunits?\s*[:\-]?\s*(\d+)\b`},         // units 7, units:7, units-7
	{Name: RuleUnitLabel, Regex: `\bunit\s*[:\-]?\s*(\d+)\b`},            // unit 7, unit:7
	{Name: RuleNumberUnits, Regex: `\b(\d+)\s*(?:units?|u)\b`},           // 7 units, 7 unit, 7 u
	{Name: RuleNumberParenUnit, Regex: `\b(\d+)\s*\((?:u|unit|units)\)`}, // 7 (u), 7 (unit)
}

// UnitsMatch is the result of a successful quantity extraction.
type UnitsMatch struct {
	Rule  string
	Units int
}

// QuantityExtractor extracts unit counts with an ordered rule table.
type QuantityExtractor struct {
	rules []compiledRule
}

// NewQuantityExtractor compiles the given rules, keeping their order.
func NewQuantityExtractor(rules []Rule) (*QuantityExtractor, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &QuantityExtractor{rules: compiled}, nil
}

// Match returns the value of the first rule that matches the lower-cased text.
// A capture too large for an int does not count as a match.
func (q *QuantityExtractor) Match(text string) (UnitsMatch, bool) {
	if text == "" {
		return UnitsMatch{}, false
	}
	t := fold(text)

	for _, rule := range q.rules {
		m := rule.re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return UnitsMatch{Rule: rule.Name, Units: n}, true
	}
	return UnitsMatch{}, false
}

// Extract returns the unit count, or nil when no rule matches.
func (q *QuantityExtractor) Extract(text string) *int {
	m, ok := q.Match(text)
	if !ok {
		return nil
	}
	return &m.Units
}

var defaultQuantity = mustQuantityExtractor(DefaultQuantityRules)

func mustQuantityExtractor(rules []Rule) *QuantityExtractor {
	q, err := NewQuantityExtractor(rules)
	if err != nil {
		panic(err)
	}
	return q
}

// DefaultQuantityExtractor returns the shared extractor built from DefaultQuantityRules.
func DefaultQuantityExtractor() *QuantityExtractor {
	return defaultQuantity
}

// ExtractUnits extracts a unit count from free text using DefaultQuantityRules.
func ExtractUnits(text string) *int {
	return defaultQuantity.Extract(text)
}
