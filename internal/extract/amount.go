package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount rule names.
const (
	RuleThousandsSuffix = "thousands_suffix"
	RuleLabeledRevenue  = "labeled_revenue"
	RuleCurrencyMarked  = "currency_marked"
	RuleLargestNumber   = "largest_number"
)

// DefaultCurrencyMarkers are the prefixes recognized as a currency sign.
var DefaultCurrencyMarkers = []string{"r"}

var (
	thousandsFactor = decimal.NewFromInt(1000)

	// numberRe finds standalone integers and decimals for the fallback rule.
	numberRe = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
)

// AmountMatch is the result of a successful amount extraction.
type AmountMatch struct {
	Rule   string
	Amount float64
}

type amountRule struct {
	extract func(t string) (float64, bool)
	name    string
}

// AmountExtractor extracts monetary amounts with an ordered rule table:
// thousands shorthand, labeled revenue, currency-marked number, then the
// largest number in the text.
type AmountExtractor struct {
	rules []amountRule
}

// NewAmountExtractor builds an extractor that recognizes the given currency markers.
// With no markers it uses DefaultCurrencyMarkers.
func NewAmountExtractor(markers ...string) (*AmountExtractor, error) {
	if len(markers) == 0 {
		markers = DefaultCurrencyMarkers
	}
	marker, err := markerPattern(markers)
	if err != nil {
		return nil, err
	}

	thousandsRe, err := regexp.Compile(`(?:` + marker + `\s*)?(\d+(?:\.\d+)?)\s*k\b`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", RuleThousandsSuffix, err)
	}
	labeledRe, err := regexp.Compile(`(?:rev|revenue|sales)\D{0,5}(?:` + marker + `)?\D{0,3}?(\d{1,3}(?:[,\s]\d{3})+|\d+)`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", RuleLabeledRevenue, err)
	}
	currencyRe, err := regexp.Compile(`(?:^|[^a-z0-9])(?:` + marker + `)\s*([0-9][0-9,\s]*)\b`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", RuleCurrencyMarked, err)
	}

	return &AmountExtractor{
		rules: []amountRule{
			{name: RuleThousandsSuffix, extract: thousandsRule(thousandsRe)},
			{name: RuleLabeledRevenue, extract: separatedNumberRule(labeledRe)},
			{name: RuleCurrencyMarked, extract: separatedNumberRule(currencyRe)},
			{name: RuleLargestNumber, extract: largestNumber},
		},
	}, nil
}

func markerPattern(markers []string) (string, error) {
	quoted := make([]string, 0, len(markers))
	for _, m := range markers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" {
			return "", ErrEmptyCurrencyMarker
		}
		quoted = append(quoted, regexp.QuoteMeta(m))
	}
	return strings.Join(quoted, "|"), nil
}

// Match returns the value of the first rule that yields an amount.
// A rule whose capture does not convert to a number is skipped.
func (a *AmountExtractor) Match(text string) (AmountMatch, bool) {
	if text == "" {
		return AmountMatch{}, false
	}
	t := fold(text)

	for _, rule := range a.rules {
		if v, ok := rule.extract(t); ok {
			return AmountMatch{Rule: rule.name, Amount: v}, true
		}
	}
	return AmountMatch{}, false
}

// Extract returns the amount, or nil when no rule yields one.
func (a *AmountExtractor) Extract(text string) *float64 {
	m, ok := a.Match(text)
	if !ok {
		return nil
	}
	return &m.Amount
}

// thousandsRule multiplies "9.1k" style captures by 1000 in decimal so 9.1k is exactly 9100.
func thousandsRule(re *regexp.Regexp) func(string) (float64, bool) {
	return func(t string) (float64, bool) {
		m := re.FindStringSubmatch(t)
		if m == nil {
			return 0, false
		}
		d, err := decimal.NewFromString(m[1])
		if err != nil {
			return 0, false
		}
		return d.Mul(thousandsFactor).InexactFloat64(), true
	}
}

func separatedNumberRule(re *regexp.Regexp) func(string) (float64, bool) {
	return func(t string) (float64, bool) {
		m := re.FindStringSubmatch(t)
		if m == nil {
			return 0, false
		}
		return parseAmount(stripSeparators(m[1]))
	}
}

// largestNumber scans the text with all whitespace removed, so a number only
// stands alone when punctuation or the ends of the text delimit it.
// "7 units" becomes "7units" and yields nothing.
func largestNumber(t string) (float64, bool) {
	t = strings.Join(strings.Fields(t), "")

	found := false
	var largest float64
	for _, s := range numberRe.FindAllString(t, -1) {
		v, ok := parseAmount(s)
		if !ok {
			continue
		}
		if !found || v > largest {
			largest = v
			found = true
		}
	}
	return largest, found
}

func parseAmount(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var defaultAmount = mustAmountExtractor()

func mustAmountExtractor() *AmountExtractor {
	a, err := NewAmountExtractor()
	if err != nil {
		panic(err)
	}
	return a
}

// DefaultAmountExtractor returns the shared extractor built with DefaultCurrencyMarkers.
func DefaultAmountExtractor() *AmountExtractor {
	return defaultAmount
}

// ExtractRevenue extracts a monetary amount from free text with the default rules.
func ExtractRevenue(text string) *float64 {
	return defaultAmount.Extract(text)
}
