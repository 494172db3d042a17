package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/salesflow/internal/model"
)

func TestExtractRevenue(t *testing.T) {
	floatPtr := func(f float64) *float64 { return &f }

	tests := []struct {
		want *float64
		name string
		text string
	}{
		{name: "currency with comma", text: "R27,401", want: floatPtr(27401)},
		{name: "currency with space and comma", text: "R 23,596", want: floatPtr(23596)},
		{name: "currency zero", text: "R0", want: floatPtr(0)},
		{name: "thousands shorthand", text: "9.1k", want: floatPtr(9100)},
		{name: "thousands shorthand with marker", text: "R14.8k", want: floatPtr(14800)},
		{name: "thousands shorthand in sentence", text: "George: 14.8k and 7 u", want: floatPtr(14800)},
		{name: "integer thousands", text: "total 12K today", want: floatPtr(12000)},
		{name: "labeled revenue", text: "units=4 rev 3500", want: floatPtr(3500)},
		{name: "labeled revenue with marker", text: "Revenue: R 12,450", want: floatPtr(12450)},
		{name: "labeled sales with space separator", text: "sales 11 848", want: floatPtr(11848)},
		{name: "currency with space separator", text: "7 units r 12 450", want: floatPtr(12450)},
		{name: "plain number", text: "11848", want: floatPtr(11848)},
		{name: "spaced digits join", text: "11 848", want: floatPtr(11848)},
		{name: "largest with decimal", text: "3 / 450.50", want: floatPtr(450.5)},
		{name: "units only", text: "7 units", want: nil},
		{name: "u prefix only", text: "u 7", want: nil},
		{name: "units twice", text: "units=5 and 9 units", want: nil},
		{name: "name and units", text: "Thabo 7 u", want: nil},
		{name: "number inside words", text: "sold 2 100", want: nil},
		{name: "no numbers", text: "no sales today", want: nil},
		{name: "empty text", text: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractRevenue(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestAmountExtractor_FirstRuleWins(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantRule   string
		wantAmount float64
	}{
		{
			name:       "thousands beats label",
			text:       "rev 500 or 2k",
			wantRule:   RuleThousandsSuffix,
			wantAmount: 2000,
		},
		{
			name:       "label beats currency marker",
			text:       "R 900 deposit, sales 1,250",
			wantRule:   RuleLabeledRevenue,
			wantAmount: 1250,
		},
		{
			name:       "currency marker beats larger bare number",
			text:       "R350 at store 4410",
			wantRule:   RuleCurrencyMarked,
			wantAmount: 350,
		},
		{
			name:       "fallback picks the maximum",
			text:       "3; 120; 45",
			wantRule:   RuleLargestNumber,
			wantAmount: 120,
		},
	}

	a := DefaultAmountExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := a.Match(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.wantRule, m.Rule)
			assert.Equal(t, tt.wantAmount, m.Amount)
		})
	}
}

func TestAmountExtractor_MarkerInsideWordIgnored(t *testing.T) {
	m, ok := DefaultAmountExtractor().Match("per: 5")
	require.True(t, ok)
	assert.Equal(t, RuleLargestNumber, m.Rule)
	assert.Equal(t, 5.0, m.Amount)
}

func TestAmountExtractor_UnitsOnlyGivesNoAmount(t *testing.T) {
	for _, text := range []string{"7 units", "u 7", "units=5 and 9 units", "Thabo 7 u"} {
		t.Run(text, func(t *testing.T) {
			_, ok := DefaultAmountExtractor().Match(text)
			assert.False(t, ok)

			units := ExtractUnits(text)
			require.NotNil(t, units)
			assert.Equal(t, model.MissingRevenue, model.ParseStatusFor(units, ExtractRevenue(text)))
		})
	}
}

func TestNewAmountExtractor_CustomMarkers(t *testing.T) {
	a, err := NewAmountExtractor("zar", "$")
	require.NoError(t, err)

	m, ok := a.Match("ZAR 1,500 for 3 units")
	require.True(t, ok)
	assert.Equal(t, RuleCurrencyMarked, m.Rule)
	assert.Equal(t, 1500.0, m.Amount)

	m, ok = a.Match("$2,000 and 4 u")
	require.True(t, ok)
	assert.Equal(t, RuleCurrencyMarked, m.Rule)
	assert.Equal(t, 2000.0, m.Amount)

	_, err = NewAmountExtractor(" ")
	require.ErrorIs(t, err, ErrEmptyCurrencyMarker)
}
