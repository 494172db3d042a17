// Package dedupe flags repeated submissions of the same underlying sale.
package dedupe

import (
	"strconv"
	"strings"

	"github.com/Veraticus/salesflow/internal/model"
)

// NullSentinel stands in for an absent key component so that missing values
// still take part in the key instead of collapsing adjacent separators.
const NullSentinel = "NA"

// Separator joins the key components.
const Separator = "|"

// Key builds the composite identity of a record from rep, store, resolved
// sale date, units and revenue. Two records are duplicates only when all five agree.
func Key(rec model.EnrichedSubmission) string {
	parts := []string{
		orNull(rec.RepKey),
		orNull(rec.Store),
		orNull(rec.SaleDateString()),
		NullSentinel,
		NullSentinel,
	}
	if rec.UnitsSold != nil {
		parts[3] = strconv.Itoa(*rec.UnitsSold)
	}
	if rec.Revenue != nil {
		parts[4] = strconv.FormatFloat(*rec.Revenue, 'f', -1, 64)
	}
	return strings.Join(parts, Separator)
}

func orNull(s string) string {
	if s == "" {
		return NullSentinel
	}
	return s
}

// Flag sets DupKey on every record and marks every record after the first
// with the same key as a duplicate. Order of records decides which one is first.
// It returns the number of records flagged.
func Flag(records []model.EnrichedSubmission) int {
	seen := make(map[string]struct{}, len(records))
	flagged := 0

	for i := range records {
		key := Key(records[i])
		records[i].DupKey = key

		if _, ok := seen[key]; ok {
			records[i].IsDuplicate = true
			flagged++
			continue
		}
		records[i].IsDuplicate = false
		seen[key] = struct{}{}
	}

	return flagged
}
