package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/salesflow/internal/model"
)

type groupKey struct {
	saleDate string
	region   string
	store    string
	repKey   string
}

type group struct {
	saleDate    *time.Time
	key         groupKey
	revenue     decimal.Decimal
	statuses    modeCounter[model.SubmissionStatus]
	parses      modeCounter[model.ParseStatus]
	units       int
	submissions int
}

// Aggregate builds the daily fact table from the non-duplicate records and the
// data-quality report from the whole batch.
//
// Null units and revenue count as zero in the sums. Records with an unknown sale
// date, region, store or rep have no group and only count in the quality report.
func Aggregate(records []model.EnrichedSubmission) ([]model.DailySalesFact, model.DataQualityReport) {
	groups := make(map[groupKey]*group)
	order := make([]*group, 0)

	for _, rec := range records {
		if rec.IsDuplicate {
			continue
		}

		key := groupKey{
			saleDate: rec.SaleDateString(),
			region:   rec.Region,
			store:    rec.Store,
			repKey:   rec.RepKey,
		}
		if !key.complete() {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{key: key, saleDate: rec.SaleDate}
			groups[key] = g
			order = append(order, g)
		}

		if rec.UnitsSold != nil {
			g.units += *rec.UnitsSold
		}
		if rec.Revenue != nil {
			g.revenue = g.revenue.Add(decimal.NewFromFloat(*rec.Revenue))
		}
		g.submissions++
		g.statuses.add(rec.SubmissionStatus)
		g.parses.add(rec.ParseStatus)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return lessGroupKey(order[i].key, order[j].key)
	})

	facts := make([]model.DailySalesFact, 0, len(order))
	for _, g := range order {
		facts = append(facts, model.DailySalesFact{
			SaleDate:         g.saleDate,
			Region:           g.key.region,
			Store:            g.key.store,
			RepKey:           g.key.repKey,
			UnitsSold:        g.units,
			Revenue:          g.revenue.InexactFloat64(),
			Submissions:      g.submissions,
			SubmissionStatus: g.statuses.mode(),
			ParseStatus:      g.parses.mode(),
		})
	}

	return facts, QualityReport(records)
}

func (k groupKey) complete() bool {
	return k.saleDate != "" && k.region != "" && k.store != "" && k.repKey != ""
}

// lessGroupKey orders by sale date, region, store, then rep.
func lessGroupKey(a, b groupKey) bool {
	if a.saleDate != b.saleDate {
		return a.saleDate < b.saleDate
	}
	if a.region != b.region {
		return a.region < b.region
	}
	if a.store != b.store {
		return a.store < b.store
	}
	return a.repKey < b.repKey
}

// QualityReport counts raw-feed health over every record, duplicates included.
func QualityReport(records []model.EnrichedSubmission) model.DataQualityReport {
	r := model.DataQualityReport{RawRows: len(records)}

	for _, rec := range records {
		if rec.IsDuplicate {
			r.DuplicatesFlagged++
		}
		if rec.UnitsSold == nil {
			r.MissingUnitsRows++
		}
		if rec.Revenue == nil {
			r.MissingRevenueRows++
		}
		if rec.UnitsSold == nil && rec.Revenue == nil {
			r.MissingBothRows++
		}

		switch rec.SubmissionStatus {
		case model.SubmissionOnTime:
			r.OnTimeRows++
		case model.SubmissionLate:
			r.LateRows++
		case model.SubmissionNextDay:
			r.NextDayRows++
		}
	}

	return r
}

// modeCounter tracks the most frequent value. Ties go to the value seen first.
type modeCounter[T comparable] struct {
	counts map[T]int
	seen   []T
}

func (m *modeCounter[T]) add(v T) {
	if m.counts == nil {
		m.counts = make(map[T]int)
	}
	if _, ok := m.counts[v]; !ok {
		m.seen = append(m.seen, v)
	}
	m.counts[v]++
}

func (m *modeCounter[T]) mode() T {
	var best T
	bestCount := 0
	for _, v := range m.seen {
		if c := m.counts[v]; c > bestCount {
			best = v
			bestCount = c
		}
	}
	return best
}
