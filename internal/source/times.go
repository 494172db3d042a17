package source

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// TimestampLayouts are tried in order when parsing timestamp and date cells.
// Slash dates are month first.
var TimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06 15:04",
	"1/2/06",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
}

// TimeParser parses timestamp cells. Unparsable values become nil.
type TimeParser struct {
	loc *time.Location
	// serial enables Excel serial day numbers such as 45301.75.
	serial bool
}

// NewTimeParser creates a parser that reads naive timestamps in loc.
// A nil loc means UTC.
func NewTimeParser(loc *time.Location) *TimeParser {
	if loc == nil {
		loc = time.UTC
	}
	return &TimeParser{loc: loc}
}

// Parse returns the timestamp in s, or nil when s is empty or matches no layout.
func (p *TimeParser) Parse(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range TimestampLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return &t
		}
	}

	if p.serial {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			if t, err := excelize.ExcelDateToTime(f, false); err == nil {
				// Serial numbers carry no zone; re-anchor the wall clock in loc.
				t = t.Round(time.Second)
				t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, p.loc)
				return &t
			}
		}
	}
	return nil
}
