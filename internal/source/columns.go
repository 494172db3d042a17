// Package source reads raw sales submissions from CSV and XLSX exports.
package source

import (
	"fmt"
	"strings"

	"github.com/Veraticus/salesflow/internal/common"
	"github.com/Veraticus/salesflow/internal/model"
)

// Input column names.
const (
	ColMessageID        = "message_id"
	ColMessageTimestamp = "message_timestamp"
	ColSalesDateClaimed = "sales_date_claimed"
	ColRawText          = "raw_text"
	ColRepID            = "rep_id"
	ColRepName          = "rep_name"
	ColStore            = "store"
	ColRegion           = "region"
)

// Columns lists every input column in export order.
var Columns = []string{
	ColMessageID,
	ColMessageTimestamp,
	ColSalesDateClaimed,
	ColRawText,
	ColRepID,
	ColRepName,
	ColStore,
	ColRegion,
}

// header maps column names to their positions in a row.
type header map[string]int

// parseHeader locates every input column in the header row. Extra columns are
// ignored and names match case-insensitively.
func parseHeader(row []string) (header, error) {
	h := make(header, len(row))
	for i, name := range row {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}

	var missing []string
	for _, col := range Columns {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return h, nil
}

func (h header) get(row []string, col string) string {
	i := h[col]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h header) submission(row []string, times *TimeParser) model.Submission {
	return model.Submission{
		MessageID:        h.get(row, ColMessageID),
		MessageTimestamp: times.Parse(h.get(row, ColMessageTimestamp)),
		SalesDateClaimed: times.Parse(h.get(row, ColSalesDateClaimed)),
		RawText:          h.get(row, ColRawText),
		RepID:            h.get(row, ColRepID),
		RepName:          h.get(row, ColRepName),
		Store:            h.get(row, ColStore),
		Region:           h.get(row, ColRegion),
	}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
