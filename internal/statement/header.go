package statement

import (
	"strings"
)

// HeaderScanRows bounds the search for the header row.
const HeaderScanRows = 20

var (
	dateMarkers   = []string{"дата", "date"}
	amountMarkers = []string{"сумма", "amount"}
	// Currency-specific amount columns win over the generic one.
	accountCurrencyMarkers = []string{
		"сумма в рубл",
		"сумма в р",
		"сумма в валюте счета",
		"amount in rub",
		"amount (rub)",
		"amount in account currency",
	}
	descriptionMarkers = []string{"описание", "description"}
)

// columns holds resolved column indexes. description is -1 when absent.
type columns struct {
	date        int
	amount      int
	description int
}

// NormalizeHeader trims a column name, collapses embedded line breaks and
// whitespace runs, and lower-cases it.
func NormalizeHeader(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// findHeaderRow returns the index of the first row within the scan window
// that mentions both a date and an amount.
func findHeaderRow(rows [][]string) (int, bool) {
	limit := min(len(rows), HeaderScanRows)
	for i := 0; i < limit; i++ {
		var hasDate, hasAmount bool
		for _, cell := range rows[i] {
			name := NormalizeHeader(cell)
			hasDate = hasDate || containsAny(name, dateMarkers)
			hasAmount = hasAmount || containsAny(name, amountMarkers)
		}
		if hasDate && hasAmount {
			return i, true
		}
	}
	return 0, false
}

func resolveColumns(header []string) (columns, error) {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = NormalizeHeader(h)
	}

	cols := columns{
		date:        indexOf(names, dateMarkers),
		amount:      indexOf(names, accountCurrencyMarkers),
		description: indexOf(names, descriptionMarkers),
	}
	if cols.amount < 0 {
		cols.amount = indexOf(names, amountMarkers)
	}

	if cols.date < 0 {
		return cols, formatErrorf("no date column in header %q", names)
	}
	if cols.amount < 0 {
		return cols, formatErrorf("no amount column in header %q", names)
	}
	return cols, nil
}

// indexOf returns the first column whose name contains any marker, trying
// markers in priority order.
func indexOf(names []string, markers []string) int {
	for _, marker := range markers {
		for i, name := range names {
			if strings.Contains(name, marker) {
				return i
			}
		}
	}
	return -1
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
