package statement

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// ErrUnparseableDate is returned when every date strategy fails.
var ErrUnparseableDate = errors.New("unparseable date")

// numericLayouts are tried in order against the normalized cell text.
var numericLayouts = []string{
	"2.1.2006 15:04:05",
	"2.1.2006 15:04",
	"2.1.2006",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-01-02t15:04:05", // normalized to lower case
	"2006-1-2",
	"2 1 2006 15:04:05",
	"2 1 2006 15:04",
	"2 1 2006",
}

// monthAbbreviations maps three-letter month prefixes to month numbers.
// Irregular forms ("мая", "сент") are listed explicitly.
var monthAbbreviations = map[string]int{
	"янв": 1, "фев": 2, "мар": 3, "апр": 4, "май": 5, "мая": 5,
	"июн": 6, "июл": 7, "авг": 8, "сен": 9, "сент": 9, "окт": 10,
	"ноя": 11, "дек": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
}

var digitRuns = regexp.MustCompile(`\d+`)

// now is replaceable in tests.
var now = time.Now

// ParseDateValue converts a spreadsheet cell value into a timestamp. Native
// time values pass through unchanged, numbers are treated as spreadsheet
// serial dates and strings go through ParseDate.
func ParseDateValue(value any, loc *time.Location) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case float64:
		return serialToTime(v, loc)
	case string:
		return ParseDate(v, loc)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported cell type %T", ErrUnparseableDate, value)
	}
}

// ParseDate parses a textual bank date using the format cascade: fixed
// numeric layouts, month-name substitution, then digit-run heuristics.
// A nil location means time.Local.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	s := normalizeDateText(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnparseableDate)
	}

	if t, ok := parseNumericLayouts(s, loc); ok {
		return t, nil
	}

	if substituted, ok := substituteMonthNames(s); ok {
		if t, ok := parseNumericLayouts(substituted, loc); ok {
			return t, nil
		}
	}

	if t, ok := parseDigitRuns(s, loc); ok {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, value)
}

// normalizeDateText lower-cases the value, turns commas into spaces and
// collapses whitespace runs.
func normalizeDateText(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

func parseNumericLayouts(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range numericLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// substituteMonthNames replaces a month-name token with its number and
// rebuilds the value as "D M YYYY[ HH:MM]". A missing year defaults to the
// current one.
func substituteMonthNames(s string) (string, bool) {
	var day, month, year, clock string

	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '.' || r == '/' || r == '-'
	})
	for _, token := range tokens {
		switch {
		case strings.Contains(token, ":"):
			clock = token
		case isDigits(token) && len(token) == 4:
			year = token
		case isDigits(token):
			if day == "" {
				day = token
			}
		case isLetters(token):
			if m := lookupMonth(token); m > 0 && month == "" {
				month = strconv.Itoa(m)
			}
		}
	}

	if day == "" || month == "" {
		return "", false
	}
	if year == "" {
		year = strconv.Itoa(now().Year())
	}

	out := day + " " + month + " " + year
	if clock != "" {
		out += " " + clock
	}
	return out, true
}

func lookupMonth(token string) int {
	if m, ok := monthAbbreviations[token]; ok {
		return m
	}
	runes := []rune(token)
	if len(runes) < 3 {
		return 0
	}
	if len(runes) >= 4 {
		if m, ok := monthAbbreviations[string(runes[:4])]; ok {
			return m
		}
	}
	return monthAbbreviations[string(runes[:3])]
}

// parseDigitRuns is the last resort: it extracts the digit runs and picks the
// four-digit run as the year. The two runs around it become day and month,
// and two further runs, if present, become hours and minutes.
func parseDigitRuns(s string, loc *time.Location) (time.Time, bool) {
	runs := digitRuns.FindAllString(s, -1)
	if len(runs) < 3 {
		return time.Time{}, false
	}

	var y, m, d int
	switch {
	case len(runs[0]) == 4:
		y, m, d = atoi(runs[0]), atoi(runs[1]), atoi(runs[2])
	case len(runs[2]) == 4:
		d, m, y = atoi(runs[0]), atoi(runs[1]), atoi(runs[2])
	default:
		return time.Time{}, false
	}

	hour, minute := 0, 0
	if len(runs) >= 5 {
		hour, minute = atoi(runs[3]), atoi(runs[4])
		if hour > 23 || minute > 59 {
			hour, minute = 0, 0
		}
	}

	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, hour, minute, 0, 0, loc)
	// Reject values that time.Date normalized into another month.
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}

// serialToTime converts a spreadsheet serial date. The wall-clock value is
// kept and re-anchored in loc.
func serialToTime(serial float64, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnparseableDate, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
