package release

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const monthNames = `(Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`

type datePattern struct {
	re    *regexp.Regexp
	order [3]int // submatch index of year, month, day
}

// datePatterns are searched in order: "March 5, 2025", "5 March 2025", "2025-03-05".
var datePatterns = []datePattern{
	{
		re:    regexp.MustCompile(`(?i)\b` + monthNames + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`),
		order: [3]int{3, 1, 2},
	},
	{
		re:    regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\.?\s+` + monthNames + `\.?,?\s+(\d{4})\b`),
		order: [3]int{3, 2, 1},
	},
	{
		re:    regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})(?:T|\b)`),
		order: [3]int{1, 2, 3},
	},
}

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ExtractDate finds the first recognizable date in text and returns it in
// DateLayout. ok is false when no pattern produced a valid calendar date.
func ExtractDate(text string) (string, bool) {
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		year, err := strconv.Atoi(m[p.order[0]])
		if err != nil {
			continue
		}
		month, ok := parseMonth(m[p.order[1]])
		if !ok {
			continue
		}
		day, err := strconv.Atoi(m[p.order[2]])
		if err != nil {
			continue
		}

		t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day || t.Month() != month {
			continue
		}
		return t.Format(DateLayout), true
	}

	return "", false
}

func parseMonth(s string) (time.Month, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	if len(s) < 3 {
		return 0, false
	}
	m, ok := months[strings.ToLower(s[:3])]
	return m, ok
}
