package announcement

import (
	"regexp"
	"strconv"
	"strings"
)

// ws matches one whitespace rune, including the full-width and no-break
// spaces that appear in text copied from rendered gov.cn pages.
const ws = `[\s\x0b\x1c-\x1f\x{85}\x{a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}]`

var (
	annotationRe = regexp.MustCompile(`[（(].*?[)）]`)
	fullDateRe   = regexp.MustCompile(`^(?:(\d{4})年)?(\d{1,2})月(\d{1,2})日`)
	dayOnlyRe    = regexp.MustCompile(`^(\d{1,2})日`)
)

// ResolveDate converts a fragment like "2025年1月1日", "10月1日" or
// "1月26日（周日）" into a Date. Fragments without a year use defaultYear.
// The second result is false when the fragment is not a date or names a
// day that does not exist.
func ResolveDate(fragment string, defaultYear int) (Date, bool) {
	clean := strings.TrimSpace(annotationRe.ReplaceAllString(fragment, ""))

	m := fullDateRe.FindStringSubmatch(clean)
	if m == nil {
		return Date{}, false
	}

	year := defaultYear
	if m[1] != "" {
		year, _ = strconv.Atoi(m[1])
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	return validDate(year, month, day)
}

// resolveEndDate resolves the end of a range. A full fragment resolves on its
// own; a day-only fragment ("6日") is completed from the start date and rolls
// into the following month when it would land before the start.
func resolveEndDate(fragment string, start Date, hasStart bool, defaultYear int) (Date, bool) {
	if d, ok := ResolveDate(fragment, defaultYear); ok {
		return d, true
	}

	m := dayOnlyRe.FindStringSubmatch(fragment)
	if m == nil || !hasStart {
		return Date{}, false
	}
	day, _ := strconv.Atoi(m[1])

	end, ok := validDate(start.Year(), int(start.Month()), day)
	if !ok {
		return Date{}, false
	}
	if end.Before(start) {
		// Day 28 plus four days always lands in the next month.
		next := NewDate(start.Year(), start.Month(), 28).AddDays(4)
		return validDate(next.Year(), int(next.Month()), day)
	}
	return end, true
}
