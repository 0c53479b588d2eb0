package announcement

import (
	"regexp"
	"time"
)

// The issuing office signs the notice with its name followed by the date.
var publishDateRe = regexp.MustCompile(`国务院办公厅` + ws + `*(\d{4}年\d{1,2}月\d{1,2}日)`)

// ExtractPublishDate finds the issuance date that follows the signature of
// the State Council General Office. now only supplies a fallback year.
func ExtractPublishDate(text string, now time.Time) (Date, bool) {
	m := publishDateRe.FindStringSubmatch(text)
	if m == nil {
		return Date{}, false
	}
	return ResolveDate(m[1], now.Year())
}
