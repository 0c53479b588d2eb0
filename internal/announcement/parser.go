package announcement

import (
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const numerals = `[一二三四五六七八九十]+`

var (
	// "二、春节：": ordinal, enumeration comma, name and colon
	entryHeaderRe = regexp.MustCompile(`(` + numerals + `)、` + ws + `*([^：:\n]+?)` + ws + `*[：:](` + ws + `*)`)
	nextEntryRe   = regexp.MustCompile(`\n` + numerals + `、`)

	dateRangeRe = regexp.MustCompile(
		`((?:\d{4}年)?\d{1,2}月\d{1,2}日)\D*至\D*` +
			`((?:\d{4}年)?(?:\d{1,2}月\d{1,2}日|\d{1,2}日))`)
	singleDateRe = regexp.MustCompile(`(\d{1,2}月\d{1,2}日)[^至]*$`)
	workDaysRe   = regexp.MustCompile(
		`((?:\d{1,2}月\d{1,2}日` + ws + `*(?:（[^）]*）)?` + ws + `*[,、]?` + ws + `*)+)上班`)
	monthDayRe = regexp.MustCompile(`\d{1,2}月\d{1,2}日`)
)

// Abbreviated names that the notices sometimes use without the trailing 节.
var abbreviatedNames = map[string]bool{
	"元旦": true,
	"劳动": true,
	"国庆": true,
	"清明": true,
	"端午": true,
	"中秋": true,
}

// Options tune the parser
type Options struct {
	// KeepUndatedSeparate stops entries without any resolved date from
	// being merged together under the empty date tuple.
	KeepUndatedSeparate bool
}

// RawEntry is one ordinal-numbered clause of an announcement
type RawEntry struct {
	Ordinal  string
	NamePart string
	Names    []string
	Content  string

	Dates    []Date
	WorkDays []Date
}

// Parser turns announcement text into holidays.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	logger *zap.Logger
	opts   Options
	now    func() time.Time
}

// NewParser creates a parser. A nil logger disables diagnostics.
func NewParser(logger *zap.Logger, opts Options) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// Parse extracts the holiday schedule for year from text. Malformed input
// yields a partial or empty result, never an error.
func (p *Parser) Parse(text string, year int) *Result {
	p.logger.Debug("Parsing announcement", zap.Int("year", year), zap.Int("length", len(text)))

	var collected Holidays
	for _, raw := range p.Segment(text) {
		raw = p.Extract(raw, year)
		entry := Entry{Dates: raw.Dates, WorkDays: raw.WorkDays}
		for _, name := range raw.Names {
			collected.Set(name, entry.clone())
		}
	}

	result := &Result{Holidays: p.merge(&collected)}

	if publishDate, ok := ExtractPublishDate(text, p.now()); ok {
		result.Metadata.PublishDate = &publishDate
		p.logger.Debug("Publish date resolved", zap.Stringer("publish_date", publishDate))
	}

	p.logger.Debug("Announcement parsed",
		zap.Int("year", year),
		zap.Int("holidays", result.Holidays.Len()))

	return result
}

// Segment splits text into ordinal-numbered entries. Each entry's content
// runs up to the line that starts the next entry.
func (p *Parser) Segment(text string) []RawEntry {
	var entries []RawEntry

	pos := 0
	for pos < len(text) {
		loc := entryHeaderRe.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[1]
		if start == len(text) && loc[6] == loc[7] {
			// Header with nothing after the colon.
			break
		}

		end := len(text)
		if next := nextEntryRe.FindStringIndex(text[start:]); next != nil {
			end = start + next[0]
		}

		raw := RawEntry{
			Ordinal:  text[pos+loc[2] : pos+loc[3]],
			NamePart: text[pos+loc[4] : pos+loc[5]],
			Content:  text[start:end],
		}
		raw.Names = p.splitNames(raw.NamePart)

		p.logger.Debug("Entry found",
			zap.String("ordinal", raw.Ordinal),
			zap.String("name_part", raw.NamePart),
			zap.Strings("names", raw.Names))

		entries = append(entries, raw)
		pos = end
	}

	return entries
}

// splitNames splits "国庆节、中秋节" style fragments and normalizes each name.
func (p *Parser) splitNames(part string) []string {
	fields := strings.FieldsFunc(strings.TrimSpace(part), func(r rune) bool {
		return r == '、' || r == '和'
	})

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		name := strings.TrimSpace(f)
		if name == "" {
			continue
		}
		if normalized := NormalizeName(name); normalized != name {
			p.logger.Debug("Name normalized",
				zap.String("from", name),
				zap.String("to", normalized))
			name = normalized
		}
		names = append(names, name)
	}
	return names
}

// NormalizeName completes abbreviated holiday names, e.g. 国庆 → 国庆节
func NormalizeName(name string) string {
	if !strings.Contains(name, "节") && abbreviatedNames[name] {
		return name + "节"
	}
	return name
}

// Extract resolves the holiday dates and compensatory workdays of raw
func (p *Parser) Extract(raw RawEntry, year int) RawEntry {
	raw.Dates = p.extractDates(raw.Content, year)
	raw.WorkDays = p.extractWorkDays(raw.Content, year, raw.Dates)
	return raw
}

func (p *Parser) extractDates(content string, year int) []Date {
	if m := dateRangeRe.FindStringSubmatch(content); m != nil {
		start, startOK := ResolveDate(m[1], year)
		end, endOK := resolveEndDate(m[2], start, startOK, year)
		if !startOK || !endOK {
			p.logger.Debug("Date range unresolved",
				zap.String("start", m[1]),
				zap.String("end", m[2]),
				zap.Bool("start_resolved", startOK),
				zap.Bool("end_resolved", endOK))
			return []Date{}
		}

		if end.Before(start) {
			p.logger.Debug("Range crosses the year, moving end forward",
				zap.Stringer("start", start),
				zap.Stringer("end", end))
			next, ok := validDate(end.Year()+1, int(end.Month()), end.Day())
			if !ok {
				return []Date{}
			}
			end = next
		}

		dates := BuildRange(start, end)
		p.logger.Debug("Date range resolved",
			zap.String("fragment", m[0]),
			zap.Stringer("start", start),
			zap.Stringer("end", end),
			zap.Int("days", len(dates)))
		return append([]Date{}, dates...)
	}

	if m := singleDateRe.FindStringSubmatch(content); m != nil {
		d, ok := ResolveDate(m[1], year)
		if !ok {
			return []Date{}
		}
		if d.Year() != year {
			d = NewDate(year, d.Month(), d.Day())
		}
		p.logger.Debug("Single date resolved",
			zap.String("fragment", m[1]),
			zap.Stringer("date", d))
		return []Date{d}
	}

	return []Date{}
}

func (p *Parser) extractWorkDays(content string, year int, dates []Date) []Date {
	workDays := []Date{}

	m := workDaysRe.FindStringSubmatch(content)
	if m == nil {
		return workDays
	}

	for _, fragment := range monthDayRe.FindAllString(m[1], -1) {
		d, ok := ResolveDate(fragment, year)
		if !ok {
			p.logger.Debug("Workday unresolved", zap.String("fragment", fragment))
			continue
		}
		// A day inside the holiday itself is an overlapping match, not a workday.
		if len(dates) > 0 && d.Between(dates[0], dates[len(dates)-1]) {
			continue
		}
		workDays = append(workDays, d)
	}

	p.logger.Debug("Workdays resolved",
		zap.String("fragment", m[0]),
		zap.Int("count", len(workDays)))

	return workDays
}

// merge collapses holidays with identical date tuples into one entry keyed
// by their joined names. The first holiday of a group supplies the data.
func (p *Parser) merge(collected *Holidays) Holidays {
	var order []string
	groups := make(map[string][]string)

	for _, name := range collected.Names() {
		e, _ := collected.Get(name)
		key := e.datesKey()
		if p.opts.KeepUndatedSeparate && len(e.Dates) == 0 {
			key = "undated:" + name
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], name)
	}

	var merged Holidays
	for _, key := range order {
		names := groups[key]
		first, _ := collected.Get(names[0])
		if len(names) == 1 {
			merged.Set(names[0], first)
			continue
		}
		combined := strings.Join(names, NameSeparator)
		p.logger.Debug("Holidays merged",
			zap.Strings("names", names),
			zap.String("combined", combined))
		merged.Set(combined, first)
	}
	return merged
}
