package announcement

// BuildRange returns every day from start to end inclusive.
// It returns nil when end is before start.
func BuildRange(start, end Date) []Date {
	if end.Before(start) {
		return nil
	}

	days := make([]Date, 0, DaysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// DaysBetween returns the number of whole days from start to end
func DaysBetween(start, end Date) int {
	return int(end.Sub(start.Time).Hours() / 24)
}
