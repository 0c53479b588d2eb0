package calendar

import (
	"time"

	"github.com/username/cn-holiday-collector/pkg/dateutil"
)

// WeekendCalendar knows only the Monday-Friday week. It never fails, which
// makes it the usual fallback when no collected data covers a date.
type WeekendCalendar struct{}

// NewWeekendCalendar creates a new WeekendCalendar
func NewWeekendCalendar() *WeekendCalendar {
	return &WeekendCalendar{}
}

// IsWorkday checks if the given date is a working day
func (wc *WeekendCalendar) IsWorkday(date time.Time) (bool, error) {
	return dateutil.IsWeekday(date), nil
}

// GetMonthInfo returns calendar info for the entire month
func (wc *WeekendCalendar) GetMonthInfo(year int, month time.Month) (*MonthInfo, error) {
	return buildMonth(year, month, wc.GetDayInfo)
}

// GetDayInfo returns detailed info for a specific day
func (wc *WeekendCalendar) GetDayInfo(date time.Time) (*DayInfo, error) {
	return weekdayInfo(date), nil
}

func weekdayInfo(date time.Time) *DayInfo {
	info := &DayInfo{
		Date:      dateutil.CivilDate(date),
		Type:      DayTypeWorkday,
		IsWorkday: true,
	}
	if dateutil.IsWeekend(date) {
		info.Type = DayTypeWeekend
		info.IsWorkday = false
	}
	return info
}
