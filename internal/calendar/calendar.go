package calendar

import "time"

// DayType represents the type of day
type DayType int

const (
	DayTypeWorkday DayType = iota + 1
	DayTypeWeekend
	DayTypeHoliday
	DayTypeTransferredWorkday // 调休上班: a weekend day worked to bridge a holiday
)

// String returns the name used in CLI output
func (t DayType) String() string {
	switch t {
	case DayTypeWorkday:
		return "workday"
	case DayTypeWeekend:
		return "weekend"
	case DayTypeHoliday:
		return "holiday"
	case DayTypeTransferredWorkday:
		return "transferred-workday"
	default:
		return "unknown"
	}
}

// DayInfo represents information about a specific day
type DayInfo struct {
	Date      time.Time
	Type      DayType
	IsWorkday bool
	Holiday   string // holiday the day belongs to or is worked for
}

// MonthInfo represents calendar information for a month
type MonthInfo struct {
	Year                int
	Month               time.Month
	WorkDays            int // includes transferred workdays
	Weekends            int
	Holidays            int
	TransferredWorkdays int
	Days                []DayInfo
}

// Calendar interface for checking working days
type Calendar interface {
	// IsWorkday checks if the given date is a working day
	IsWorkday(date time.Time) (bool, error)

	// GetMonthInfo returns calendar info for the entire month
	GetMonthInfo(year int, month time.Month) (*MonthInfo, error)

	// GetDayInfo returns detailed info for a specific day
	GetDayInfo(date time.Time) (*DayInfo, error)
}

// buildMonth assembles MonthInfo from a per-day lookup
func buildMonth(year int, month time.Month, day func(time.Time) (*DayInfo, error)) (*MonthInfo, error) {
	info := &MonthInfo{
		Year:  year,
		Month: month,
	}

	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		dayInfo, err := day(d)
		if err != nil {
			return nil, err
		}
		info.Days = append(info.Days, *dayInfo)

		switch dayInfo.Type {
		case DayTypeWorkday:
			info.WorkDays++
		case DayTypeTransferredWorkday:
			info.WorkDays++
			info.TransferredWorkdays++
		case DayTypeWeekend:
			info.Weekends++
		case DayTypeHoliday:
			info.Holidays++
		}
	}

	return info, nil
}
