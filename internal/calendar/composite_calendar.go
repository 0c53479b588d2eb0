package calendar

import (
	"time"

	"go.uber.org/zap"
)

// CompositeCalendar implements Calendar with fallback strategy
// Primary: FileCalendar (collected notices)
// Fallback: WeekendCalendar (plain week)
type CompositeCalendar struct {
	primary  Calendar
	fallback Calendar
	logger   *zap.Logger
}

// NewCompositeCalendar creates a new CompositeCalendar
func NewCompositeCalendar(primary, fallback Calendar, logger *zap.Logger) *CompositeCalendar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompositeCalendar{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// IsWorkday checks if the given date is a working day
func (cc *CompositeCalendar) IsWorkday(date time.Time) (bool, error) {
	isWorkday, err := cc.primary.IsWorkday(date)
	if err == nil {
		return isWorkday, nil
	}

	cc.logger.Warn("Primary calendar failed, using fallback",
		zap.String("date", date.Format("2006-01-02")),
		zap.Error(err))

	return cc.fallback.IsWorkday(date)
}

// GetMonthInfo returns calendar info for the entire month
func (cc *CompositeCalendar) GetMonthInfo(year int, month time.Month) (*MonthInfo, error) {
	monthInfo, err := cc.primary.GetMonthInfo(year, month)
	if err == nil {
		return monthInfo, nil
	}

	cc.logger.Warn("Primary calendar failed, using fallback",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Error(err))

	return cc.fallback.GetMonthInfo(year, month)
}

// GetDayInfo returns detailed info for a specific day
func (cc *CompositeCalendar) GetDayInfo(date time.Time) (*DayInfo, error) {
	dayInfo, err := cc.primary.GetDayInfo(date)
	if err == nil {
		return dayInfo, nil
	}

	cc.logger.Warn("Primary calendar failed, using fallback",
		zap.String("date", date.Format("2006-01-02")),
		zap.Error(err))

	return cc.fallback.GetDayInfo(date)
}
