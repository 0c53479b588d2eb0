package calendar

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/username/cn-holiday-collector/internal/store"
	"github.com/username/cn-holiday-collector/pkg/dateutil"
)

// ErrYearNotCollected is returned for dates whose year has no usable output file
var ErrYearNotCollected = errors.New("year not collected")

// FileCalendar implements Calendar using the holidays_{year}.json files
// written by the collector. Years are loaded on first use.
type FileCalendar struct {
	store  *store.Store
	logger *zap.Logger

	mu    sync.Mutex
	years map[int]map[string]DayInfo // year → "YYYY-MM-DD" → special day
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(s *store.Store, logger *zap.Logger) *FileCalendar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileCalendar{
		store:  s,
		logger: logger,
		years:  make(map[int]map[string]DayInfo),
	}
}

// Load reads the output file for year, replacing anything loaded before.
// Holiday dates come before workdays, and the first notice to mention a
// date wins.
func (fc *FileCalendar) Load(year int) error {
	records, err := fc.store.LoadYear(year)
	if err != nil {
		return fmt.Errorf("%w: %d: %v", ErrYearNotCollected, year, err)
	}

	days := make(map[string]DayInfo)
	for _, rec := range records {
		holidays := rec.ParsedData
		for _, name := range holidays.Names() {
			entry, _ := holidays.Get(name)
			for _, d := range entry.Dates {
				if _, seen := days[d.String()]; !seen {
					days[d.String()] = DayInfo{Date: d.Time, Type: DayTypeHoliday, Holiday: name}
				}
			}
		}
		for _, name := range holidays.Names() {
			entry, _ := holidays.Get(name)
			for _, d := range entry.WorkDays {
				if _, seen := days[d.String()]; !seen {
					days[d.String()] = DayInfo{Date: d.Time, Type: DayTypeTransferredWorkday, IsWorkday: true, Holiday: name}
				}
			}
		}
	}

	if len(days) == 0 {
		return fmt.Errorf("%w: %d: no holidays in %s", ErrYearNotCollected, year, fc.store.YearFile(year))
	}

	fc.mu.Lock()
	fc.years[year] = days
	fc.mu.Unlock()

	fc.logger.Info("Calendar year loaded",
		zap.Int("year", year),
		zap.Int("records", len(records)),
		zap.Int("special_days", len(days)))

	return nil
}

// IsWorkday checks if the given date is a working day
func (fc *FileCalendar) IsWorkday(date time.Time) (bool, error) {
	dayInfo, err := fc.GetDayInfo(date)
	if err != nil {
		return false, err
	}

	return dayInfo.IsWorkday, nil
}

// GetMonthInfo returns calendar info for the entire month
func (fc *FileCalendar) GetMonthInfo(year int, month time.Month) (*MonthInfo, error) {
	return buildMonth(year, month, fc.GetDayInfo)
}

// GetDayInfo returns detailed info for a specific day. Days the notices do
// not mention follow the ordinary week.
func (fc *FileCalendar) GetDayInfo(date time.Time) (*DayInfo, error) {
	days, err := fc.yearDays(date.Year())
	if err != nil {
		return nil, err
	}

	if day, ok := days[date.Format(dateutil.ISODate)]; ok {
		return &day, nil
	}
	return weekdayInfo(date), nil
}

func (fc *FileCalendar) yearDays(year int) (map[string]DayInfo, error) {
	fc.mu.Lock()
	days, ok := fc.years[year]
	fc.mu.Unlock()
	if ok {
		return days, nil
	}

	if err := fc.Load(year); err != nil {
		return nil, err
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.years[year], nil
}
