package calendar

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/username/cn-holiday-collector/internal/announcement"
	"github.com/username/cn-holiday-collector/internal/store"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func dates(year int, month time.Month, days ...int) []announcement.Date {
	out := make([]announcement.Date, len(days))
	for i, d := range days {
		out[i] = announcement.NewDate(year, month, d)
	}
	return out
}

// newTestStore writes a 2025 output file with two notices; the second
// repeats 劳动节 with different dates and must not override the first.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "holidays"), zap.NewNop())

	var first announcement.Holidays
	first.Set("劳动节", announcement.Entry{
		Dates:    dates(2025, time.May, 1, 2, 3, 4, 5),
		WorkDays: dates(2025, time.April, 27),
	})
	first.Set("国庆节、中秋节", announcement.Entry{
		Dates:    dates(2025, time.October, 1, 2, 3, 4, 5, 6, 7, 8),
		WorkDays: append(dates(2025, time.September, 28), dates(2025, time.October, 11)...),
	})

	var second announcement.Holidays
	second.Set("劳动节", announcement.Entry{
		Dates:    dates(2025, time.May, 6),
		WorkDays: dates(2025, time.May, 1),
	})

	_, err := s.SaveYear(2025, []store.Record{
		{Year: 2025, ParsedData: first},
		{Year: 2025},
		{Year: 2025, ParsedData: second},
	})
	if err != nil {
		t.Fatalf("SaveYear() error = %v", err)
	}
	return s
}

func TestFileCalendar_GetDayInfo(t *testing.T) {
	fc := NewFileCalendar(newTestStore(t), zap.NewNop())

	tests := []struct {
		name        string
		date        time.Time
		wantType    DayType
		wantWorkday bool
		wantHoliday string
	}{
		{"holiday on weekday", day(2025, time.May, 1), DayTypeHoliday, false, "劳动节"},
		{"holiday on weekend", day(2025, time.May, 3), DayTypeHoliday, false, "劳动节"},
		{"transferred workday on Sunday", day(2025, time.April, 27), DayTypeTransferredWorkday, true, "劳动节"},
		{"merged holiday name", day(2025, time.October, 6), DayTypeHoliday, false, "国庆节、中秋节"},
		{"transferred workday on Saturday", day(2025, time.October, 11), DayTypeTransferredWorkday, true, "国庆节、中秋节"},
		{"later notice does not override", day(2025, time.May, 6), DayTypeWorkday, true, ""},
		{"ordinary weekday", day(2025, time.June, 3), DayTypeWorkday, true, ""},
		{"ordinary weekend", day(2025, time.June, 7), DayTypeWeekend, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := fc.GetDayInfo(tt.date)
			if err != nil {
				t.Fatalf("GetDayInfo(%s) error = %v", tt.date.Format("2006-01-02"), err)
			}
			if info.Type != tt.wantType {
				t.Errorf("GetDayInfo(%s).Type = %v, want %v", tt.date.Format("2006-01-02"), info.Type, tt.wantType)
			}
			if info.IsWorkday != tt.wantWorkday {
				t.Errorf("GetDayInfo(%s).IsWorkday = %v, want %v", tt.date.Format("2006-01-02"), info.IsWorkday, tt.wantWorkday)
			}
			if info.Holiday != tt.wantHoliday {
				t.Errorf("GetDayInfo(%s).Holiday = %q, want %q", tt.date.Format("2006-01-02"), info.Holiday, tt.wantHoliday)
			}
		})
	}
}

func TestFileCalendar_MissingYear(t *testing.T) {
	fc := NewFileCalendar(newTestStore(t), zap.NewNop())

	_, err := fc.GetDayInfo(day(2024, time.October, 1))
	if !errors.Is(err, ErrYearNotCollected) {
		t.Errorf("GetDayInfo() error = %v, want ErrYearNotCollected", err)
	}
}

func TestFileCalendar_GetMonthInfo(t *testing.T) {
	fc := NewFileCalendar(newTestStore(t), zap.NewNop())

	info, err := fc.GetMonthInfo(2025, time.October)
	if err != nil {
		t.Fatalf("GetMonthInfo() error = %v", err)
	}

	// October 2025: 31 days, 8 holidays (1-8), 1 transferred workday (11th),
	// weekends outside the holiday: 12, 18, 19, 25, 26
	if len(info.Days) != 31 {
		t.Errorf("len(Days) = %d, want 31", len(info.Days))
	}
	if info.Holidays != 8 {
		t.Errorf("Holidays = %d, want 8", info.Holidays)
	}
	if info.TransferredWorkdays != 1 {
		t.Errorf("TransferredWorkdays = %d, want 1", info.TransferredWorkdays)
	}
	if info.Weekends != 5 {
		t.Errorf("Weekends = %d, want 5", info.Weekends)
	}
	if info.WorkDays != 18 {
		t.Errorf("WorkDays = %d, want 18", info.WorkDays)
	}
}

func TestWeekendCalendar(t *testing.T) {
	wc := NewWeekendCalendar()

	ok, err := wc.IsWorkday(day(2025, time.October, 1))
	if err != nil || !ok {
		t.Errorf("IsWorkday(2025-10-01) = %v, %v, want true, nil", ok, err)
	}

	info, err := wc.GetMonthInfo(2025, time.February)
	if err != nil {
		t.Fatalf("GetMonthInfo() error = %v", err)
	}
	if info.WorkDays != 20 || info.Weekends != 8 {
		t.Errorf("GetMonthInfo(2025-02) = %d workdays, %d weekends, want 20, 8", info.WorkDays, info.Weekends)
	}
}

func TestCompositeCalendar_FallsBack(t *testing.T) {
	cc := NewCompositeCalendar(NewFileCalendar(newTestStore(t), zap.NewNop()), NewWeekendCalendar(), zap.NewNop())

	// collected year answers from the notices
	ok, err := cc.IsWorkday(day(2025, time.October, 1))
	if err != nil || ok {
		t.Errorf("IsWorkday(2025-10-01) = %v, %v, want false, nil", ok, err)
	}

	// uncollected year falls back to the plain week
	ok, err = cc.IsWorkday(day(2024, time.October, 1))
	if err != nil || !ok {
		t.Errorf("IsWorkday(2024-10-01) = %v, %v, want true, nil", ok, err)
	}

	info, err := cc.GetDayInfo(day(2024, time.October, 5))
	if err != nil {
		t.Fatalf("GetDayInfo() error = %v", err)
	}
	if info.Type != DayTypeWeekend {
		t.Errorf("GetDayInfo(2024-10-05).Type = %v, want weekend", info.Type)
	}
}
