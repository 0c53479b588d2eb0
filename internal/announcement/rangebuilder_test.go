package announcement

import "testing"

func TestBuildRange(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"single day", "2025-01-01", "2025-01-01"},
		{"spring festival", "2025-01-28", "2025-02-04"},
		{"leap february", "2024-02-27", "2024-03-02"},
		{"across new year", "2024-12-30", "2025-01-01"},
		{"whole year", "2025-01-01", "2025-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := mustDate(t, tt.start)
			end := mustDate(t, tt.end)

			got := BuildRange(start, end)

			wantLen := DaysBetween(start, end) + 1
			if len(got) != wantLen {
				t.Fatalf("len(BuildRange()) = %d, want %d", len(got), wantLen)
			}
			if !got[0].Equal(start) {
				t.Errorf("first = %s, want %s", got[0], start)
			}
			if !got[len(got)-1].Equal(end) {
				t.Errorf("last = %s, want %s", got[len(got)-1], end)
			}
			for i := 1; i < len(got); i++ {
				if !got[i].Equal(got[i-1].AddDays(1)) {
					t.Fatalf("gap between %s and %s", got[i-1], got[i])
				}
			}
		})
	}
}

func TestBuildRange_EndBeforeStart(t *testing.T) {
	got := BuildRange(mustDate(t, "2025-01-02"), mustDate(t, "2025-01-01"))
	if got != nil {
		t.Errorf("BuildRange() = %v, want nil", got)
	}
}
