package daemon

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

var shanghai = time.FixedZone("CST", 8*60*60)

func newTestDaemon(job Job, now time.Time) *Daemon {
	d := NewScheduledDaemon(job, 3, 0, shanghai, zap.NewNop())
	d.now = func() time.Time { return now }
	return d
}

func TestCalculateNextRun(t *testing.T) {
	d := newTestDaemon(nil, time.Time{})

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before slot runs today",
			now:  time.Date(2025, 10, 1, 2, 59, 0, 0, shanghai),
			want: time.Date(2025, 10, 1, 3, 0, 0, 0, shanghai),
		},
		{
			name: "at slot runs tomorrow",
			now:  time.Date(2025, 10, 1, 3, 0, 0, 0, shanghai),
			want: time.Date(2025, 10, 2, 3, 0, 0, 0, shanghai),
		},
		{
			name: "after slot runs tomorrow",
			now:  time.Date(2025, 12, 31, 23, 0, 0, 0, shanghai),
			want: time.Date(2026, 1, 1, 3, 0, 0, 0, shanghai),
		},
		{
			// 18:30 UTC is 02:30 next day in Shanghai
			name: "uses daemon time zone",
			now:  time.Date(2025, 10, 1, 18, 30, 0, 0, time.UTC),
			want: time.Date(2025, 10, 2, 3, 0, 0, 0, shanghai),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.calculateNextRun(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("calculateNextRun(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestShouldRunAt(t *testing.T) {
	d := newTestDaemon(nil, time.Time{})

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"exact minute", time.Date(2025, 10, 1, 3, 0, 30, 0, shanghai), true},
		{"same minute in UTC", time.Date(2025, 9, 30, 19, 0, 0, 0, time.UTC), true},
		{"minute after", time.Date(2025, 10, 1, 3, 1, 0, 0, shanghai), false},
		{"other hour", time.Date(2025, 10, 1, 15, 0, 0, 0, shanghai), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.shouldRunAt(tt.now); got != tt.want {
				t.Errorf("shouldRunAt(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestRunNow_OncePerDay(t *testing.T) {
	var calls int32
	job := func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}
	now := time.Date(2025, 10, 1, 3, 0, 0, 0, shanghai)
	d := newTestDaemon(job, now)

	if err := d.RunNow(); err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}
	if err := d.RunNow(); err != nil {
		t.Fatalf("second RunNow() error = %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("job ran %d times, want 1", got)
	}
	if date, _ := d.LastRun(); date != "2025-10-01" {
		t.Errorf("LastRun() date = %q, want 2025-10-01", date)
	}

	d.now = func() time.Time { return now.AddDate(0, 0, 1) }
	if err := d.RunNow(); err != nil {
		t.Fatalf("next-day RunNow() error = %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("job ran %d times, want 2", got)
	}
}

func TestRunNow_FailureLeavesDayOpen(t *testing.T) {
	fail := true
	job := func(ctx context.Context) error {
		if fail {
			return errors.New("portal down")
		}
		return nil
	}
	d := newTestDaemon(job, time.Date(2025, 10, 1, 3, 0, 0, 0, shanghai))

	if err := d.RunNow(); err == nil {
		t.Fatal("RunNow() expected error, got nil")
	}
	if date, _ := d.LastRun(); date != "" {
		t.Errorf("LastRun() date = %q after failure, want empty", date)
	}

	fail = false
	if err := d.RunNow(); err != nil {
		t.Fatalf("retry RunNow() error = %v", err)
	}
	if date, _ := d.LastRun(); date != "2025-10-01" {
		t.Errorf("LastRun() date = %q, want 2025-10-01", date)
	}
}

func TestRunNow_RejectsConcurrentRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	job := func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}
	d := newTestDaemon(job, time.Date(2025, 10, 1, 3, 0, 0, 0, shanghai))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.RunNow(); err != nil {
			t.Errorf("first RunNow() error = %v", err)
		}
	}()

	<-started
	if err := d.RunNow(); err == nil {
		t.Error("concurrent RunNow() expected error, got nil")
	}
	close(release)
	wg.Wait()
}

func TestStart_StopsWithContext(t *testing.T) {
	var calls int32
	job := func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}
	// 04:00 is past the 03:00 slot, so Start collects immediately
	d := newTestDaemon(job, time.Date(2025, 10, 1, 4, 0, 0, 0, shanghai))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	deadline := time.After(5 * time.Second)
	for atomic.LoadInt32(&calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("initial collection did not run")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}
