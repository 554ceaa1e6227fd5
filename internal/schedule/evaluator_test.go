package schedule

import (
	"testing"
	"time"

	"github.com/amicofritto/orders-backend/pkg/types"
)

func weeklySchedule(days map[types.DayKey][]types.TimeRange) *types.OrderSchedule {
	sched := types.EmptyOrderSchedule()
	sched.Enabled = true
	for day, ranges := range days {
		sched.Days[day] = ranges
	}
	return &sched
}

// Monday 2025-06-02 in local time.
func monday(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.Local)
}

func TestEvaluateDisabledScheduleAlwaysOpen(t *testing.T) {
	status := Evaluate(nil, monday(3, 0))
	if !status.IsOpen {
		t.Fatalf("nil schedule should accept orders")
	}

	sched := types.EmptyOrderSchedule()
	status = Evaluate(&sched, monday(3, 0))
	if !status.IsOpen {
		t.Fatalf("disabled schedule should accept orders")
	}
}

func TestEvaluateEnabledWithoutRangesAlwaysClosed(t *testing.T) {
	sched := types.EmptyOrderSchedule()
	sched.Enabled = true
	status := Evaluate(&sched, monday(19, 0))
	if status.IsOpen {
		t.Fatalf("enabled schedule without windows must reject orders")
	}
	if status.NextOpen != nil {
		t.Fatalf("no next opening should be reported")
	}
}

func TestEvaluateWindowContainment(t *testing.T) {
	sched := weeklySchedule(map[types.DayKey][]types.TimeRange{
		types.DayMon: {{Start: "18:00", End: "23:00"}},
	})

	cases := []struct {
		name string
		now  time.Time
		open bool
	}{
		{"before opening", monday(17, 59), false},
		{"at opening", monday(18, 0), true},
		{"inside window", monday(20, 30), true},
		{"last minute", monday(22, 59), true},
		{"at closing", monday(23, 0), false},
	}
	for _, tc := range cases {
		status := Evaluate(sched, tc.now)
		if status.IsOpen != tc.open {
			t.Errorf("%s: IsOpen = %v, want %v", tc.name, status.IsOpen, tc.open)
		}
	}
}

func TestEvaluateNextOpenSameDay(t *testing.T) {
	sched := weeklySchedule(map[types.DayKey][]types.TimeRange{
		types.DayMon: {{Start: "12:00", End: "14:30"}, {Start: "18:00", End: "23:00"}},
	})

	status := Evaluate(sched, monday(15, 0))
	if status.IsOpen {
		t.Fatalf("expected closed between windows")
	}
	if status.NextOpen == nil {
		t.Fatalf("expected next opening")
	}
	if status.NextOpen.Hour() != 18 || status.NextOpen.Minute() != 0 {
		t.Fatalf("unexpected next open %v", status.NextOpen)
	}
	if status.NextOpen.Day() != 2 {
		t.Fatalf("next open should be today, got day %d", status.NextOpen.Day())
	}
}

func TestEvaluateNextOpenSkipsPastStartsToday(t *testing.T) {
	sched := weeklySchedule(map[types.DayKey][]types.TimeRange{
		types.DayMon: {{Start: "12:00", End: "14:30"}},
		types.DayWed: {{Start: "18:30", End: "23:00"}},
	})

	status := Evaluate(sched, monday(16, 0))
	if status.IsOpen {
		t.Fatalf("expected closed")
	}
	if status.NextOpen == nil {
		t.Fatalf("expected next opening")
	}
	if status.NextOpen.Weekday() != time.Wednesday {
		t.Fatalf("expected Wednesday, got %v", status.NextOpen.Weekday())
	}
	if status.NextOpen.Hour() != 18 || status.NextOpen.Minute() != 30 {
		t.Fatalf("unexpected next open time %v", status.NextOpen)
	}
}

func TestEvaluateRangesOutOfOrder(t *testing.T) {
	sched := weeklySchedule(map[types.DayKey][]types.TimeRange{
		types.DayMon: {{Start: "18:00", End: "23:00"}, {Start: "11:00", End: "14:00"}},
	})

	status := Evaluate(sched, monday(10, 0))
	if status.NextOpen == nil || status.NextOpen.Hour() != 11 {
		t.Fatalf("earliest window should win, got %v", status.NextOpen)
	}
}

func TestEvaluateSkipsMalformedRanges(t *testing.T) {
	sched := weeklySchedule(map[types.DayKey][]types.TimeRange{
		types.DayMon: {{Start: "bad", End: "worse"}, {Start: "18:00", End: "23:00"}},
	})

	status := Evaluate(sched, monday(19, 0))
	if !status.IsOpen {
		t.Fatalf("valid window should still apply")
	}
}

func TestFormatNextOpen(t *testing.T) {
	now := monday(15, 0)

	sameDay := monday(18, 0)
	if got := FormatNextOpen(&sameDay, now); got != "18:00" {
		t.Fatalf("same day: got %q", got)
	}

	tomorrow := sameDay.AddDate(0, 0, 1)
	if got := FormatNextOpen(&tomorrow, now); got != "domani 18:00" {
		t.Fatalf("tomorrow: got %q", got)
	}

	friday := time.Date(2025, 6, 6, 19, 30, 0, 0, time.Local)
	if got := FormatNextOpen(&friday, now); got != "Venerdì 19:30" {
		t.Fatalf("weekday: got %q", got)
	}

	if got := FormatNextOpen(nil, now); got != "" {
		t.Fatalf("nil: got %q", got)
	}
}
