package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/amicofritto/orders-backend/pkg/types"
)

var dayLabels = map[types.DayKey]string{
	types.DayMon: "Lunedì",
	types.DayTue: "Martedì",
	types.DayWed: "Mercoledì",
	types.DayThu: "Giovedì",
	types.DayFri: "Venerdì",
	types.DaySat: "Sabato",
	types.DaySun: "Domenica",
}

// Status is the outcome of gating order intake against the weekly schedule.
// NextOpen is nil when the store is open or no future window exists.
type Status struct {
	IsOpen   bool
	NextOpen *time.Time
}

// Evaluate gates order intake at minute resolution. A nil or disabled
// schedule accepts orders around the clock; an enabled schedule with no
// windows rejects everything.
func Evaluate(sched *types.OrderSchedule, now time.Time) Status {
	if sched == nil || !sched.Enabled {
		return Status{IsOpen: true}
	}
	if !sched.HasAnyRange() {
		return Status{IsOpen: false}
	}

	nowMinutes := now.Hour()*60 + now.Minute()
	today := dayKeyFor(now)

	for _, r := range sortedRanges(sched.Days[today]) {
		start, okStart := timeToMinutes(r.Start)
		end, okEnd := timeToMinutes(r.End)
		if !okStart || !okEnd {
			continue
		}
		if nowMinutes >= start && nowMinutes < end {
			return Status{IsOpen: true}
		}
	}

	// Scan forward up to a week for the next opening window.
	for offset := 0; offset < 7; offset++ {
		day := now.AddDate(0, 0, offset)
		for _, r := range sortedRanges(sched.Days[dayKeyFor(day)]) {
			start, ok := timeToMinutes(r.Start)
			if !ok {
				continue
			}
			if offset == 0 && start <= nowMinutes {
				continue
			}
			next := time.Date(day.Year(), day.Month(), day.Day(), start/60, start%60, 0, 0, now.Location())
			return Status{IsOpen: false, NextOpen: &next}
		}
	}

	return Status{IsOpen: false}
}

// FormatNextOpen renders the next opening time for customers: "18:00" for
// today, "domani 18:00" for tomorrow, "Venerdì 18:00" otherwise. Returns ""
// when no window is known.
func FormatNextOpen(nextOpen *time.Time, now time.Time) string {
	if nextOpen == nil {
		return ""
	}

	clock := fmt.Sprintf("%02d:%02d", nextOpen.Hour(), nextOpen.Minute())

	if sameDay(*nextOpen, now) {
		return clock
	}
	if sameDay(*nextOpen, now.AddDate(0, 0, 1)) {
		return "domani " + clock
	}
	return dayLabels[dayKeyFor(*nextOpen)] + " " + clock
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func dayKeyFor(t time.Time) types.DayKey {
	// time.Weekday has Sunday = 0; the schedule week starts on Monday.
	index := (int(t.Weekday()) + 6) % 7
	return types.DayOrder[index]
}

func sortedRanges(ranges []types.TimeRange) []types.TimeRange {
	if len(ranges) < 2 {
		return ranges
	}
	sorted := make([]types.TimeRange, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, _ := timeToMinutes(sorted[i].Start)
		b, _ := timeToMinutes(sorted[j].Start)
		return a < b
	})
	return sorted
}

func timeToMinutes(value string) (int, bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}
