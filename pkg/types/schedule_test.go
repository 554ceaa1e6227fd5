package types

import (
	"encoding/json"
	"testing"
)

func TestOpeningHoursUnmarshalLegacyString(t *testing.T) {
	var hours OpeningHours
	if err := json.Unmarshal([]byte(`"Lun-Ven 11:00-22:00"`), &hours); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hours.Display == nil || *hours.Display != "Lun-Ven 11:00-22:00" {
		t.Fatalf("expected display string, got %+v", hours)
	}
	if hours.OrderSchedule != nil {
		t.Fatalf("legacy string should not carry a schedule")
	}
}

func TestOpeningHoursUnmarshalStructured(t *testing.T) {
	raw := `{"display":"Sempre aperti","order_schedule":{"enabled":true,"days":{"mon":[{"start":"11:00","end":"22:00"}]}}}`
	var hours OpeningHours
	if err := json.Unmarshal([]byte(raw), &hours); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hours.OrderSchedule == nil || !hours.OrderSchedule.Enabled {
		t.Fatalf("expected enabled schedule, got %+v", hours.OrderSchedule)
	}
	if len(hours.OrderSchedule.Days[DayMon]) != 1 {
		t.Fatalf("expected one monday range")
	}
}

func TestNormalizeDropsIncompleteRanges(t *testing.T) {
	sched := OrderSchedule{
		Enabled: true,
		Days: map[DayKey][]TimeRange{
			DayMon: {{Start: "11:00", End: "22:00"}, {Start: "", End: "23:00"}},
		},
	}
	cleaned := sched.Normalize()
	if len(cleaned.Days[DayMon]) != 1 {
		t.Fatalf("expected incomplete range to be dropped, got %v", cleaned.Days[DayMon])
	}
	if !cleaned.HasAnyRange() {
		t.Fatalf("expected at least one range")
	}
}
