package types

import "encoding/json"

// DayKey identifies a weekday in the order schedule, Monday first.
type DayKey string

const (
	DayMon DayKey = "mon"
	DayTue DayKey = "tue"
	DayWed DayKey = "wed"
	DayThu DayKey = "thu"
	DayFri DayKey = "fri"
	DaySat DayKey = "sat"
	DaySun DayKey = "sun"
)

// DayOrder lists the weekdays in schedule order.
var DayOrder = []DayKey{DayMon, DayTue, DayWed, DayThu, DayFri, DaySat, DaySun}

// TimeRange is a half-open [Start, End) opening window in "HH:MM" local time.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// OrderSchedule is the machine-readable weekly gate for accepting orders.
// A day with no ranges is closed.
type OrderSchedule struct {
	Enabled bool                   `json:"enabled"`
	Days    map[DayKey][]TimeRange `json:"days"`
}

// EmptyOrderSchedule returns a disabled schedule with every day initialized.
func EmptyOrderSchedule() OrderSchedule {
	days := make(map[DayKey][]TimeRange, len(DayOrder))
	for _, day := range DayOrder {
		days[day] = nil
	}
	return OrderSchedule{Enabled: false, Days: days}
}

// Normalize drops ranges missing a start or end and fills absent days.
func (s OrderSchedule) Normalize() OrderSchedule {
	cleaned := OrderSchedule{Enabled: s.Enabled, Days: make(map[DayKey][]TimeRange, len(DayOrder))}
	for _, day := range DayOrder {
		for _, r := range s.Days[day] {
			if r.Start == "" || r.End == "" {
				continue
			}
			cleaned.Days[day] = append(cleaned.Days[day], r)
		}
	}
	return cleaned
}

// HasAnyRange reports whether at least one day has an opening window.
func (s OrderSchedule) HasAnyRange() bool {
	for _, day := range DayOrder {
		if len(s.Days[day]) > 0 {
			return true
		}
	}
	return false
}

// OpeningHours pairs the human-readable display string with the
// machine-readable gate. Legacy rows store a bare display string.
type OpeningHours struct {
	Display       *string        `json:"display,omitempty"`
	OrderSchedule *OrderSchedule `json:"order_schedule,omitempty"`
}

// UnmarshalJSON tolerates the legacy bare-string representation.
func (o *OpeningHours) UnmarshalJSON(data []byte) error {
	var display string
	if err := json.Unmarshal(data, &display); err == nil {
		o.Display = &display
		o.OrderSchedule = nil
		return nil
	}

	type alias OpeningHours
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*o = OpeningHours(decoded)
	return nil
}
