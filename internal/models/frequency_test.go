package models

import "testing"

func TestFrequencyRecurrence(t *testing.T) {
	tests := []struct {
		frequency Frequency
		interval  int
		unit      ScheduleUnit
		max       int
	}{
		{FrequencyDaily, 1, UnitDay, 1095},
		{FrequencyWeekly, 1, UnitWeek, 156},
		{FrequencyBiweekly, 2, UnitWeek, 78},
		{FrequencyMonthly, 1, UnitMonth, 120},
		{FrequencyAnnually, 1, UnitYear, 10},
	}
	for _, tt := range tests {
		t.Run(string(tt.frequency), func(t *testing.T) {
			rec, err := tt.frequency.Recurrence()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Interval != tt.interval || rec.Unit != tt.unit || rec.MaxOccurrences != tt.max {
				t.Errorf("got %+v, want interval=%d unit=%s max=%d", rec, tt.interval, tt.unit, tt.max)
			}
		})
	}
}

func TestFrequencyRejectsUnknown(t *testing.T) {
	for _, f := range []Frequency{"", "hourly", "quarterly", "Daily"} {
		if f.Valid() {
			t.Errorf("%q should not be valid", f)
		}
		if _, err := f.Recurrence(); err == nil {
			t.Errorf("%q should not resolve a recurrence", f)
		}
	}
}
