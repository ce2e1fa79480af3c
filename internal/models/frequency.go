package models

import (
	apperrors "github.com/jadewell/loon/internal/errors"
)

// Frequency is a recurrence cadence chosen by the user at series creation.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyAnnually Frequency = "annually"
)

// ScheduleUnit is the calendar unit a schedule rule steps by.
type ScheduleUnit string

const (
	UnitDay   ScheduleUnit = "day"
	UnitWeek  ScheduleUnit = "week"
	UnitMonth ScheduleUnit = "month"
	UnitYear  ScheduleUnit = "year"
)

// Recurrence is the expansion profile of a frequency: how far each step
// moves and how many future occurrences are materialized. Day and week
// cadences are bounded to a three year horizon, month and year cadences
// to ten years.
type Recurrence struct {
	Interval       int
	Unit           ScheduleUnit
	MaxOccurrences int
}

// recurrenceTable is the single source of truth for frequency expansion.
// Both the schedule expander and rule construction read from it.
var recurrenceTable = map[Frequency]Recurrence{
	FrequencyDaily:    {Interval: 1, Unit: UnitDay, MaxOccurrences: 1095},
	FrequencyWeekly:   {Interval: 1, Unit: UnitWeek, MaxOccurrences: 156},
	FrequencyBiweekly: {Interval: 2, Unit: UnitWeek, MaxOccurrences: 78},
	FrequencyMonthly:  {Interval: 1, Unit: UnitMonth, MaxOccurrences: 120},
	FrequencyAnnually: {Interval: 1, Unit: UnitYear, MaxOccurrences: 10},
}

// Valid reports whether the frequency is one of the supported cadences.
func (f Frequency) Valid() bool {
	_, ok := recurrenceTable[f]
	return ok
}

// Recurrence resolves the expansion profile for the frequency.
func (f Frequency) Recurrence() (Recurrence, error) {
	r, ok := recurrenceTable[f]
	if !ok {
		return Recurrence{}, &apperrors.ErrValidation{Field: "frequency", Message: "must be one of daily, weekly, biweekly, monthly, annually"}
	}
	return r, nil
}
