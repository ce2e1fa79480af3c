package services

import (
	"time"

	apperrors "github.com/jadewell/loon/internal/errors"
	"github.com/jadewell/loon/internal/models"
)

type scheduleExpander struct{}

// NewScheduleExpander creates a new schedule expander
func NewScheduleExpander() ScheduleExpander {
	return &scheduleExpander{}
}

// Expand produces the occurrence dates after anchor for a frequency. The
// result is strictly increasing, excludes the anchor, and is a pure function
// of the inputs. All arithmetic is done in UTC.
//
// Day and week cadences step by absolute duration; every step is computed
// from the anchor independently so there is no accumulated drift. Month and
// year cadences use calendar arithmetic with day-of-month clamping.
func (e *scheduleExpander) Expand(anchor time.Time, frequency models.Frequency, maxOccurrences int) ([]time.Time, error) {
	if anchor.IsZero() {
		return nil, &apperrors.ErrValidation{Field: "anchor_date", Message: "is required"}
	}
	rec, err := frequency.Recurrence()
	if err != nil {
		return nil, err
	}
	if maxOccurrences < 1 {
		return nil, &apperrors.ErrValidation{Field: "max_occurrences", Message: "must be positive"}
	}
	// The horizon bound is a hard cap, not a default.
	if maxOccurrences > rec.MaxOccurrences {
		maxOccurrences = rec.MaxOccurrences
	}

	a := anchor.UTC()
	dates := make([]time.Time, 0, maxOccurrences)
	for i := 1; i <= maxOccurrences; i++ {
		switch rec.Unit {
		case models.UnitDay:
			dates = append(dates, a.Add(time.Duration(i*rec.Interval)*24*time.Hour))
		case models.UnitWeek:
			dates = append(dates, a.Add(time.Duration(i*rec.Interval*7)*24*time.Hour))
		case models.UnitMonth:
			dates = append(dates, addMonthsClamped(a, i*rec.Interval))
		case models.UnitYear:
			dates = append(dates, addYearsClamped(a, i*rec.Interval))
		}
	}
	return dates, nil
}

// addMonthsClamped adds months calendar-wise: the target (year, month) is
// computed arithmetically and the day-of-month is clamped to the last valid
// day of the target month. Jan 31 + 1 month is Feb 28 (29 in a leap year),
// never Mar 3. Time-of-day is preserved.
func addMonthsClamped(t time.Time, months int) time.Time {
	// Zero-based month arithmetic avoids december/january edge handling.
	total := t.Year()*12 + int(t.Month()) - 1 + months
	year := total / 12
	month := time.Month(total%12 + 1)

	day := t.Day()
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// addYearsClamped adds years, clamping a Feb 29 anchor to Feb 28 in
// non-leap target years. All other dates pass through unchanged.
func addYearsClamped(t time.Time, years int) time.Time {
	year := t.Year() + years
	day := t.Day()
	if t.Month() == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, t.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
